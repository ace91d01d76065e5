package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for the OS credential store
	credentialService = "shinkuro"
	// Key for the HTTPS git token
	gitTokenKey = "git_token"
	// throwaway key used by Status
	checkKey = "shinkuro_check"
)

// TokenSource supplies the HTTPS token used when anonymous access fails.
type TokenSource interface {
	GetToken() (string, error)
}

// CredentialManager stores a personal access token in the OS keyring.
type CredentialManager struct {
	service string
}

// NewCredentialManager returns a manager bound to the shinkuro keyring
// service.
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{
		service: credentialService,
	}
}

// StoreToken validates and saves token, replacing any previous one.
func (cm *CredentialManager) StoreToken(token string) error {
	token = strings.TrimSpace(token)
	if err := validateTokenFormat(token); err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	if err := keyring.Set(cm.service, gitTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}
	return nil
}

// GetToken returns the stored token or an error wrapping ErrNoToken.
func (cm *CredentialManager) GetToken() (string, error) {
	token, err := keyring.Get(cm.service, gitTokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w - run 'shinkuro token set'", ErrNoToken)
		}
		return "", fmt.Errorf("failed to retrieve token from credential store: %w", err)
	}

	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w (stored value is empty)", ErrNoToken)
	}
	return token, nil
}

// DeleteToken removes the stored token. Deleting a missing token is not an
// error.
func (cm *CredentialManager) DeleteToken() error {
	err := keyring.Delete(cm.service, gitTokenKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}

// HasToken reports whether a token is stored without returning it.
func (cm *CredentialManager) HasToken() bool {
	_, err := keyring.Get(cm.service, gitTokenKey)
	return err == nil
}

// StoreStatus describes the keyring as seen by Status.
type StoreStatus struct {
	Available bool
	HasToken  bool
	Err       error
}

// Status checks the keyring with a throwaway entry.
func (cm *CredentialManager) Status() StoreStatus {
	if err := keyring.Set(cm.service, checkKey, "check"); err != nil {
		return StoreStatus{Err: err}
	}
	defer keyring.Delete(cm.service, checkKey) //nolint:errcheck

	got, err := keyring.Get(cm.service, checkKey)
	if err != nil {
		return StoreStatus{Err: err}
	}
	if got != "check" {
		return StoreStatus{Err: errors.New("credential store returned a different value")}
	}

	return StoreStatus{Available: true, HasToken: cm.HasToken()}
}

// validateTokenFormat performs the host independent checks: a token is a
// single printable word of reasonable length.
func validateTokenFormat(token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if len(token) < 20 {
		return fmt.Errorf("token too short (minimum 20 characters)")
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return fmt.Errorf("token must not contain whitespace")
	}
	return nil
}
