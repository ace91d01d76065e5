package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestCredentialManager_Lifecycle(t *testing.T) {
	keyring.MockInit()
	cm := NewCredentialManager()

	assert.False(t, cm.HasToken())
	_, err := cm.GetToken()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, cm.StoreToken("  "+testToken+"\n"))
	assert.True(t, cm.HasToken())

	got, err := cm.GetToken()
	require.NoError(t, err)
	assert.Equal(t, testToken, got)

	require.NoError(t, cm.DeleteToken())
	assert.False(t, cm.HasToken())

	// deleting twice is fine
	assert.NoError(t, cm.DeleteToken())
}

func TestCredentialManager_StoreTokenValidation(t *testing.T) {
	keyring.MockInit()
	cm := NewCredentialManager()

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{"empty", "   ", "cannot be empty"},
		{"too short", "abc123", "too short"},
		{"whitespace", "ghp_0123456789 abcdefghij", "whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.StoreToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, cm.HasToken())
		})
	}
}

func TestCredentialManager_Status(t *testing.T) {
	keyring.MockInit()
	cm := NewCredentialManager()

	status := cm.Status()
	assert.True(t, status.Available)
	assert.False(t, status.HasToken)
	assert.NoError(t, status.Err)

	require.NoError(t, cm.StoreToken(testToken))
	assert.True(t, cm.Status().HasToken)

	// the check entry is cleaned up
	_, err := keyring.Get(credentialService, checkKey)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestCredentialManager_IsTokenSource(t *testing.T) {
	var _ TokenSource = NewCredentialManager()
}
