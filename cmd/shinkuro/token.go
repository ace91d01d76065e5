package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"shinkuro/internal/repository"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the HTTPS git token kept in the OS keyring",
		Long: `The token is used only when anonymous HTTPS access to --git-url is
rejected. SSH URLs use the ssh-agent instead.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [token]",
			Short: "Store a token (read from stdin when no argument is given)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				token := ""
				if len(args) == 1 {
					token = args[0]
				} else {
					fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
					t, err := readLine(cmd.InOrStdin())
					if err != nil {
						return err
					}
					token = t
				}

				if err := repository.NewCredentialManager().StoreToken(token); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token stored")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := repository.NewCredentialManager().DeleteToken(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token deleted")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether the keyring works and a token is stored",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				status := repository.NewCredentialManager().Status()
				if !status.Available {
					return fmt.Errorf("credential store unavailable: %w", status.Err)
				}
				if status.HasToken {
					fmt.Fprintln(cmd.OutOrStdout(), "Credential store available, token stored")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Credential store available, no token stored")
				}
				return nil
			},
		},
	)
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
