package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petasbytes/go-chatbot/internal/credentials"
)

func newSecretCmd() *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API keys in the system keyring",
	}

	setCmd := &cobra.Command{
		Use:   "set [name]",
		Short: "Store a secret read from stdin (" + strings.Join(credentials.Known(), ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkSecretName(name); err != nil {
				return err
			}
			value, err := readSecretValue(cmd, name)
			if err != nil {
				return err
			}
			if err := credentials.SetSecret(name, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s in the system keyring.\n", name)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Remove a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkSecretName(name); err != nil {
				return err
			}
			if err := credentials.DeleteSecret(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from the system keyring.\n", name)
			return nil
		},
	}

	secretCmd.AddCommand(setCmd, deleteCmd)
	return secretCmd
}

func checkSecretName(name string) error {
	if !slices.Contains(credentials.Known(), name) {
		return fmt.Errorf("unknown secret %q; expected one of %s", name, strings.Join(credentials.Known(), ", "))
	}
	return nil
}

// readSecretValue reads without echo from a terminal, or the whole of a piped stdin.
func readSecretValue(cmd *cobra.Command, name string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(cmd.OutOrStdout(), "Enter value for %s: ", name)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(b), nil
}
