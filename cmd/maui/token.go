package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mauicli/internal/github"
	"mauicli/internal/secrets"
)

func newTokenCmd(d deps, root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored GitHub token used by apply-pr",
		Long: `Store, remove or inspect the GitHub token used to list pull request
artifacts. The token is encrypted under the tool home directory.
GITHUB_TOKEN in the environment takes precedence over the stored token.`,
	}

	setCmd := &cobra.Command{
		Use:   "set <token|->",
		Short: "Store a token; '-' reads it from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(d, root)
			if err != nil {
				return err
			}
			defer a.close()

			value := args[0]
			if value == "-" {
				value, err = readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("token is empty")
			}

			store, err := a.secretStore()
			if err != nil {
				return err
			}
			if err := store.Set(secrets.GitHubToken, []byte(value)); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "GitHub token stored.")
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(d, root)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.secretStore()
			if err != nil {
				return err
			}
			if err := store.Delete(secrets.GitHubToken); err != nil {
				if errors.Is(err, secrets.ErrNotFound) {
					fmt.Fprintln(a.stdout, "No GitHub token stored.")
					return nil
				}
				return err
			}
			fmt.Fprintln(a.stdout, "GitHub token deleted.")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show which token apply-pr will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(d, root)
			if err != nil {
				return err
			}
			defer a.close()

			if strings.TrimSpace(a.env.Get(github.TokenEnvVar)) != "" {
				fmt.Fprintf(a.stdout, "Using %s from the environment.\n", github.TokenEnvVar)
				return nil
			}

			store, err := a.secretStore()
			if err != nil {
				return err
			}
			if entry, ok := store.Lookup(secrets.GitHubToken); ok {
				fmt.Fprintf(a.stdout, "Using the stored token (updated %s).\n", entry.UpdatedAt.Local().Format("2006-01-02 15:04"))
				return nil
			}
			fmt.Fprintln(a.stdout, "No GitHub token configured; requests are anonymous and rate limited.")
			return nil
		},
	}

	cmd.AddCommand(setCmd, deleteCmd, statusCmd)
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
