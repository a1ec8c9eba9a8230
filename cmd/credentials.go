package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/apex-activities-cli/internal/adapters/prompt"
	"github.com/bnema/apex-activities-cli/internal/application"
	"github.com/bnema/apex-activities-cli/internal/domain"
)

var errCredentialFlagsRequired = errors.New("--username, --account and --password-stdin are required when stdin is not a terminal")

func newCredentialsCmd(app *app) *cobra.Command {
	credentialsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the stored brokerage login",
	}

	credentialsCmd.AddCommand(
		newCredentialsSetCmd(app),
		newCredentialsShowCmd(app),
		newCredentialsRemoveCmd(app),
	)

	return credentialsCmd
}

type credentialsSetOptions struct {
	username      string
	account       string
	passwordStdin bool
}

func newCredentialsSetCmd(app *app) *cobra.Command {
	opts := credentialsSetOptions{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the username, password and account number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			service := application.NewCredentialService(app.credentialRepo, app.secretStore, nil, app.logger)

			var creds domain.Credentials
			switch {
			case opts.passwordStdin:
				password, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				creds = domain.Credentials{Username: opts.username, Password: password, Account: opts.account}
			case interactive(cmd.InOrStdin()):
				defaults := domain.Credentials{Username: opts.username, Account: opts.account}
				if profile, err := app.credentialRepo.Load(ctx); err == nil {
					defaults.Username = firstNonEmpty(defaults.Username, profile.Username)
					defaults.Account = firstNonEmpty(defaults.Account, profile.Account)
				}
				prompted, err := prompt.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).WithDefaults(defaults).Prompt(ctx)
				if err != nil {
					return err
				}
				creds = prompted
			default:
				return errCredentialFlagsRequired
			}

			if !creds.Complete() {
				return errCredentialFlagsRequired
			}
			if err := service.Save(ctx, creds); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "credentials saved for %s (account %s)\n", strings.TrimSpace(creds.Username), strings.TrimSpace(creds.Account))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "portal username")
	cmd.Flags().StringVar(&opts.account, "account", "", "brokerage account number")
	cmd.Flags().BoolVar(&opts.passwordStdin, "password-stdin", false, "read the password from the first line of stdin")

	return cmd
}

func newCredentialsShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored login without revealing the password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			profile, err := app.credentialRepo.Load(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrCredentialsMissing) {
					return fmt.Errorf("%w: run `apx credentials set`", err)
				}
				return err
			}

			ref := profile.PasswordRef
			if ref == "" {
				ref = domain.PasswordSecretRef(profile.Username)
			}

			passwordState := "stored"
			if _, err := app.secretStore.Get(ctx, ref); err != nil {
				if !errors.Is(err, domain.ErrSecretNotFound) {
					return fmt.Errorf("read password secret: %w", err)
				}
				passwordState = "missing"
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "username: %s\n", profile.Username); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "account: %s\n", profile.Account); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "password: %s (%s)\n", passwordState, ref)
			return err
		},
	}
}

func newCredentialsRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the stored login and its password secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := application.NewCredentialService(app.credentialRepo, app.secretStore, nil, app.logger)
			if err := service.Remove(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "credentials removed")
			return err
		},
	}
}

func readPassword(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
