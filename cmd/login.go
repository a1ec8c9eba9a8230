package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in through the browser and save fresh session cookies",
		Long:  "login always runs the full browser login, even when the saved cookies are still valid, and replaces the cookie jar with the new session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			creds, err := app.credentialService(cmd.InOrStdin(), cmd.ErrOrStderr()).Resolve(ctx)
			if err != nil {
				return fmt.Errorf("resolve credentials: %w", err)
			}

			sessions, err := app.sessionManager()
			if err != nil {
				return err
			}
			defer sessions.Close()

			err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Logging in to Apex...", func(ctx context.Context) error {
				_, err := sessions.EnsureSession(ctx, creds, true)
				return err
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (account %s), cookies saved to %s\n", creds.Username, creds.Account, app.cfg.Cookies.Path)
			return err
		},
	}
}
