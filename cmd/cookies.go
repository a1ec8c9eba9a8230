package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

func newCookiesCmd(app *app) *cobra.Command {
	cookiesCmd := &cobra.Command{
		Use:   "cookies",
		Short: "Inspect or discard the saved session cookies",
	}

	cookiesCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Summarize the saved cookie jar",
			RunE: func(cmd *cobra.Command, _ []string) error {
				jar, err := app.jars.Load(cmd.Context())
				if err != nil {
					if errors.Is(err, domain.ErrCookieJarNotFound) {
						_, err := fmt.Fprintln(cmd.OutOrStdout(), "no saved cookies")
						return err
					}
					return err
				}

				live := jar.Live(app.clock.Now())
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "cookies: %d (%d live), saved %s\n",
					len(jar.Cookies), len(live), jar.SavedAt.Format("2006-01-02 15:04:05 MST"))
				return err
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete the saved cookie jar so the next run logs in again",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := app.jars.Clear(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "cookie jar cleared")
				return err
			},
		},
	)

	return cookiesCmd
}
