package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bnema/apex-activities-cli/internal/observability"
)

func Execute(ctx context.Context) error {
	defer observability.Sync()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "apx",
		Short:         "Apex activities CLI (apx): sync brokerage activity history",
		Long:          "apx logs in to the Apex Clearing portal with a headless browser, keeps the session cookies between runs, and incrementally syncs trades, money movements and position adjustments into a local or Postgres host.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSyncCmd(app),
		newLoginCmd(app),
		newCredentialsCmd(app),
		newCookiesCmd(app),
	)

	return rootCmd
}
