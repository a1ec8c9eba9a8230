package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/adapters/render/summary"
	"github.com/bnema/apex-activities-cli/internal/application"
	"github.com/bnema/apex-activities-cli/internal/domain"
)

const sinceLayout = "2006-01-02"

type syncOptions struct {
	target     string
	since      string
	jsonOutput bool
	dryRun     bool
}

type syncWindowJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type syncResultJSON struct {
	RunID    string           `json:"run_id"`
	Target   string           `json:"target"`
	Window   syncWindowJSON   `json:"window"`
	Attempts int              `json:"attempts"`
	Session  string           `json:"session"`
	Written  bool             `json:"written"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
}

// resolvedCredentials hands already prompted credentials to the sync service
// so no prompt competes with the spinner.
type resolvedCredentials domain.Credentials

func (c resolvedCredentials) Resolve(context.Context) (domain.Credentials, error) {
	return domain.Credentials(c), nil
}

func newSyncCmd(app *app) *cobra.Command {
	opts := syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new brokerage activities and write them to the host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			since, err := parseSince(opts.since)
			if err != nil {
				return err
			}
			target := strings.TrimSpace(opts.target)
			if target == "" {
				target = app.cfg.Host.Target
			}

			creds, err := app.credentialService(cmd.InOrStdin(), cmd.ErrOrStderr()).Resolve(ctx)
			if err != nil {
				return fmt.Errorf("resolve credentials: %w", err)
			}

			pipe, closePipe, err := app.openPipe(ctx, target)
			defer closePipe()
			if err != nil {
				return fmt.Errorf("open host: %w", err)
			}

			sessions, err := app.sessionManager()
			if err != nil {
				return err
			}
			defer sessions.Close()

			service := application.NewSyncService(resolvedCredentials(creds), sessions, app.fetcher, app.clock, app.categories, app.logger)

			var result application.SyncResult
			written := false
			run := func(ctx context.Context) error {
				var err error
				result, err = service.Sync(ctx, pipe, since)
				if err != nil {
					return err
				}
				if opts.dryRun || result.Table.Len() == 0 {
					return nil
				}
				if err := pipe.Write(ctx, result.Table); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
				written = true
				app.logger.Info("activities written", zap.String("run_id", result.RunID), zap.Int("rows", result.Table.Len()))
				return nil
			}

			if opts.jsonOutput {
				err = run(ctx)
			} else {
				err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Syncing Apex activities...", run)
			}
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(toSyncResultJSON(result, written))
			}

			rendered, err := app.summaryRenderer(result, summary.RenderOptions{DryRun: opts.dryRun})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.target, "target", "", "host table to sync into (defaults to host.target)")
	cmd.Flags().StringVar(&opts.since, "since", "", "fetch from this date (YYYY-MM-DD) instead of the stored sync time")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the fetched activities as JSON")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "fetch and normalize without writing to the host")

	return cmd
}

func parseSince(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	since, err := time.ParseInLocation(sinceLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid --since %q: expected YYYY-MM-DD", raw)
	}
	return &since, nil
}

func toSyncResultJSON(result application.SyncResult, written bool) syncResultJSON {
	columns := result.Table.ColumnNames()
	rows := make([]map[string]any, 0, result.Table.Len())
	for _, record := range result.Table.Records {
		row := make(map[string]any, len(columns))
		for _, name := range columns {
			row[name] = record.Value(name)
		}
		rows = append(rows, row)
	}

	return syncResultJSON{
		RunID:    result.RunID,
		Target:   result.Target,
		Window:   syncWindowJSON{Start: result.Window.Start, End: result.Window.End},
		Attempts: result.Attempts,
		Session:  string(result.Origin),
		Written:  written,
		Columns:  columns,
		Rows:     rows,
	}
}
