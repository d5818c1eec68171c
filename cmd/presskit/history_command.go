package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"presskit/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline step runs from the build ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open build ledger: %w", err)
			}
			defer store.Close()

			records, err := store.RecentSteps(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No recorded runs yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.StartedAt.Local().Format(time.DateTime),
					shortRunID(rec.RunID),
					rec.Step,
					strings.Join(rec.Themes, ","),
					strconv.Itoa(rec.Processed),
					strconv.Itoa(rec.Skipped),
					rec.Duration.Round(time.Millisecond).String(),
					historyOutcome(rec),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Run", "Step", "Themes", "Processed", "Skipped", "Duration", "Outcome"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of step runs to show")
	return cmd
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func historyOutcome(rec ledger.StepRecord) string {
	if rec.Outcome == ledger.OutcomeFailed && rec.ErrorText != "" {
		return rec.Outcome + ": " + truncate(rec.ErrorText, 60)
	}
	return rec.Outcome
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
