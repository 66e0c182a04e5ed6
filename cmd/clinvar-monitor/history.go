package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lfaller/clinvar-data-monitor/internal/history"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded quality runs",
		Long: `List past quality assessment runs from the local history database,
newest first, with the row-count drift of each run relative to the run
before it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.History.DatabasePath == "" {
				return fmt.Errorf("history tracking is disabled: history.database_path is empty")
			}

			store, err := history.Open(cmd.Context(), cfg.History.DatabasePath, cfg.History.DebugSQL)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				cmd.Println("no quality runs recorded")
				return nil
			}

			for i, run := range runs {
				drift := 0.0
				if i+1 < len(runs) {
					drift = history.Drift(run.RowCount, runs[i+1].RowCount)
				}
				cmd.Printf("%s  score=%.2f rows=%d nulls=%.2f%% conflicts=%d drift=%.2f%%\n",
					run.CreatedAt.Format("2006-01-02 15:04:05"),
					run.QualityScore, run.RowCount, run.NullPercentageAvg,
					run.ConflictingCount, drift)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")
	return cmd
}
