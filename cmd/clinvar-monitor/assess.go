package main

import (
	"github.com/spf13/cobra"

	"github.com/lfaller/clinvar-data-monitor/internal/quality"
)

// NewAssessCmd creates the assess command
func NewAssessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assess <data-file>",
		Short: "Assess the quality of a local variant summary file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			checker := quality.NewChecker(cfg)
			report, reportPath, err := checker.Assess(args[0])
			if err != nil {
				return err
			}

			cmd.Printf("Rows:          %d\n", report.RowCount)
			cmd.Printf("Columns:       %d\n", report.ColumnCount)
			cmd.Printf("Null cells:    %.2f%%\n", report.NullPercentageAvg)
			cmd.Printf("Duplicates:    %d\n", report.DuplicateCount)
			cmd.Printf("Conflicts:     %d\n", report.ConflictingCount)
			cmd.Printf("Quality score: %.2f\n", report.Score())
			cmd.Printf("Report:        %s\n", reportPath)
			return nil
		},
	}
}
