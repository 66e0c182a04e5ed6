package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lfaller/clinvar-data-monitor/internal/logging"
	"github.com/lfaller/clinvar-data-monitor/internal/pipeline"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full monitoring pipeline",
		Long: `Download the latest ClinVar variant summary, assess its data
quality and publish a versioned package with the quality report
attached as metadata.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			closeLogs, err := logging.Setup(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeLogs()
			}()

			p, err := pipeline.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = p.Close()
			}()

			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Data file:     %s\n", result.DataFile)
			cmd.Printf("Report:        %s\n", result.ReportPath)
			cmd.Printf("Quality score: %.2f\n", result.Report.Score())
			if result.Package != nil {
				cmd.Printf("Package:       %s (top hash %s)\n", result.Package.Name, result.Package.TopHash)
			}
			cmd.Printf("Completed in %s\n", result.Duration.Round(time.Millisecond))
			return nil
		},
	}
}
