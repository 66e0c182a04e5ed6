package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lfaller/clinvar-data-monitor/internal/logging"
	"github.com/lfaller/clinvar-data-monitor/pkg/config"
)

var (
	version  = "1.0.0"
	cfgPath  string
	logLevel string
)

func main() {
	logging.Init("info")

	root := &cobra.Command{
		Use:   "clinvar-monitor",
		Short: "ClinVar data quality monitor",
		Long: `clinvar-monitor downloads the ClinVar variant summary dataset,
computes data-quality metrics over it and publishes a versioned,
content-addressed package with the quality report attached as
searchable metadata.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				logging.Init(logLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "config/config.yaml", "Path to YAML configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(NewRunCmd())
	root.AddCommand(NewFetchCmd())
	root.AddCommand(NewAssessCmd())
	root.AddCommand(NewPublishCmd())
	root.AddCommand(NewHistoryCmd())
	root.AddCommand(NewVersionCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig loads the configured YAML file and applies the log-level
// override from the command line.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}
