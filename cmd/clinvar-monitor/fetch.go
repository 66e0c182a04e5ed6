package main

import (
	"github.com/spf13/cobra"

	"github.com/lfaller/clinvar-data-monitor/internal/fetcher"
)

// NewFetchCmd creates the fetch command
func NewFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download and verify the ClinVar dataset",
		Long: `Download the ClinVar variant summary archive and its MD5 checksum,
validate integrity and decompress the data. An archive already present
in the download directory is reused without re-validating its checksum.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			f, err := fetcher.New(cfg)
			if err != nil {
				return err
			}

			dataFile, err := f.FetchAndVerify(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Println(dataFile)
			return nil
		},
	}
}
