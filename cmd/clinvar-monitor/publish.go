package main

import (
	"github.com/spf13/cobra"

	"github.com/lfaller/clinvar-data-monitor/internal/packager"
	"github.com/lfaller/clinvar-data-monitor/internal/quality"
)

// NewPublishCmd creates the publish command
func NewPublishCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "publish <data-file> <report-file>",
		Short: "Package a data file with its quality report",
		Long: `Wrap a variant data file and a previously saved quality report into
a versioned, content-addressed package and push it to the registry when
push_enabled is set. With pushing disabled the package is still built
locally and the command succeeds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			report, err := quality.LoadReport(args[1])
			if err != nil {
				return err
			}

			p := packager.New(cfg)
			pkg, err := p.Publish(cmd.Context(), args[0], args[1], report)
			if err != nil {
				return err
			}

			cmd.Printf("Package:  %s\n", pkg.Name)
			cmd.Printf("Revision: %s\n", pkg.Revision)
			cmd.Printf("Top hash: %s\n", pkg.TopHash)

			if list {
				for _, info := range p.ListRemote(cmd.Context()) {
					cmd.Printf("  %s (%s)\n", info.Name, info.TopHash)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List registry packages after publishing")
	return cmd
}
