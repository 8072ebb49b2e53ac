package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"dcbackup/pkg/archive"
	"dcbackup/pkg/config"
	"dcbackup/pkg/viewer"
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse archived channels in the terminal",
	Long: `Open an interactive terminal browser over the archived channels.

The browser is read-only and works entirely offline: it parses the
message logs already on disk and never talks to Discord.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	layout := archive.NewLayout(afero.NewOsFs(), cfg.Output.BaseDirectory)
	return viewer.Run(layout)
}
