package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"dcbackup/pkg/archive"
	"dcbackup/pkg/checkpoint"
	"dcbackup/pkg/config"
	"dcbackup/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the archive state of each configured channel",
	Long: `Show, for every configured channel and topic, whether an archive exists
on disk and the ID of the last archived message.

A channel without a checkpoint will be archived from its beginning on
the next backup run.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	fs := afero.NewOsFs()
	layout := archive.NewLayout(fs, cfg.Output.BaseDirectory)
	ckpts := checkpoint.NewStore(fs, logger.GetLogger())

	fmt.Printf("Archive root: %s\n\n", layout.BaseDir())

	printKind := func(kind archive.Kind, targets []config.ChannelTarget) {
		if len(targets) == 0 {
			return
		}
		fmt.Printf("%s:\n", kind)
		for _, t := range targets {
			paths := layout.Channel(kind, t.Name)

			last, ok := ckpts.Load(paths.CheckpointFile)
			checkpointCol := "(none)"
			if ok {
				checkpointCol = last
			}

			logCol := "no log"
			if exists, _ := afero.Exists(fs, paths.LogFile); exists {
				logCol = "archived"
			}

			fmt.Printf("  %-24s %-10s last message: %s\n", t.Name, logCol, checkpointCol)
		}
		fmt.Println()
	}

	printKind(archive.KindChannel, cfg.Channels)
	printKind(archive.KindTopic, cfg.Topics)

	return nil
}
