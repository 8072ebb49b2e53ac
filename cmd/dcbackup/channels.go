package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dcbackup/pkg/archive"
	"dcbackup/pkg/config"
)

// channelsCmd represents the channels command
var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the configured channels and topics",
	Args:  cobra.NoArgs,
	RunE:  runChannels,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}

func runChannels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(cfg.Channels) == 0 && len(cfg.Topics) == 0 {
		fmt.Println("No channels configured. Add them to the config file:")
		fmt.Println()
		fmt.Println("  channels:")
		fmt.Println("    - name: general")
		fmt.Println("      id: \"123456789012345678\"")
		return nil
	}

	printTargets := func(kind archive.Kind, targets []config.ChannelTarget) {
		if len(targets) == 0 {
			return
		}
		fmt.Printf("%s:\n", kind)
		for _, t := range targets {
			fmt.Printf("  %-24s %s\n", t.Name, t.ID)
		}
		fmt.Println()
	}

	printTargets(archive.KindChannel, cfg.Channels)
	printTargets(archive.KindTopic, cfg.Topics)

	return nil
}
