package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dcbackup/pkg/archiver"
	"dcbackup/pkg/auth"
	"dcbackup/pkg/config"
	"dcbackup/pkg/logger"
)

var (
	// Backup command flags
	outputDir    string
	requestDelay time.Duration
	channelDelay time.Duration
	concurrency  int
	maxRetries   int
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup [channel...]",
	Short: "Archive the configured channels",
	Long: `Fetch new messages for every configured channel and topic, append them
to the per-channel message logs and download any shared images.

Each channel keeps a checkpoint recording the last archived message ID,
so repeated runs only fetch what is new. A channel that fails mid-run
keeps its last good checkpoint and is retried from there next time.

Channel names given as arguments restrict the run to that subset.`,
	Example: `  # Archive everything in the config
  dcbackup backup

  # Archive only two channels
  dcbackup backup general announcements

  # Archive into a different directory
  dcbackup backup --output /mnt/archive`,
	Args: cobra.ArbitraryArgs,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().StringVarP(&outputDir, "output", "o", "", "archive root directory (default: ./backups)")
	backupCmd.Flags().DurationVar(&requestDelay, "request-delay", -1, "delay between message page requests")
	backupCmd.Flags().DurationVar(&channelDelay, "channel-delay", -1, "delay between channels")
	backupCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of channels archived in parallel")
	backupCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "attempts per page request (1 disables retries)")
}

func runBackup(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if requestDelay >= 0 {
		flags["request-delay"] = requestDelay
	}
	if channelDelay >= 0 {
		flags["channel-delay"] = channelDelay
	}
	if concurrency > 0 {
		flags["concurrency"] = concurrency
	}
	if maxRetries > 0 {
		flags["max-attempts"] = maxRetries
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("dcbackup starting")

	// Resolve the token before touching any channel so a missing token
	// fails the whole run up front rather than per channel.
	if cfg.Discord.Token == "" {
		manager, err := auth.NewManager()
		if err == nil {
			if token, err := manager.Retrieve(); err == nil {
				cfg.Discord.Token = token
			}
		}
	}
	if cfg.Discord.Token == "" {
		log.Error("no Discord token configured")
		fmt.Fprintln(os.Stderr, "No Discord token found.")
		fmt.Fprintln(os.Stderr, "\nStore one securely with:")
		fmt.Fprintln(os.Stderr, "  dcbackup auth login")
		fmt.Fprintln(os.Stderr, "\nor set the DISCORD_TOKEN environment variable.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := archiver.New(cfg)
	summary, err := a.Run(ctx, args)
	if err != nil {
		return err
	}

	printSummary(summary)

	if summary.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

func printSummary(summary *archiver.RunSummary) {
	fmt.Println()
	for _, res := range summary.Results {
		status := "ok"
		if res.Err != nil {
			status = "FAILED: " + res.Err.Error()
		}
		fmt.Printf("  %-24s %5d messages, %3d images  %s\n", res.Name, res.Fetched, res.Images, status)
	}
	fmt.Printf("\nTotal: %d messages, %d images", summary.TotalFetched, summary.TotalImages)
	if summary.Failed > 0 {
		fmt.Printf(", %d channel(s) failed", summary.Failed)
	}
	fmt.Println()
}
