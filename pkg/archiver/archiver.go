package archiver

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"dcbackup/internal/worker"
	"dcbackup/pkg/archive"
	"dcbackup/pkg/checkpoint"
	"dcbackup/pkg/config"
	"dcbackup/pkg/discord"
	"dcbackup/pkg/logger"
	"dcbackup/pkg/ratelimit"
	"dcbackup/pkg/retry"
)

// channelJob pairs a configured target with its archive subtree
type channelJob struct {
	target config.ChannelTarget
	kind   archive.Kind
}

// RunSummary aggregates the results of one archival run
type RunSummary struct {
	Results      []ChannelResult
	TotalFetched int
	TotalImages  int
	Failed       int
}

// Archiver orchestrates a run over the configured channel and topic targets.
// Targets are processed in configuration order, each one isolated: a failing
// channel is reported in the summary but never aborts the others.
type Archiver struct {
	cfg     *config.Config
	engine  *Engine
	layout  *archive.Layout
	ckpts   *checkpoint.Store
	logger  logger.Logger
}

// New creates an archiver backed by the real Discord API and the local
// filesystem.
func New(cfg *config.Config) *Archiver {
	client := discord.NewClient(
		cfg.Discord.APIBaseURL,
		cfg.Discord.Token,
		cfg.Discord.UserAgent,
		cfg.Backup.RequestTimeout,
		logger.GetLogger(),
	)
	return NewWithDeps(cfg, client, client, afero.NewOsFs())
}

// NewWithDeps creates an archiver with injected collaborators, which is how
// tests substitute fake endpoints, delays and filesystems.
func NewWithDeps(cfg *config.Config, fetcher MessageFetcher, downloader archive.Downloader, fs afero.Fs) *Archiver {
	log := logger.GetLogger()

	var retryCfg *retry.Config
	if cfg.Retry.MaxAttempts > 1 {
		retryCfg = &retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff: &retry.ExponentialBackoff{
				BaseDelay:    cfg.Retry.BaseDelay,
				MaxDelay:     cfg.Retry.MaxDelay,
				Multiplier:   cfg.Retry.Multiplier,
				JitterFactor: cfg.Retry.JitterFactor,
			},
			RetryIf: retry.DefaultRetryIf,
			Logger:  log,
		}
	}

	media := archive.NewMediaFetcher(fs, downloader, archive.TimestampAuthorNaming, retryCfg, log)
	writer := archive.NewWriter(fs, media, log)
	ckpts := checkpoint.NewStore(fs, log)
	layout := archive.NewLayout(fs, cfg.Output.BaseDirectory)

	pacer := ratelimit.NewFixedInterval(cfg.RateLimit.RequestDelay)
	var budget ratelimit.Limiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		budget = ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}

	engine := NewEngine(fetcher, writer, ckpts, pacer, budget, retryCfg, cfg.Backup.PageLimit, log)

	return &Archiver{
		cfg:    cfg,
		engine: engine,
		layout: layout,
		ckpts:  ckpts,
		logger: log,
	}
}

// Layout exposes the archive layout, used by the status and view commands
func (a *Archiver) Layout() *archive.Layout {
	return a.layout
}

// Checkpoints exposes the checkpoint store, used by the status command
func (a *Archiver) Checkpoints() *checkpoint.Store {
	return a.ckpts
}

// targets builds the job list in configuration order, optionally filtered to
// the given target names.
func (a *Archiver) targets(only []string) ([]channelJob, error) {
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}

	var jobs []channelJob
	for _, t := range a.cfg.Channels {
		if len(only) == 0 || wanted[t.Name] {
			jobs = append(jobs, channelJob{target: t, kind: archive.KindChannel})
			delete(wanted, t.Name)
		}
	}
	for _, t := range a.cfg.Topics {
		if len(only) == 0 || wanted[t.Name] {
			jobs = append(jobs, channelJob{target: t, kind: archive.KindTopic})
			delete(wanted, t.Name)
		}
	}

	if len(only) > 0 && len(wanted) > 0 {
		for name := range wanted {
			return nil, fmt.Errorf("unknown target %q", name)
		}
	}

	return jobs, nil
}

// Run archives every configured target (or the named subset) and returns a
// per-channel summary. The returned error only reports setup problems;
// per-channel failures live in the summary.
func (a *Archiver) Run(ctx context.Context, only []string) (*RunSummary, error) {
	jobs, err := a.targets(only)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}

	a.logger.InfoWithFields("backup run started", map[string]interface{}{
		"targets":     len(jobs),
		"concurrency": a.cfg.Backup.Concurrency,
	})

	pool := worker.New(a.cfg.Backup.Concurrency, a.processChannel, a.logger)
	pool.Start(ctx)

	// Submit from a separate goroutine: both pool channels are bounded, so
	// feeding all jobs before draining any results would wedge once the
	// target list outgrows the buffers.
	go func() {
		for _, job := range jobs {
			if err := pool.Submit(job); err != nil {
				break
			}
		}
		pool.Close()
	}()

	byName := make(map[string]ChannelResult, len(jobs))
	for result := range pool.Results() {
		byName[result.Name] = result
	}

	// Report in configuration order regardless of completion order.
	summary := &RunSummary{}
	for _, job := range jobs {
		result, ok := byName[job.target.Name]
		if !ok {
			result = ChannelResult{
				Name: job.target.Name,
				Kind: job.kind,
				Err:  ctx.Err(),
			}
		}
		summary.Results = append(summary.Results, result)
		summary.TotalFetched += result.Fetched
		summary.TotalImages += result.Images
		if result.Err != nil {
			summary.Failed++
		}
	}

	a.logger.InfoWithFields("backup run completed", map[string]interface{}{
		"fetched": summary.TotalFetched,
		"images":  summary.TotalImages,
		"failed":  summary.Failed,
	})

	return summary, nil
}

// processChannel prepares one channel's directories, runs the pagination
// engine, and applies the inter-channel delay. Any panic-free failure is
// folded into the result so the run continues with the next target.
func (a *Archiver) processChannel(ctx context.Context, job channelJob) ChannelResult {
	paths := a.layout.Channel(job.kind, job.target.Name)

	if err := a.layout.Ensure(paths); err != nil {
		a.logger.WithError(err).WithField("channel", job.target.Name).Error("failed to prepare archive directories")
		return ChannelResult{Name: job.target.Name, Kind: job.kind, Err: err}
	}

	result := a.engine.Run(ctx, job.target, job.kind, paths)

	a.logger.InfoWithFields("channel processed", map[string]interface{}{
		"channel": result.Name,
		"fetched": result.Fetched,
		"images":  result.Images,
		"failed":  result.Err != nil,
	})

	if delay := a.cfg.RateLimit.ChannelDelay; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	return result
}
