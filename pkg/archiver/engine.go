package archiver

import (
	"context"

	"dcbackup/pkg/archive"
	"dcbackup/pkg/checkpoint"
	"dcbackup/pkg/config"
	"dcbackup/pkg/discord"
	"dcbackup/pkg/logger"
	"dcbackup/pkg/ratelimit"
	"dcbackup/pkg/retry"
)

// MessageFetcher fetches one page of channel messages. *discord.Client
// satisfies it; tests substitute a fake.
type MessageFetcher interface {
	FetchMessages(ctx context.Context, channelID string, limit int, after string) ([]discord.Message, error)
}

// engineState tracks the per-channel pagination state machine
type engineState int

const (
	stateFetching engineState = iota
	stateEmpty
	stateFailed
)

// ChannelResult summarizes one channel's run
type ChannelResult struct {
	Name          string
	Kind          archive.Kind
	Fetched       int
	TextLines     int
	ImageLines    int
	Images        int
	LastMessageID string
	Err           error
}

// Engine drives the incremental fetch of a single channel: it paginates the
// message feed from the last checkpoint, hands each page to the log writer,
// and commits the new cursor once the run terminates.
//
// Precondition on the remote feed: when paginating forward with `after`,
// pages arrive oldest first, so the last element of a page is the next
// cursor. The engine assumes and depends on that ordering.
type Engine struct {
	client      MessageFetcher
	writer      *archive.Writer
	checkpoints *checkpoint.Store
	pacer       ratelimit.Limiter
	budget      ratelimit.Limiter
	retryCfg    *retry.Config
	pageLimit   int
	logger      logger.Logger
}

// NewEngine creates a pagination engine. pacer enforces the fixed delay
// between successive page requests; budget, if non-nil, adds a coarse
// requests-per-period ceiling. retryCfg may be nil for single attempts.
func NewEngine(
	client MessageFetcher,
	writer *archive.Writer,
	checkpoints *checkpoint.Store,
	pacer ratelimit.Limiter,
	budget ratelimit.Limiter,
	retryCfg *retry.Config,
	pageLimit int,
	log logger.Logger,
) *Engine {
	if pageLimit <= 0 || pageLimit > discord.MaxPageLimit {
		pageLimit = discord.DefaultPageLimit
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Engine{
		client:      client,
		writer:      writer,
		checkpoints: checkpoints,
		pacer:       pacer,
		budget:      budget,
		retryCfg:    retryCfg,
		pageLimit:   pageLimit,
		logger:      log,
	}
}

// Run archives one channel to completion. It returns a non-nil
// ChannelResult.Err when the channel terminated in a failed state; progress
// made before the failure is already durable and checkpointed, so the next
// run resumes after the last confirmed page rather than refetching it.
func (e *Engine) Run(ctx context.Context, target config.ChannelTarget, kind archive.Kind, paths archive.ChannelPaths) ChannelResult {
	result := ChannelResult{Name: target.Name, Kind: kind}

	log := e.logger.WithFields(map[string]interface{}{
		"channel":    target.Name,
		"channel_id": target.ID,
		"kind":       string(kind),
	})

	cursor, resuming := e.checkpoints.Load(paths.CheckpointFile)
	if resuming {
		log.WithField("after", cursor).Info("resuming from checkpoint")
	} else {
		log.Info("no checkpoint, fetching from the beginning")
	}

	state := stateFetching
	for state == stateFetching {
		if e.budget != nil && !e.budget.Allow() {
			log.Warn("request budget exhausted, waiting for refill")
			e.budget.Wait()
		}
		if e.pacer != nil {
			e.pacer.Wait()
		}

		messages, err := e.fetchPage(ctx, target.ID, cursor)
		if err != nil {
			log.WithError(err).Error("page fetch failed, abandoning channel for this run")
			result.Err = err
			state = stateFailed
			break
		}

		if len(messages) == 0 {
			log.Debug("no more messages to fetch")
			state = stateEmpty
			break
		}

		stats, err := e.writer.Append(ctx, paths, messages)
		result.TextLines += stats.TextLines
		result.ImageLines += stats.ImageLines
		result.Images += stats.Images
		if err != nil {
			// The page is not durably appended, so the cursor must not
			// advance past it; the next run re-requests this page.
			log.WithError(err).Error("log append failed, abandoning channel for this run")
			result.Err = err
			state = stateFailed
			break
		}

		cursor = messages[len(messages)-1].ID
		result.Fetched += len(messages)

		log.DebugWithFields("page archived", map[string]interface{}{
			"count":  len(messages),
			"cursor": cursor,
		})
	}

	// Commit forward progress on both success and failure. The cursor only
	// ever reflects durably appended pages at this point.
	if result.Fetched > 0 {
		result.LastMessageID = cursor
		if err := e.checkpoints.Save(paths.CheckpointFile, cursor); err != nil {
			log.WithError(err).Error("failed to commit checkpoint")
			if result.Err == nil {
				result.Err = err
			}
		} else {
			log.InfoWithFields("checkpoint committed", map[string]interface{}{
				"message_id": cursor,
				"fetched":    result.Fetched,
			})
		}
	}

	return result
}

// fetchPage requests one page, applying the retry policy when configured
func (e *Engine) fetchPage(ctx context.Context, channelID, after string) ([]discord.Message, error) {
	if e.retryCfg == nil {
		return e.client.FetchMessages(ctx, channelID, e.pageLimit, after)
	}

	cfg := *e.retryCfg
	cfg.Context = ctx
	return retry.DoWithResult(func() ([]discord.Message, error) {
		return e.client.FetchMessages(ctx, channelID, e.pageLimit, after)
	}, &cfg)
}
