package archive

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"dcbackup/pkg/discord"
	"dcbackup/pkg/logger"
)

// AppendStats reports what one Append call added to a channel's log
type AppendStats struct {
	TextLines  int
	ImageLines int
	Images     int
}

// Writer appends message and image records to a channel's text log. The log
// is append-only: lines are never rewritten or deleted, and the file is
// flushed and closed before Append returns so callers may treat a returned
// nil error as a durable write.
type Writer struct {
	fs     afero.Fs
	media  *MediaFetcher
	logger logger.Logger
}

// NewWriter creates a log writer. media may be nil, in which case image
// references are skipped entirely.
func NewWriter(fs afero.Fs, media *MediaFetcher, log logger.Logger) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Writer{fs: fs, media: media, logger: log}
}

// Append writes the page of messages to the channel's log in the order
// presented. Each message contributes one text line when it has content,
// plus one "shared an image" line per successfully downloaded image. Image
// lines are only written after the download succeeded, so the log never
// references a file that is not on disk.
func (w *Writer) Append(ctx context.Context, paths ChannelPaths, messages []discord.Message) (AppendStats, error) {
	var stats AppendStats

	file, err := w.fs.OpenFile(paths.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return stats, fmt.Errorf("failed to open log file: %w", err)
	}

	buf := bufio.NewWriter(file)

	for i := range messages {
		msg := &messages[i]

		if msg.Content != "" {
			if _, err := buf.WriteString(FormatTextLine(msg.Timestamp, msg.AuthorName(), msg.Content)); err != nil {
				file.Close()
				return stats, fmt.Errorf("failed to write message line: %w", err)
			}
			stats.TextLines++
		}

		if w.media == nil {
			continue
		}

		for _, imageURL := range msg.ImageURLs() {
			filename, ok := w.media.Fetch(ctx, imageURL, msg, paths.ImagesDir)
			if !ok {
				continue
			}
			stats.Images++

			relPath := ImagesDirName + "/" + filename
			if _, err := buf.WriteString(FormatImageLine(msg.Timestamp, msg.AuthorName(), relPath)); err != nil {
				file.Close()
				return stats, fmt.Errorf("failed to write image line: %w", err)
			}
			stats.ImageLines++
		}
	}

	if err := buf.Flush(); err != nil {
		file.Close()
		return stats, fmt.Errorf("failed to flush log file: %w", err)
	}

	// Sync before close: checkpoint advance depends on these lines being
	// durable, not merely handed to the OS.
	if err := file.Sync(); err != nil {
		file.Close()
		return stats, fmt.Errorf("failed to sync log file: %w", err)
	}

	if err := file.Close(); err != nil {
		return stats, fmt.Errorf("failed to close log file: %w", err)
	}

	w.logger.DebugWithFields("page appended to log", map[string]interface{}{
		"channel":     paths.Name,
		"text_lines":  stats.TextLines,
		"image_lines": stats.ImageLines,
	})

	return stats, nil
}
