package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"dcbackup/pkg/discord"
	"dcbackup/pkg/logger"
	"dcbackup/pkg/retry"
)

// Downloader fetches a remote resource's bytes. *discord.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// NamingStrategy derives a local filename for an image from its message and
// source URL. The name must be deterministic so re-runs overwrite rather
// than accumulate.
type NamingStrategy func(msg *discord.Message, rawURL string) string

// TimestampAuthorNaming names the file "<timestamp>_<author><ext>". Messages
// from different authors or moments can then share an uploaded filename
// without colliding. A message carrying several images gets an ordinal
// suffix from the second one on, so siblings do not overwrite each other;
// the first image keeps the plain name so existing archives stay stable.
func TimestampAuthorNaming(msg *discord.Message, rawURL string) string {
	base := fmt.Sprintf("%s_%s", msg.Timestamp, msg.AuthorName())
	for i, u := range msg.ImageURLs() {
		if u == rawURL {
			if i > 0 {
				base = fmt.Sprintf("%s_%d", base, i+1)
			}
			break
		}
	}
	return base + urlExt(rawURL)
}

// BasenameNaming names the file after the last element of the URL path
func BasenameNaming(msg *discord.Message, rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}

// urlExt extracts the file extension from a URL's path component
func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

// MediaFetcher downloads a message's images into a channel's images
// directory. Failures are contained: a failed download yields ok==false and
// the caller must not reference the image in the log.
type MediaFetcher struct {
	fs       afero.Fs
	client   Downloader
	naming   NamingStrategy
	retryCfg *retry.Config
	logger   logger.Logger
}

// NewMediaFetcher creates a media fetcher. A nil naming strategy defaults to
// TimestampAuthorNaming; a nil retry config means single-attempt downloads.
func NewMediaFetcher(fs afero.Fs, client Downloader, naming NamingStrategy, retryCfg *retry.Config, log logger.Logger) *MediaFetcher {
	if naming == nil {
		naming = TimestampAuthorNaming
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &MediaFetcher{
		fs:       fs,
		client:   client,
		naming:   naming,
		retryCfg: retryCfg,
		logger:   log,
	}
}

// Fetch downloads one image into destDir and returns the saved filename.
// On any failure it returns ok==false; the error is logged, never escalated,
// so a single bad image cannot abort a page or a channel.
func (f *MediaFetcher) Fetch(ctx context.Context, rawURL string, msg *discord.Message, destDir string) (string, bool) {
	filename := f.naming(msg, rawURL)
	if filename == "" || filename == "." {
		f.logger.WarnWithFields("could not derive image filename", map[string]interface{}{
			"url": rawURL,
		})
		return "", false
	}

	data, err := f.download(ctx, rawURL)
	if err != nil {
		f.logger.ErrorWithFields("failed to download image", map[string]interface{}{
			"url":   rawURL,
			"error": err.Error(),
		})
		return "", false
	}

	if err := f.save(filepath.Join(destDir, filename), data); err != nil {
		f.logger.ErrorWithFields("failed to save image", map[string]interface{}{
			"url":      rawURL,
			"filename": filename,
			"error":    err.Error(),
		})
		return "", false
	}

	f.logger.DebugWithFields("image downloaded", map[string]interface{}{
		"url":      rawURL,
		"filename": filename,
		"size":     len(data),
	})

	return filename, true
}

func (f *MediaFetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	if f.retryCfg == nil {
		return f.client.Download(ctx, rawURL)
	}

	cfg := *f.retryCfg
	cfg.Context = ctx
	return retry.DoWithResult(func() ([]byte, error) {
		return f.client.Download(ctx, rawURL)
	}, &cfg)
}

// save writes the image via a temp file and rename. Re-downloads of the same
// name overwrite the previous file; no integrity check is performed.
func (f *MediaFetcher) save(dest string, data []byte) error {
	tempPath := dest + ".tmp"
	out, err := f.fs.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, bytes.NewReader(data))
	closeErr := out.Close()

	if err != nil {
		f.fs.Remove(tempPath)
		return fmt.Errorf("failed to write image data: %w", err)
	}
	if closeErr != nil {
		f.fs.Remove(tempPath)
		return fmt.Errorf("failed to close image file: %w", closeErr)
	}

	if err := f.fs.Rename(tempPath, dest); err != nil {
		f.fs.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
