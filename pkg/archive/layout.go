package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Kind distinguishes the channel and topic subtrees of the archive root.
// Both are archived identically; the split only affects the directory layout.
type Kind string

const (
	KindChannel Kind = "channels"
	KindTopic   Kind = "topics"
)

// ChannelPaths holds the on-disk locations of one channel's archive:
// the channel directory, its append-only message log, the images
// subdirectory, and the resume checkpoint.
type ChannelPaths struct {
	Name           string
	Dir            string
	LogFile        string
	ImagesDir      string
	CheckpointFile string
}

// ImagesDirName is the per-channel subdirectory that downloaded images are
// saved to; log lines reference images relative to the channel directory,
// so the name is part of the on-disk format.
const ImagesDirName = "images"

// Layout computes and materializes the archive directory structure
type Layout struct {
	fs      afero.Fs
	baseDir string
}

// NewLayout creates a layout rooted at baseDir
func NewLayout(fs afero.Fs, baseDir string) *Layout {
	return &Layout{fs: fs, baseDir: baseDir}
}

// Channel returns the paths for a named channel of the given kind
func (l *Layout) Channel(kind Kind, name string) ChannelPaths {
	dir := filepath.Join(l.baseDir, string(kind), name)
	return ChannelPaths{
		Name:           name,
		Dir:            dir,
		LogFile:        filepath.Join(dir, fmt.Sprintf("%s_messages.txt", name)),
		ImagesDir:      filepath.Join(dir, ImagesDirName),
		CheckpointFile: filepath.Join(dir, fmt.Sprintf("last_message_%s.txt", name)),
	}
}

// Ensure creates the channel directory and its images subdirectory
func (l *Layout) Ensure(p ChannelPaths) error {
	if err := l.fs.MkdirAll(p.ImagesDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directories for %s: %w", p.Name, err)
	}
	return nil
}

// BaseDir returns the archive root directory
func (l *Layout) BaseDir() string {
	return l.baseDir
}

// Fs returns the filesystem the layout operates on
func (l *Layout) Fs() afero.Fs {
	return l.fs
}

// List returns the names of channels present on disk for the given kind,
// in directory order. Only directories containing a message log count.
func (l *Layout) List(kind Kind) ([]string, error) {
	root := filepath.Join(l.baseDir, string(kind))
	entries, err := afero.ReadDir(l.fs, root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p := l.Channel(kind, entry.Name())
		if ok, _ := afero.Exists(l.fs, p.LogFile); ok {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}
