package checkpoint

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"dcbackup/pkg/logger"
)

// Store persists the last archived message id per channel. Each channel has
// one plain-text file containing exactly the id string.
//
// A checkpoint is only ever written after the corresponding messages are
// durably appended to the channel's log; callers own that ordering.
type Store struct {
	fs     afero.Fs
	logger logger.Logger
}

// NewStore creates a checkpoint store on the given filesystem
func NewStore(fs afero.Fs, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{fs: fs, logger: log}
}

// Load reads the checkpoint at path. A missing or unreadable file is treated
// as "no checkpoint" so a run starts from the beginning of the feed; this
// trades a possible duplicate fetch for never silently skipping messages.
func (s *Store) Load(path string) (string, bool) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnWithFields("checkpoint unreadable, starting from scratch", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return "", false
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", false
	}

	return id, true
}

// Save writes messageID to path atomically: the id is written to a temporary
// file, synced, and renamed over the previous checkpoint so a crash can never
// leave a half-written id behind.
func (s *Store) Save(path, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("refusing to save empty checkpoint to %s", path)
	}

	tempPath := path + ".tmp"
	file, err := s.fs.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	if _, err := file.WriteString(messageID); err != nil {
		file.Close()
		s.fs.Remove(tempPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		s.fs.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		s.fs.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := s.fs.Rename(tempPath, path); err != nil {
		s.fs.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	s.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"path":       path,
		"message_id": messageID,
	})

	return nil
}

// Delete removes the checkpoint at path. Deleting a missing checkpoint is
// not an error.
func (s *Store) Delete(path string) error {
	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Exists checks whether a checkpoint file is present at path
func (s *Store) Exists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}
