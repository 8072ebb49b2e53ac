package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1500*time.Millisecond, cfg.RateLimit.RequestDelay)
	assert.Equal(t, 3*time.Second, cfg.RateLimit.ChannelDelay)
	assert.Equal(t, "./backups", cfg.Output.BaseDirectory)
	assert.Equal(t, 100, cfg.Backup.PageLimit)
	assert.Equal(t, 1, cfg.Backup.Concurrency)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts, "retries are off unless opted into")
	assert.Equal(t, "https://discord.com/api/v9", cfg.Discord.APIBaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("DCBACKUP_OUTPUT_DIR", "/tmp/archive")
	t.Setenv("DCBACKUP_REQUEST_DELAY", "2s")
	t.Setenv("DCBACKUP_LOG_LEVEL", "debug")
	t.Setenv("DCBACKUP_CONCURRENCY", "4")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-token", cfg.Discord.Token)
	assert.Equal(t, "/tmp/archive", cfg.Output.BaseDirectory)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RequestDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Backup.Concurrency)
}

func TestDCBackupTokenOverridesDiscordToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "old-token")
	t.Setenv("DCBACKUP_TOKEN", "new-token")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "new-token", cfg.Discord.Token)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dcbackup.yaml")
	content := `
output:
  base_directory: /data/archive
rate_limit:
  request_delay: 500ms
channels:
  - name: general
    id: "42"
topics:
  - name: planning
    id: "77"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "/data/archive", cfg.Output.BaseDirectory)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimit.RequestDelay)
	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, ChannelTarget{Name: "general", ID: "42"}, cfg.Channels[0])
	require.Len(t, cfg.Topics, 1)
	assert.Equal(t, ChannelTarget{Name: "planning", ID: "77"}, cfg.Topics[0])
}

func TestValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Channels = []ChannelTarget{{Name: "general", ID: "42"}}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing channel id", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Channels = []ChannelTarget{{Name: "general"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id is required")
	})

	t.Run("missing channel name", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Channels = []ChannelTarget{{ID: "42"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("duplicate names within channels", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Channels = []ChannelTarget{
			{Name: "general", ID: "42"},
			{Name: "general", ID: "43"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate name")
	})

	t.Run("duplicate names across channels and topics", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Channels = []ChannelTarget{{Name: "general", ID: "42"}}
		cfg.Topics = []ChannelTarget{{Name: "general", ID: "77"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate name")
	})

	t.Run("unsafe directory name", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Channels = []ChannelTarget{{Name: "../escape", ID: "42"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a safe directory key")
	})

	t.Run("negative request delay", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RateLimit.RequestDelay = -time.Second
		assert.Error(t, cfg.Validate())
	})

	t.Run("page limit out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backup.PageLimit = 500
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"token":         "flag-token",
		"output":        "/flag/dir",
		"request-delay": 250 * time.Millisecond,
		"concurrency":   2,
		"max-attempts":  3,
		"log-level":     "warn",
	})

	assert.Equal(t, "flag-token", cfg.Discord.Token)
	assert.Equal(t, "/flag/dir", cfg.Output.BaseDirectory)
	assert.Equal(t, 250*time.Millisecond, cfg.RateLimit.RequestDelay)
	assert.Equal(t, 2, cfg.Backup.Concurrency)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Channels = []ChannelTarget{{Name: "general", ID: "42"}}
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Channels, loaded.Channels)
	assert.Equal(t, cfg.Output.BaseDirectory, loaded.Output.BaseDirectory)
}
