package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcbackup/pkg/archiver"
	"dcbackup/pkg/config"
	"dcbackup/pkg/discord"
	"dcbackup/pkg/logger"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Discord.Token = "test-token"
	cfg.Discord.APIBaseURL = baseURL
	cfg.RateLimit.RequestDelay = 0
	cfg.RateLimit.ChannelDelay = 0
	cfg.RateLimit.RequestsPerMinute = 10000
	cfg.Backup.PageLimit = 2 // Small pages exercise pagination
	return cfg
}

func newArchiver(cfg *config.Config, fs afero.Fs) *archiver.Archiver {
	client := discord.NewClient(
		cfg.Discord.APIBaseURL,
		cfg.Discord.Token,
		cfg.Discord.UserAgent,
		5*time.Second,
		logger.NewTestLogger(),
	)
	return archiver.NewWithDeps(cfg, client, client, fs)
}

func TestEndToEndBackup(t *testing.T) {
	server := NewMockDiscordServer()
	defer server.Close()

	imageURL := server.AddImage("a.png", []byte("png-bytes"))
	server.AddMessage("42", mockMessage{
		ID: "100", Timestamp: "t1", Content: "hello",
		Author: mockAuthor{Username: "alice"},
	})
	server.AddMessage("42", mockMessage{
		ID: "101", Timestamp: "t2", Content: "look",
		Author:      mockAuthor{Username: "bob"},
		Attachments: []mockAttachment{{URL: imageURL, Filename: "a.png"}},
	})
	server.AddMessage("42", mockMessage{
		ID: "102", Timestamp: "t3", Content: "bye",
		Author: mockAuthor{Username: "alice"},
	})

	cfg := testConfig(server.URL())
	cfg.Channels = []config.ChannelTarget{{Name: "general", ID: "42"}}

	fs := afero.NewMemMapFs()
	summary, err := newArchiver(cfg, fs).Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	require.NoError(t, summary.Results[0].Err)
	assert.Equal(t, 3, summary.TotalFetched)
	assert.Equal(t, 1, summary.TotalImages)

	data, err := afero.ReadFile(fs, "backups/channels/general/general_messages.txt")
	require.NoError(t, err)
	assert.Equal(t,
		"[t1] alice: hello\n"+
			"[t2] bob: look\n"+
			"[t2] bob shared an image: images/t2_bob.png\n"+
			"[t3] alice: bye\n",
		string(data))

	imageData, err := afero.ReadFile(fs, "backups/channels/general/images/t2_bob.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), imageData)

	checkpoint, err := afero.ReadFile(fs, "backups/channels/general/last_message_general.txt")
	require.NoError(t, err)
	assert.Equal(t, "102", string(checkpoint))
}

func TestEndToEndIncrementalResume(t *testing.T) {
	server := NewMockDiscordServer()
	defer server.Close()

	server.AddMessage("42", mockMessage{
		ID: "100", Timestamp: "t1", Content: "first",
		Author: mockAuthor{Username: "alice"},
	})

	cfg := testConfig(server.URL())
	cfg.Channels = []config.ChannelTarget{{Name: "general", ID: "42"}}

	fs := afero.NewMemMapFs()
	_, err := newArchiver(cfg, fs).Run(context.Background(), nil)
	require.NoError(t, err)

	// New messages arrive between runs.
	server.AddMessage("42", mockMessage{
		ID: "101", Timestamp: "t2", Content: "second",
		Author: mockAuthor{Username: "bob"},
	})

	summary, err := newArchiver(cfg, fs).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalFetched, "only the new message is fetched")

	data, err := afero.ReadFile(fs, "backups/channels/general/general_messages.txt")
	require.NoError(t, err)
	assert.Equal(t, "[t1] alice: first\n[t2] bob: second\n", string(data))
}

func TestEndToEndChannelIsolation(t *testing.T) {
	server := NewMockDiscordServer()
	defer server.Close()

	server.AddMessage("42", mockMessage{
		ID: "100", Timestamp: "t1", Content: "ok",
		Author: mockAuthor{Username: "alice"},
	})
	server.FailChannel("43", http.StatusForbidden)
	server.AddMessage("77", mockMessage{
		ID: "300", Timestamp: "t2", Content: "topic",
		Author: mockAuthor{Username: "carol"},
	})

	cfg := testConfig(server.URL())
	cfg.Channels = []config.ChannelTarget{
		{Name: "general", ID: "42"},
		{Name: "private", ID: "43"},
	}
	cfg.Topics = []config.ChannelTarget{{Name: "planning", ID: "77"}}

	fs := afero.NewMemMapFs()
	summary, err := newArchiver(cfg, fs).Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, 1, summary.Failed)
	assert.NoError(t, summary.Results[0].Err)
	assert.Error(t, summary.Results[1].Err)
	assert.NoError(t, summary.Results[2].Err)

	// The topic after the failed channel is fully archived.
	data, err := afero.ReadFile(fs, "backups/topics/planning/planning_messages.txt")
	require.NoError(t, err)
	assert.Equal(t, "[t2] carol: topic\n", string(data))
}
