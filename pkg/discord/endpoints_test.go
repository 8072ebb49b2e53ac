package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessagesURL(t *testing.T) {
	t.Run("first page has no after", func(t *testing.T) {
		url := MessagesURL(DefaultBaseURL, "42", 100, "")
		assert.Equal(t, "https://discord.com/api/v9/channels/42/messages?limit=100", url)
	})

	t.Run("subsequent pages carry the cursor", func(t *testing.T) {
		url := MessagesURL(DefaultBaseURL, "42", 100, "12345")
		assert.Equal(t, "https://discord.com/api/v9/channels/42/messages?after=12345&limit=100", url)
	})

	t.Run("invalid limits fall back to default", func(t *testing.T) {
		assert.Contains(t, MessagesURL(DefaultBaseURL, "42", 0, ""), "limit=100")
		assert.Contains(t, MessagesURL(DefaultBaseURL, "42", -5, ""), "limit=100")
		assert.Contains(t, MessagesURL(DefaultBaseURL, "42", 500, ""), "limit=100")
	})

	t.Run("custom base URL", func(t *testing.T) {
		url := MessagesURL("http://localhost:8080/api", "42", 50, "")
		assert.Equal(t, "http://localhost:8080/api/channels/42/messages?limit=50", url)
	})
}
