package discord

import (
	"fmt"
	"net/url"
)

const (
	// DefaultBaseURL is the base URL for the Discord REST API
	DefaultBaseURL = "https://discord.com/api/v9"

	// DefaultPageLimit is the default number of messages fetched per page
	DefaultPageLimit = 100

	// MaxPageLimit is the largest page size the messages endpoint accepts
	MaxPageLimit = 100
)

// MessagesURL constructs the URL for fetching a page of channel messages.
// A non-empty after value asks only for messages newer than that id; with
// after set the API returns the page oldest first, which is the ordering
// contract the pagination engine depends on for its forward cursor.
func MessagesURL(baseURL, channelID string, limit int, after string) string {
	if limit <= 0 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if after != "" {
		params.Set("after", after)
	}

	return fmt.Sprintf("%s/channels/%s/messages?%s", baseURL, channelID, params.Encode())
}
