package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcbackup/pkg/errors"
	"dcbackup/pkg/logger"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-token", "test-agent", 5*time.Second, logger.NewTestLogger())
	return server, client
}

func TestFetchMessages(t *testing.T) {
	messages := []Message{
		{ID: "100", Timestamp: "2024-01-01T00:00:00+00:00", Author: Author{Username: "alice"}, Content: "hi"},
		{ID: "101", Timestamp: "2024-01-01T00:01:00+00:00", Author: Author{Username: "bob"}, Content: "hey"},
	}

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/42/messages", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "99", r.URL.Query().Get("after"))
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		json.NewEncoder(w).Encode(messages)
	})

	got, err := client.FetchMessages(context.Background(), "42", 100, "99")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "100", got[0].ID)
	assert.Equal(t, "101", got[1].ID)
}

func TestFetchMessagesEmptyPage(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	got, err := client.FetchMessages(context.Background(), "42", 100, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchMessagesErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType errors.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrorTypeAuth},
		{"forbidden", http.StatusForbidden, errors.ErrorTypeAuth},
		{"not found", http.StatusNotFound, errors.ErrorTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{"server error", http.StatusInternalServerError, errors.ErrorTypeServerError},
		{"bad gateway", http.StatusBadGateway, errors.ErrorTypeServerError},
		{"teapot", http.StatusTeapot, errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message": "nope"}`))
			})

			_, err := client.FetchMessages(context.Background(), "42", 100, "")
			require.Error(t, err)

			apiErr, ok := err.(*errors.Error)
			require.True(t, ok, "expected *errors.Error, got %T", err)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Code)
			assert.Contains(t, apiErr.Body, "nope")
		})
	}
}

func TestFetchMessagesMalformedJSON(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.FetchMessages(context.Background(), "42", 100, "")
	require.Error(t, err)

	apiErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeParsing, apiErr.Type)
}

func TestDownload(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	data, err := client.Download(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDownloadFailure(t *testing.T) {
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Download(context.Background(), server.URL+"/missing.png")
	require.Error(t, err)

	apiErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNotFound, apiErr.Type)
}

func TestNetworkErrorType(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", "", 500*time.Millisecond, logger.NewTestLogger())

	_, err := client.FetchMessages(context.Background(), "42", 100, "")
	require.Error(t, err)

	apiErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNetwork, apiErr.Type)
}
