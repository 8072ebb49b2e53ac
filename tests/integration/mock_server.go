package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
)

// mockMessage mirrors the wire shape of the messages endpoint
type mockMessage struct {
	ID          string           `json:"id"`
	Timestamp   string           `json:"timestamp"`
	Content     string           `json:"content"`
	Author      mockAuthor       `json:"author"`
	Attachments []mockAttachment `json:"attachments"`
}

type mockAuthor struct {
	Username string `json:"username"`
}

type mockAttachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// MockDiscordServer simulates the channel messages endpoint and a CDN for
// attachments. Messages are held per channel in ascending ID order, which is
// the order the real API returns when paginating with `after`.
type MockDiscordServer struct {
	server       *httptest.Server
	requestCount int32

	mu       sync.RWMutex
	channels map[string][]mockMessage
	images   map[string][]byte
	failWith map[string]int // channel ID -> status code
}

// NewMockDiscordServer starts the mock server
func NewMockDiscordServer() *MockDiscordServer {
	m := &MockDiscordServer{
		channels: make(map[string][]mockMessage),
		images:   make(map[string][]byte),
		failWith: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/channels/", m.handleMessages)
	mux.HandleFunc("/cdn/", m.handleImage)
	m.server = httptest.NewServer(mux)

	return m
}

// URL returns the base URL to configure clients with
func (m *MockDiscordServer) URL() string {
	return m.server.URL
}

// Close shuts the server down
func (m *MockDiscordServer) Close() {
	m.server.Close()
}

// RequestCount reports how many API requests were served
func (m *MockDiscordServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// AddMessage appends a message to a channel's feed
func (m *MockDiscordServer) AddMessage(channelID string, msg mockMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[channelID] = append(m.channels[channelID], msg)
}

// AddImage registers attachment bytes served under /cdn/<name>
func (m *MockDiscordServer) AddImage(name string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[name] = data
	return m.server.URL + "/cdn/" + name
}

// FailChannel makes a channel's message endpoint return the given status
func (m *MockDiscordServer) FailChannel(channelID string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith[channelID] = status
}

// handleMessages serves GET /channels/{id}/messages?limit=N[&after=id]
func (m *MockDiscordServer) handleMessages(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	var channelID string
	_, err := parsePath(r.URL.Path, &channelID)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if status, ok := m.failWith[channelID]; ok {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"message": "simulated failure"})
		return
	}

	feed, ok := m.channels[channelID]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unknown Channel"})
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	after := r.URL.Query().Get("after")

	var page []mockMessage
	for _, msg := range feed {
		if after != "" && msg.ID <= after {
			continue
		}
		page = append(page, msg)
		if len(page) == limit {
			break
		}
	}
	if page == nil {
		page = []mockMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// handleImage serves registered attachment bytes
func (m *MockDiscordServer) handleImage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[len("/cdn/"):]

	m.mu.RLock()
	data, ok := m.images[name]
	m.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write(data)
}

// parsePath extracts the channel ID from /channels/{id}/messages
func parsePath(path string, channelID *string) (string, error) {
	const prefix = "/channels/"
	rest := path[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			*channelID = rest[:i]
			return rest[i+1:], nil
		}
	}
	*channelID = rest
	return "", nil
}
