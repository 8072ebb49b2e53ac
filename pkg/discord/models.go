package discord

// Message represents a single message returned by the messages endpoint.
// Only the fields consumed by the archiver are decoded.
type Message struct {
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Author      Author       `json:"author"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	Embeds      []Embed      `json:"embeds"`
}

// Author represents the message author
type Author struct {
	Username string `json:"username"`
}

// Attachment represents an uploaded file attached to a message
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Embed represents an embed block; only embedded images are consumed
type Embed struct {
	Image *EmbedImage `json:"image"`
}

// EmbedImage represents an image inside an embed
type EmbedImage struct {
	URL string `json:"url"`
}

// AuthorName returns the author's username, substituting a sentinel when the
// field is missing so a malformed entry never fails the page.
func (m *Message) AuthorName() string {
	if m.Author.Username == "" {
		return "Unknown user"
	}
	return m.Author.Username
}

// ImageURLs returns the message's image URLs in presentation order:
// attachments first, then embedded images.
func (m *Message) ImageURLs() []string {
	var urls []string
	for _, a := range m.Attachments {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	for _, e := range m.Embeds {
		if e.Image != nil && e.Image.URL != "" {
			urls = append(urls, e.Image.URL)
		}
	}
	return urls
}
