package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"dcbackup/pkg/archive"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	return vp
}

// refreshContent re-renders the loaded records into the viewport
func (m *Model) refreshContent() {
	var b strings.Builder
	for _, rec := range m.records {
		b.WriteString(renderRecord(rec))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

// renderRecord formats one log record for display
func renderRecord(rec archive.Record) string {
	ts := timestampStyle.Render("[" + rec.Timestamp + "]")
	author := authorStyle.Render(rec.Author)

	if rec.Type == archive.RecordImage {
		return fmt.Sprintf("%s %s %s", ts, author, imageRefStyle.Render("shared an image: "+rec.Content))
	}
	return fmt.Sprintf("%s %s: %s", ts, author, contentStyle.Render(rec.Content))
}

// View renders the full browser layout
func (m Model) View() string {
	if !m.ready {
		return "loading archive..."
	}

	sidebar := m.renderSidebar()
	messages := m.renderMessages()

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, messages)
	help := helpStyle.Render("tab: switch pane • j/k: navigate • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("dcbackup archive"),
		body,
		help,
	)
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	var lastKind archive.Kind
	for i, e := range m.entries {
		if e.Kind != lastKind {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(kindHeaderStyle.Render(strings.ToUpper(string(e.Kind))))
			b.WriteString("\n")
			lastKind = e.Kind
		}

		style := channelStyle
		if i == m.cursor {
			style = channelSelectedStyle
		}
		b.WriteString(style.Render("# " + e.Name))
		b.WriteString("\n")
	}

	style := sidebarStyle
	if m.focus == focusSidebar {
		style = sidebarFocusedStyle
	}
	return style.Width(sidebarWidth).Height(m.height - 4).Render(b.String())
}

func (m Model) renderMessages() string {
	style := messagesStyle
	if m.focus == focusMessages {
		style = messagesFocusedStyle
	}

	var content string
	switch {
	case m.err != nil:
		content = errorStyle.Render("failed to read log: " + m.err.Error())
	case m.loaded == "":
		content = helpStyle.Render("select a channel")
	case len(m.records) == 0:
		content = helpStyle.Render("no messages archived for #" + m.loaded)
	default:
		content = m.viewport.View()
	}

	return style.Render(content)
}
