package viewer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dcbackup/pkg/archive"
)

// focusArea identifies which pane receives key input
type focusArea int

const (
	focusSidebar focusArea = iota
	focusMessages
)

// entry is one archived channel or topic in the sidebar
type entry struct {
	Name string
	Kind archive.Kind
}

// Model is the bubbletea model for the archive browser
type Model struct {
	layout  *archive.Layout
	entries []entry
	cursor  int
	focus   focusArea

	viewport viewport.Model
	records  []archive.Record
	loaded   string

	width  int
	height int
	ready  bool
	err    error
}

// NewModel creates a browser model over an archive layout. Entries are
// discovered up front so an empty archive can be reported immediately.
func NewModel(layout *archive.Layout) (Model, error) {
	var entries []entry

	for _, kind := range []archive.Kind{archive.KindChannel, archive.KindTopic} {
		names, err := layout.List(kind)
		if err != nil {
			return Model{}, fmt.Errorf("failed to list %s: %w", kind, err)
		}
		for _, name := range names {
			entries = append(entries, entry{Name: name, Kind: kind})
		}
	}

	if len(entries) == 0 {
		return Model{}, fmt.Errorf("no archived channels under %s", layout.BaseDir())
	}

	return Model{
		layout:  layout,
		entries: entries,
	}, nil
}

// Init loads the first channel
func (m Model) Init() tea.Cmd {
	return m.loadCmd(m.entries[0])
}

// recordsLoadedMsg carries the parsed log of the selected channel
type recordsLoadedMsg struct {
	name    string
	records []archive.Record
}

type loadErrMsg struct {
	err error
}

func (m Model) loadCmd(e entry) tea.Cmd {
	return func() tea.Msg {
		paths := m.layout.Channel(e.Kind, e.Name)
		records, err := archive.ReadLog(m.layout.Fs(), paths.LogFile)
		if err != nil {
			return loadErrMsg{err: err}
		}
		return recordsLoadedMsg{name: e.Name, records: records}
	}
}

// selected returns the entry under the cursor
func (m Model) selected() entry {
	return m.entries[m.cursor]
}
