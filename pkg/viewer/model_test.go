package viewer

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcbackup/pkg/archive"
)

func testLayout(t *testing.T) *archive.Layout {
	t.Helper()
	fs := afero.NewMemMapFs()
	layout := archive.NewLayout(fs, "backups")

	general := layout.Channel(archive.KindChannel, "general")
	require.NoError(t, layout.Ensure(general))
	content := archive.FormatTextLine("t1", "alice", "hello") +
		archive.FormatImageLine("t2", "bob", "images/t2_bob.png")
	require.NoError(t, afero.WriteFile(fs, general.LogFile, []byte(content), 0644))

	planning := layout.Channel(archive.KindTopic, "planning")
	require.NoError(t, layout.Ensure(planning))
	require.NoError(t, afero.WriteFile(fs, planning.LogFile, []byte(archive.FormatTextLine("t3", "carol", "plan")), 0644))

	return layout
}

func TestNewModelDiscoversEntries(t *testing.T) {
	model, err := NewModel(testLayout(t))
	require.NoError(t, err)

	require.Len(t, model.entries, 2)
	assert.Equal(t, entry{Name: "general", Kind: archive.KindChannel}, model.entries[0])
	assert.Equal(t, entry{Name: "planning", Kind: archive.KindTopic}, model.entries[1])
}

func TestNewModelEmptyArchive(t *testing.T) {
	layout := archive.NewLayout(afero.NewMemMapFs(), "backups")
	_, err := NewModel(layout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no archived channels")
}

func TestLoadCmdParsesLog(t *testing.T) {
	model, err := NewModel(testLayout(t))
	require.NoError(t, err)

	msg := model.loadCmd(model.entries[0])()
	loaded, ok := msg.(recordsLoadedMsg)
	require.True(t, ok, "expected recordsLoadedMsg, got %T", msg)

	assert.Equal(t, "general", loaded.name)
	require.Len(t, loaded.records, 2)
	assert.Equal(t, archive.RecordText, loaded.records[0].Type)
	assert.Equal(t, archive.RecordImage, loaded.records[1].Type)
}

func TestCursorNavigation(t *testing.T) {
	model, err := NewModel(testLayout(t))
	require.NoError(t, err)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m := updated.(Model)
	assert.Equal(t, 1, m.cursor)
	assert.NotNil(t, cmd, "moving the cursor loads the selected channel")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(Model)
	assert.Equal(t, 1, m.cursor, "cursor stops at the last entry")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = updated.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestQuitKey(t *testing.T) {
	model, err := NewModel(testLayout(t))
	require.NoError(t, err)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderRecord(t *testing.T) {
	text := renderRecord(archive.Record{Type: archive.RecordText, Timestamp: "t1", Author: "alice", Content: "hello"})
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "hello")

	image := renderRecord(archive.Record{Type: archive.RecordImage, Timestamp: "t2", Author: "bob", Content: "images/a.png"})
	assert.Contains(t, image, "shared an image")
	assert.Contains(t, image, "images/a.png")
}
