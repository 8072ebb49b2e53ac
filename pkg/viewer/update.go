package viewer

import (
	tea "github.com/charmbracelet/bubbletea"
)

const sidebarWidth = 28

// Update handles key and window events
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpWidth := m.width - sidebarWidth - 6
		vpHeight := m.height - 4
		if vpWidth < 20 {
			vpWidth = 20
		}
		if vpHeight < 5 {
			vpHeight = 5
		}

		if !m.ready {
			m.viewport = newViewport(vpWidth, vpHeight)
			m.ready = true
			m.refreshContent()
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}
		return m, nil

	case recordsLoadedMsg:
		m.records = msg.records
		m.loaded = msg.name
		m.err = nil
		if m.ready {
			m.refreshContent()
			m.viewport.GotoBottom()
		}
		return m, nil

	case loadErrMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.focus == focusSidebar {
			m.focus = focusMessages
		} else {
			m.focus = focusSidebar
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				return m, m.loadCmd(m.selected())
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				return m, m.loadCmd(m.selected())
			}
		case "enter":
			return m, m.loadCmd(m.selected())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
