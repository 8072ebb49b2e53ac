package viewer

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	accentBlue  = lipgloss.Color("#5865F2")
	softGreen   = lipgloss.Color("#3BA55D")
	softYellow  = lipgloss.Color("#FAA81A")
	softRed     = lipgloss.Color("#ED4245")
	dimGray     = lipgloss.Color("#72767D")
	lightGray   = lipgloss.Color("#B9BBBE")
	nearWhite   = lipgloss.Color("#DCDDDE")

	titleStyle = lipgloss.NewStyle().
			Background(accentBlue).
			Foreground(nearWhite).
			Bold(true).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimGray).
			Padding(0, 1)

	sidebarFocusedStyle = sidebarStyle.
				BorderForeground(accentBlue)

	messagesStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimGray).
			Padding(0, 1)

	messagesFocusedStyle = messagesStyle.
				BorderForeground(accentBlue)

	kindHeaderStyle = lipgloss.NewStyle().
			Foreground(dimGray).
			Bold(true)

	channelStyle = lipgloss.NewStyle().
			Foreground(lightGray).
			PaddingLeft(1)

	channelSelectedStyle = lipgloss.NewStyle().
				Foreground(nearWhite).
				Background(accentBlue).
				Bold(true).
				PaddingLeft(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	authorStyle = lipgloss.NewStyle().
			Foreground(softGreen).
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Foreground(nearWhite)

	imageRefStyle = lipgloss.NewStyle().
			Foreground(softYellow).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(softRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimGray).
			Padding(0, 1)
)
