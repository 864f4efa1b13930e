package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAmber   = lipgloss.Color("#E5C07B")
	ColorRose    = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorFg      = lipgloss.Color("#ABB2BF")
	ColorFgMuted = lipgloss.Color("#636B78")
	ColorBorder  = lipgloss.Color("#3F4451")
	ColorDim     = lipgloss.Color("#21252B")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorFg)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Italic(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorAmber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRose)

	ActiveStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)
)
