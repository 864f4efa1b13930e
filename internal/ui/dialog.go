package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	domain "backoffice/console/internal/domain/session"
)

// WarningDialog renders the session expiry warning. It owns no timers:
// everything it shows comes from the last View it was given.
type WarningDialog struct {
	view domain.View
	bar  progress.Model
	keys KeyMap

	width  int
	height int
}

// NewWarningDialog creates a hidden dialog.
func NewWarningDialog(keys KeyMap) WarningDialog {
	return WarningDialog{
		bar: progress.New(
			progress.WithGradient(string(ColorRose), string(ColorAmber)),
			progress.WithoutPercentage(),
			progress.WithWidth(40),
		),
		keys: keys,
	}
}

// SetSize sets the area the dialog is centred in.
func (d *WarningDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// SetView replaces the presentation state.
func (d *WarningDialog) SetView(v domain.View) {
	d.view = v
}

// Visible reports whether the warning is showing.
func (d WarningDialog) Visible() bool {
	return d.view.Phase == domain.PhaseWarning
}

// Fraction is the share of the warning window still left, in [0, 1].
func (d WarningDialog) Fraction() float64 {
	if d.view.MaxCountdownSeconds <= 0 {
		return 0
	}
	f := float64(d.view.CountdownSeconds) / float64(d.view.MaxCountdownSeconds)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// View renders the dialog, or an empty string while hidden.
func (d WarningDialog) View() string {
	if !d.Visible() {
		return ""
	}

	width := d.width
	if width == 0 {
		width = 60
	}
	height := d.height
	if height == 0 {
		height = 24
	}
	maxWidth := min(max(width-8, 40), 60)

	title := lipgloss.NewStyle().Foreground(ColorAmber).Bold(true).
		Render("⚠ Session Expiring")
	countdown := lipgloss.NewStyle().Foreground(ColorAmber).Bold(true).
		Render(FormatCountdown(d.view.CountdownSeconds))
	msg := lipgloss.NewStyle().Foreground(ColorFg).Width(maxWidth - 8).Align(lipgloss.Center).
		Render("Your session will end in " + countdown)

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		msg,
		"",
		d.bar.ViewAs(d.Fraction()),
		"",
		HelpStyle.Render(helpLine(d.keys.Continue, d.keys.End)),
	)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(ColorAmber).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(ColorDim))
}

// FormatCountdown renders whole seconds as M:SS.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
