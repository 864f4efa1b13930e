package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the console.
type KeyMap struct {
	// Warning dialog
	Continue key.Binding
	End      key.Binding

	// Session screen
	Logout key.Binding

	// Login form
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding

	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Continue: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c/enter", "continue"),
		),
		End: key.NewBinding(
			key.WithKeys("e", "esc"),
			key.WithHelp("e/esc", "log out"),
		),
		Logout: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "log out"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  •  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
