package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines key bindings for the settings panel.
type KeyMap struct {
	// Common
	Quit       key.Binding
	ToggleHelp key.Binding

	// Main
	Toggle  key.Binding
	Options key.Binding

	// Options
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Activate key.Binding
	Back     key.Binding
}

// DefaultKeys returns the default key bindings for the application.
func DefaultKeys() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "toggle help"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "s"),
			key.WithHelp("space", "start/stop"),
		),
		Options: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "options"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k", "shift+tab"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "tab"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "less"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "more"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// NewHelpModel returns a configured help model.
func NewHelpModel() help.Model {
	h := help.New()
	h.ShortSeparator = " • "
	return h
}

// panelKeyMap adapts bindings to the focused panel for contextual help.
type panelKeyMap struct {
	keys  KeyMap
	panel panel
}

// ForPanel returns a contextual key map implementing help.KeyMap.
func (k KeyMap) ForPanel(p panel) help.KeyMap {
	return panelKeyMap{keys: k, panel: p}
}

// ShortHelp implements help.KeyMap.
func (p panelKeyMap) ShortHelp() []key.Binding {
	switch p.panel {
	case panelMain:
		return []key.Binding{p.keys.Toggle, p.keys.Options, p.keys.ToggleHelp, p.keys.Quit}
	case panelOptions:
		return []key.Binding{p.keys.Up, p.keys.Down, p.keys.Left, p.keys.Right, p.keys.Activate, p.keys.Back}
	default:
		return []key.Binding{p.keys.ToggleHelp, p.keys.Quit}
	}
}

// FullHelp implements help.KeyMap.
func (p panelKeyMap) FullHelp() [][]key.Binding {
	switch p.panel {
	case panelMain:
		return [][]key.Binding{{p.keys.Toggle, p.keys.Options}, {p.keys.ToggleHelp, p.keys.Quit}}
	case panelOptions:
		return [][]key.Binding{
			{p.keys.Up, p.keys.Down, p.keys.Left, p.keys.Right},
			{p.keys.Activate, p.keys.Toggle, p.keys.Back, p.keys.Quit},
		}
	default:
		return [][]key.Binding{{p.keys.ToggleHelp, p.keys.Quit}}
	}
}
