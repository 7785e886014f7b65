// Package ui provides the terminal settings panel for the wiggler.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors defines the color scheme used throughout the application
type Colors struct {
	Subtle    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Special   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
}

var defaultColors = Colors{
	Subtle:    lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"},
	Highlight: lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"},
	Special:   lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"},
	Error:     lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF4040"},
}

// Style represents a collection of styles used in the application
type Style struct {
	Title          lipgloss.Style
	Text           lipgloss.Style
	ActiveStatus   lipgloss.Style
	InactiveStatus lipgloss.Style
	DisabledItem   lipgloss.Style
	SelectedItem   lipgloss.Style
	Button         lipgloss.Style
	FocusedButton  lipgloss.Style
	Panel          lipgloss.Style
	Help           lipgloss.Style
	Notice         lipgloss.Style
	Error          lipgloss.Style
	Countdown      lipgloss.Style
}

// DefaultStyle returns the default style configuration
func DefaultStyle() Style {
	base := lipgloss.NewStyle().
		PaddingLeft(1).
		PaddingRight(1)

	button := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(defaultColors.Subtle)

	return Style{
		Title: base.
			Bold(true).
			Foreground(defaultColors.Highlight),

		Text: base,

		ActiveStatus: base.
			Foreground(defaultColors.Special),

		InactiveStatus: base.
			Foreground(defaultColors.Subtle),

		DisabledItem: base.
			Foreground(defaultColors.Subtle),

		SelectedItem: base.
			Bold(true).
			Foreground(defaultColors.Highlight),

		Button: button,

		FocusedButton: button.
			Bold(true).
			BorderForeground(defaultColors.Highlight).
			Foreground(defaultColors.Highlight),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(defaultColors.Subtle).
			Padding(0, 1),

		Help: base.
			Foreground(defaultColors.Subtle),

		Notice: base.
			Bold(true).
			Foreground(defaultColors.Special),

		Error: base.
			Foreground(defaultColors.Error),

		Countdown: base.
			Foreground(defaultColors.Highlight).
			Bold(true),
	}
}

// Current holds the current style configuration
var Current = DefaultStyle()
