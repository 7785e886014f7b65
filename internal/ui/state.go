package ui

// panel is which part of the settings panel has focus.
type panel int

const (
	panelMain panel = iota
	panelOptions
	panelHelp
)

func (p panel) String() string {
	switch p {
	case panelMain:
		return "Main"
	case panelOptions:
		return "Options"
	case panelHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// control is a focusable element of the options sub-view.
type control int

const (
	controlMove control = iota
	controlWait
	controlUpdate
	controlReset
	controlCount
)
