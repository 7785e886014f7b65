package wiggle

import "github.com/stigoleg/wiggler/internal/events"

// Settings panel dimensions. Small shows the main view only, large adds the
// options sub-view.
const (
	WindowWidth       = 600
	WindowSmallHeight = 300
	WindowLargeHeight = 600
)

// Window is the settings panel layout.
type Window struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Large  bool `json:"large"`
}

const (
	windowSmall int32 = iota
	windowLarge
)

// Window returns the current layout.
func (w *Wiggler) Window() Window {
	if w.window.Load() == windowLarge {
		return Window{Width: WindowWidth, Height: WindowLargeHeight, Large: true}
	}
	return Window{Width: WindowWidth, Height: WindowSmallHeight}
}

// SetWindowSmall collapses the panel to the main view.
func (w *Wiggler) SetWindowSmall() {
	w.setWindow(windowSmall)
}

// SetWindowLarge expands the panel to show the options sub-view.
func (w *Wiggler) SetWindowLarge() {
	w.setWindow(windowLarge)
}

func (w *Wiggler) setWindow(v int32) {
	w.window.Store(v)
	win := w.Window()
	w.bus.Emit(events.WindowResized, events.WindowPayload{Width: win.Width, Height: win.Height})
}
