//go:build !cgo

package platform

// Without cgo there is no input injection backend. Every move fails, so the
// engine reports HealthFailed instead of silently doing nothing.

type nullMover struct{}

// NewMover returns a mover that cannot move anything.
func NewMover() Mover {
	return nullMover{}
}

func (nullMover) Location() Position { return Position{} }

func (nullMover) ScreenSize() (int, int) { return 0, 0 }

func (nullMover) Move(Position) error { return ErrNoDisplay }
