//go:build cgo

package platform

import (
	"github.com/go-vgo/robotgo"
)

// RobotMover injects pointer movement through robotgo.
type RobotMover struct{}

// NewMover returns the robotgo-backed mover for the current OS.
func NewMover() Mover {
	return RobotMover{}
}

func (RobotMover) Location() Position {
	x, y := robotgo.Location()
	return Position{X: x, Y: y}
}

func (RobotMover) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

// Move keeps the target on screen; robotgo itself does not.
func (r RobotMover) Move(p Position) error {
	w, h := r.ScreenSize()
	return place(p, w, h, func(x, y int) { robotgo.Move(x, y) })
}
