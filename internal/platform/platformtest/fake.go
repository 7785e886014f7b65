// Package platformtest provides an in-memory pointer for tests that must not
// touch the real display.
package platformtest

import (
	"sync"

	"github.com/stigoleg/wiggler/internal/platform"
)

// Mover records placements instead of moving the real cursor.
type Mover struct {
	mu     sync.Mutex
	pos    platform.Position
	moves  int
	width  int
	height int
	err    error
}

// NewMover returns a Mover on a width x height screen with the cursor centred.
func NewMover(width, height int) *Mover {
	return &Mover{
		pos:    platform.Position{X: width / 2, Y: height / 2},
		width:  width,
		height: height,
	}
}

func (m *Mover) Location() platform.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func (m *Mover) ScreenSize() (int, int) {
	return m.width, m.height
}

func (m *Mover) Move(p platform.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.pos = platform.Clamp(p, m.width, m.height)
	m.moves++
	return nil
}

// Moves returns how many placements succeeded.
func (m *Mover) Moves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves
}

// FailWith makes every later Move return err; nil restores normal behaviour.
func (m *Mover) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
