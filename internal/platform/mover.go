// Package platform moves the pointer and keeps the display awake.
package platform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stigoleg/wiggler/internal/platform/patterns"
)

// glideStep is the interval between intermediate cursor placements, roughly
// one frame at 60 Hz.
const glideStep = 16 * time.Millisecond

// Position is an absolute screen coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ErrNoDisplay is returned by Move when there is no screen to move on.
var ErrNoDisplay = errors.New("no display available for pointer movement")

// Mover places the pointer. Implementations must be safe to call from a
// single goroutine at a time; the engine never moves concurrently.
type Mover interface {
	Location() Position
	ScreenSize() (width, height int)
	Move(p Position) error
}

// Glide moves the cursor from one position to another over d with an
// ease-in-out curve. It returns ctx.Err() if cancelled part way.
func Glide(ctx context.Context, m Mover, from, to Position, d time.Duration) error {
	steps := int(d / glideStep)
	if steps < 1 {
		steps = 1
	}
	interval := d / time.Duration(steps)

	ticker := time.NewTicker(max(interval, time.Millisecond))
	defer ticker.Stop()

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		e := easeInOut(float64(i) / float64(steps))
		p := Position{
			X: from.X + int(math.Round(float64(to.X-from.X)*e)),
			Y: from.Y + int(math.Round(float64(to.Y-from.Y)*e)),
		}
		if err := m.Move(p); err != nil {
			return fmt.Errorf("glide step %d/%d: %w", i, steps, err)
		}
	}
	return nil
}

func easeInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Trace plays a jitter plan relative to origin. The last step of a plan
// returns to the origin.
func Trace(ctx context.Context, m Mover, origin Position, steps []patterns.Step) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for i, s := range steps {
		p := Position{
			X: origin.X + int(math.Round(s.Offset.X)),
			Y: origin.Y + int(math.Round(s.Offset.Y)),
		}
		if err := m.Move(p); err != nil {
			return fmt.Errorf("trace step %d/%d: %w", i+1, len(steps), err)
		}

		if s.Delay <= 0 {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		timer.Reset(s.Delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// Clamp keeps p inside a width x height screen.
func Clamp(p Position, width, height int) Position {
	if width > 0 {
		p.X = min(max(p.X, 0), width-1)
	}
	if height > 0 {
		p.Y = min(max(p.Y, 0), height-1)
	}
	return p
}

// place clamps p to a width x height screen and hands it to move. A screen
// with no area means nothing can be moved.
func place(p Position, width, height int, move func(x, y int)) error {
	if width <= 0 || height <= 0 {
		return ErrNoDisplay
	}
	p = Clamp(p, width, height)
	move(p.X, p.Y)
	return nil
}
