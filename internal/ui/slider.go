package ui

import (
	"fmt"
	"math"
)

// slider is a bounded numeric input stepped with the arrow keys.
type slider struct {
	label    string
	min, max float64
	step     float64
	value    float64
}

func (s *slider) set(v float64) {
	// Snap to the step grid so repeated float additions do not drift.
	v = math.Round(v/s.step) * s.step
	s.value = math.Max(s.min, math.Min(s.max, v))
}

func (s *slider) increment() { s.set(s.value + s.step) }

func (s *slider) decrement() { s.set(s.value - s.step) }

// fraction is the slider position in [0, 1].
func (s slider) fraction() float64 {
	if s.max <= s.min {
		return 0
	}
	return (s.value - s.min) / (s.max - s.min)
}

func (s slider) String() string {
	if s.step < 1 {
		return fmt.Sprintf("%.1fs", s.value)
	}
	return fmt.Sprintf("%.0fs", s.value)
}
