// Package config holds wiggler's settings and their on-disk persistence.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Bounds for the two user-facing knobs, in seconds.
const (
	MinMoveSeconds = 0.1
	MaxMoveSeconds = 10.0
	MinWaitSeconds = 0.0
	MaxWaitSeconds = 60.0

	DefaultMoveSeconds = 1.0
	DefaultWaitSeconds = 5.0

	DefaultListen = "127.0.0.1:7787"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid wiggle config")

// Mode selects how the cursor is moved each cycle.
type Mode string

const (
	// ModeRoam glides the cursor to a random point on the screen.
	ModeRoam Mode = "roam"
	// ModeJitter traces a small shape around the current position and returns.
	ModeJitter Mode = "jitter"
)

// ParseMode is case-insensitive; the empty string means roam.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRoam:
		return ModeRoam, nil
	case ModeJitter:
		return ModeJitter, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want roam or jitter)", ErrInvalidConfig, s)
	}
}

// Wiggle is the cadence pair the settings panel edits.
type Wiggle struct {
	MoveSeconds float64 `json:"moveSeconds" mapstructure:"move"`
	WaitSeconds float64 `json:"waitSeconds" mapstructure:"wait"`
}

// Validate checks both values against their bounds.
func (w Wiggle) Validate() error {
	if err := checkRange("movement duration", w.MoveSeconds, MinMoveSeconds, MaxMoveSeconds); err != nil {
		return err
	}
	return checkRange("wait interval", w.WaitSeconds, MinWaitSeconds, MaxWaitSeconds)
}

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidConfig, name)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s %gs out of range [%g, %g]", ErrInvalidConfig, name, v, lo, hi)
	}
	return nil
}

// Settings is the full runtime configuration.
type Settings struct {
	Wiggle
	Mode            Mode   `json:"mode"`
	RespectActivity bool   `json:"respectActivity"`
	KeepAwake       bool   `json:"keepAwake"`
	Listen          string `json:"listen"`
	LogLevel        string `json:"logLevel"`
	LogFile         string `json:"logFile"`
}

// Default returns the settings used when nothing else is configured.
func Default() Settings {
	return Settings{
		Wiggle: Wiggle{
			MoveSeconds: DefaultMoveSeconds,
			WaitSeconds: DefaultWaitSeconds,
		},
		Mode:     ModeRoam,
		Listen:   DefaultListen,
		LogLevel: "info",
	}
}

// Validate checks the cadence and the mode.
func (s Settings) Validate() error {
	if err := s.Wiggle.Validate(); err != nil {
		return err
	}
	_, err := ParseMode(string(s.Mode))
	return err
}
