package config

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/stigoleg/wiggler/internal/util"
)

const (
	flagMove            = "move"
	flagWait            = "wait"
	flagMode            = "mode"
	flagRespectActivity = "respect-activity"
	flagKeepAwake       = "keep-awake"
	flagListen          = "listen"
	flagLogLevel        = "log-level"
	flagLogFile         = "log-file"
)

// RegisterFlags adds the engine flags to fs. Defaults are left to the
// manager so that an unset flag never shadows the config file.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Float64(flagMove, d.MoveSeconds, "seconds the cursor moves for each cycle (0.1-10)")
	fs.Float64(flagWait, d.WaitSeconds, "seconds to wait between cycles (0-60)")
	fs.String(flagMode, string(d.Mode), "movement mode: roam or jitter")
	fs.Bool(flagRespectActivity, d.RespectActivity, "skip a cycle when the user moved the cursor")
	fs.Bool(flagKeepAwake, d.KeepAwake, "also inhibit display sleep while wiggling")
	fs.String(flagListen, "", "address for the control API (empty disables it in the TUI)")
	fs.String(flagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(flagLogFile, d.LogFile, "log file path")
}

// Session describes how long a wiggle session should run.
type Session struct {
	Duration string
	Until    string
}

// RegisterSessionFlags adds --duration/-d and --until/-u.
func RegisterSessionFlags(fs *pflag.FlagSet, s *Session) {
	fs.StringVarP(&s.Duration, "duration", "d", "", `wiggle for this long, then stop (e.g. "150" minutes or "2h30m")`)
	fs.StringVarP(&s.Until, "until", "u", "", `wiggle until this clock time (e.g. "22:30" or "10:30PM")`)
}

// ErrConflictingSession is returned when both --duration and --until are set.
var ErrConflictingSession = errors.New("--duration and --until cannot be used together")

// Resolve converts the session flags into a length. Zero means indefinite.
func (s Session) Resolve(now time.Time) (time.Duration, error) {
	switch {
	case s.Duration != "" && s.Until != "":
		return 0, ErrConflictingSession
	case s.Duration != "":
		return util.ParseDuration(s.Duration)
	case s.Until != "":
		return util.UntilClock(s.Until, now)
	default:
		return 0, nil
	}
}
