package wiggle

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/platform"
	"github.com/stigoleg/wiggler/internal/platform/patterns"
	"github.com/stigoleg/wiggler/internal/util"
)

// retryBackoff bounds how fast a session spins when cycles are skipped or
// failing with a zero wait interval.
const retryBackoff = 500 * time.Millisecond

// run is the session goroutine. Each cycle waits, then moves; settings are
// re-read at the top of every cycle.
func (w *Wiggler) run(ctx context.Context, done chan<- struct{}, rnd *rand.Rand) {
	defer close(done)

	gen := patterns.NewGenerator(rnd)
	tracker := patterns.NewActivityTracker(patterns.IdleThreshold)
	start := w.mover.Location()
	tracker.Placed(start.X, start.Y)

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	var backoff time.Duration
	for {
		s := w.Settings()

		timer.Reset(max(util.Seconds(s.WaitSeconds), backoff))
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		backoff = 0

		if s.RespectActivity {
			pos := w.mover.Location()
			now := time.Now()
			tracker.Observe(pos.X, pos.Y, now)
			res := tracker.Check(now)
			if res.LogMessage != "" {
				w.log.Info().Msg(res.LogMessage)
			}
			if !res.ShouldSimulate {
				metricCyclesSkipped.Inc()
				backoff = retryBackoff
				continue
			}
		}

		err := w.cycle(ctx, s, gen, rnd)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		if err != nil {
			n := w.failCount.Add(1)
			metricMoveFailures.Inc()
			w.log.Warn().Err(err).Int64("consecutive", n).Msg("wiggle cycle failed")
			backoff = retryBackoff
			continue
		}

		w.failCount.Store(0)
		w.cycles.Add(1)
		metricCycles.Inc()

		end := w.mover.Location()
		tracker.Placed(end.X, end.Y)
	}
}

// cycle performs one movement lasting about s.MoveSeconds.
func (w *Wiggler) cycle(ctx context.Context, s config.Settings, gen *patterns.Generator, rnd *rand.Rand) error {
	d := util.Seconds(s.MoveSeconds)
	from := w.mover.Location()

	switch s.Mode {
	case config.ModeJitter:
		return platform.Trace(ctx, w.mover, from, gen.Plan(d))
	default:
		width, height := w.mover.ScreenSize()
		to := randomTarget(rnd, width, height)
		w.log.Debug().Int("x", to.X).Int("y", to.Y).Msg("roaming")
		return platform.Glide(ctx, w.mover, from, to, d)
	}
}

func randomTarget(rnd *rand.Rand, width, height int) platform.Position {
	if width <= 0 || height <= 0 {
		return platform.Position{}
	}
	return platform.Position{X: rnd.Intn(width), Y: rnd.Intn(height)}
}
