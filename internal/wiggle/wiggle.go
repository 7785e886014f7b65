// Package wiggle is the engine behind every control surface: it owns the
// cadence settings and the goroutine that periodically moves the pointer.
package wiggle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/logger"
	"github.com/stigoleg/wiggler/internal/platform"
)

// ErrNotReady is returned by control calls after Shutdown.
var ErrNotReady = errors.New("wiggler is shutting down")

// Store persists cadence changes.
type Store interface {
	SaveWiggle(w config.Wiggle) error
}

// Health reflects whether recent cycles managed to move the pointer.
type Health int

const (
	HealthUnknown Health = iota
	HealthOK
	HealthFailed
)

func (h Health) String() string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the health as its name in JSON.
func (h Health) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Health) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ok":
		*h = HealthOK
	case "failed":
		*h = HealthFailed
	default:
		*h = HealthUnknown
	}
	return nil
}

// Wiggler implements the remote call surface: StartWiggle, StopWiggle,
// IsWiggling, SetConfig, GetMoveSpeed, GetWaitTime, SetWindowSmall and
// SetWindowLarge.
type Wiggler struct {
	// cfgMu guards settings only. The session goroutine reads settings, so
	// it must never be taken while waiting for a session to exit under mu.
	cfgMu    sync.RWMutex
	settings config.Settings

	mu        sync.Mutex
	running   bool
	session   uint64
	cancel    context.CancelFunc
	done      chan struct{}
	timer     *time.Timer
	endTime   time.Time
	inhibited bool

	window atomic.Int32
	ready  atomic.Bool

	// consecutive failed cycles; zero after any success
	failCount atomic.Int64
	cycles    atomic.Int64

	mover     platform.Mover
	inhibitor platform.Inhibitor
	store     Store
	bus       *events.Bus
	log       *zerolog.Logger
	seed      int64

	shutdownOnce sync.Once
}

// Option configures a Wiggler.
type Option func(*Wiggler)

// WithMover sets the pointer backend.
func WithMover(m platform.Mover) Option {
	return func(w *Wiggler) { w.mover = m }
}

// WithBus publishes events to b instead of a private bus.
func WithBus(b *events.Bus) Option {
	return func(w *Wiggler) { w.bus = b }
}

// WithSettings sets the initial settings. Invalid cadence values fall back
// to the defaults.
func WithSettings(s config.Settings) Option {
	return func(w *Wiggler) { w.settings = s }
}

// WithStore persists SetConfig changes.
func WithStore(s Store) Option {
	return func(w *Wiggler) { w.store = s }
}

// WithInhibitor sets the sleep inhibitor used when KeepAwake is on.
func WithInhibitor(i platform.Inhibitor) Option {
	return func(w *Wiggler) { w.inhibitor = i }
}

// WithSeed makes target selection deterministic.
func WithSeed(seed int64) Option {
	return func(w *Wiggler) { w.seed = seed }
}

// WithLogger overrides the component logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(w *Wiggler) { w.log = l }
}

// New creates a ready, idle Wiggler.
func New(opts ...Option) *Wiggler {
	w := &Wiggler{
		settings: config.Default(),
		seed:     time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.mover == nil {
		w.mover = platform.NewMover()
	}
	if w.bus == nil {
		w.bus = events.NewBus()
	}
	if w.log == nil {
		w.log = logger.WithComponent("wiggle")
	}
	if err := w.settings.Validate(); err != nil {
		w.log.Warn().Err(err).Msg("invalid initial settings; using defaults")
		d := config.Default()
		w.settings.Wiggle = d.Wiggle
		w.settings.Mode = d.Mode
	}

	w.ready.Store(true)
	w.bus.Emit(events.Ready, nil)
	w.log.Info().
		Float64("move", w.settings.MoveSeconds).
		Float64("wait", w.settings.WaitSeconds).
		Str("mode", string(w.settings.Mode)).
		Msg("wiggler initialised")
	return w
}

// Events returns the bus push notifications go to.
func (w *Wiggler) Events() *events.Bus {
	return w.bus
}

// IsReady is false once Shutdown has begun.
func (w *Wiggler) IsReady() bool {
	return w.ready.Load()
}

// IsWiggling reports whether a session is active.
func (w *Wiggler) IsWiggling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// StartWiggle starts an indefinite session, restarting any running one.
func (w *Wiggler) StartWiggle() error {
	return w.StartTimed(0)
}

// StartTimed starts a session that stops by itself after d. A non-positive
// d runs until StopWiggle. A running session is cancelled and awaited first.
func (w *Wiggler) StartTimed(d time.Duration) error {
	if !w.IsReady() {
		return ErrNotReady
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Checked again under mu so a start racing Shutdown cannot outlive it.
	if !w.IsReady() {
		return ErrNotReady
	}

	restart := w.running
	if restart {
		w.stopLocked()
	}

	w.session++
	id := w.session

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.endTime = time.Time{}

	if w.Settings().KeepAwake && w.inhibitor != nil {
		if err := w.inhibitor.Acquire(ctx); err != nil {
			w.log.Warn().Err(err).Str("inhibitor", w.inhibitor.Name()).Msg("could not inhibit sleep")
		} else {
			w.inhibited = true
		}
	}

	if d > 0 {
		w.endTime = time.Now().Add(d)
		w.timer = time.AfterFunc(d, func() {
			w.expire(id)
		})
	}

	w.running = true
	metricWiggling.Set(1)
	rnd := rand.New(rand.NewSource(w.seed + int64(id)))
	go w.run(ctx, w.done, rnd)

	w.bus.Emit(events.WiggleStarted, nil)
	if d > 0 {
		w.log.Info().Dur("duration", d).Bool("restart", restart).Msg("wiggle started")
	} else {
		w.log.Info().Bool("restart", restart).Msg("wiggle started")
	}
	return nil
}

// StopWiggle ends the running session and waits for the pointer goroutine
// to exit. Stopping an idle Wiggler is a no-op.
func (w *Wiggler) StopWiggle() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.stopLocked()
	w.bus.Emit(events.WiggleStopped, nil)
	w.log.Info().Msg("wiggle stopped")
	return nil
}

// expire stops session id when its timer fires, unless it was already
// replaced by a restart.
func (w *Wiggler) expire(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running || w.session != id {
		return
	}
	w.stopLocked()
	w.bus.Emit(events.WiggleStopped, nil)
	w.log.Info().Msg("timed wiggle finished")
}

func (w *Wiggler) stopLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.done != nil {
		<-w.done
		w.done = nil
	}
	if w.inhibited {
		if err := w.inhibitor.Release(); err != nil {
			w.log.Warn().Err(err).Msg("failed to release sleep inhibitor")
		}
		w.inhibited = false
	}
	w.endTime = time.Time{}
	w.running = false
	metricWiggling.Set(0)
}

// TimeRemaining returns the time left in a timed session, or zero.
func (w *Wiggler) TimeRemaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running || w.endTime.IsZero() {
		return 0
	}
	return max(time.Until(w.endTime), 0)
}

// Settings returns a copy of the current settings.
func (w *Wiggler) Settings() config.Settings {
	w.cfgMu.RLock()
	defer w.cfgMu.RUnlock()
	return w.settings
}

// GetConfig returns the current cadence.
func (w *Wiggler) GetConfig() config.Wiggle {
	return w.Settings().Wiggle
}

// GetMoveSpeed returns how many seconds each cycle moves for.
func (w *Wiggler) GetMoveSpeed() float64 {
	return w.GetConfig().MoveSeconds
}

// GetWaitTime returns how many seconds pass between cycles.
func (w *Wiggler) GetWaitTime() float64 {
	return w.GetConfig().WaitSeconds
}

// SetConfig validates and stores a new cadence. The running session picks
// it up at its next cycle. When a store is configured the change is
// persisted first; a persistence failure leaves the cadence unchanged.
func (w *Wiggler) SetConfig(move, wait float64) error {
	if !w.IsReady() {
		return ErrNotReady
	}

	next := config.Wiggle{MoveSeconds: move, WaitSeconds: wait}
	if err := next.Validate(); err != nil {
		w.log.Error().Err(err).Msg("rejected wiggle config")
		return err
	}

	if w.store != nil {
		if err := w.store.SaveWiggle(next); err != nil {
			w.log.Error().Err(err).Msg("failed to persist wiggle config")
			return fmt.Errorf("failed to persist config: %w", err)
		}
	}

	w.cfgMu.Lock()
	w.settings.Wiggle = next
	w.cfgMu.Unlock()

	w.log.Info().Float64("move", move).Float64("wait", wait).Msg("wiggle config set")
	w.bus.Emit(events.ConfigSet, events.ConfigPayload{Duration: move, Time: wait})
	return nil
}

// Shutdown stops any session, marks the Wiggler not ready, emits Stopped
// and closes the event bus. Later calls return nil immediately.
func (w *Wiggler) Shutdown(ctx context.Context) error {
	var err error
	w.shutdownOnce.Do(func() {
		w.log.Info().Msg("shutting down wiggler")
		// Stored before StopWiggle takes mu: a start that wins mu later sees it.
		w.ready.Store(false)

		stopped := make(chan struct{})
		go func() {
			_ = w.StopWiggle()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-ctx.Done():
			err = fmt.Errorf("shutdown: %w", ctx.Err())
		}

		w.bus.Emit(events.Stopped, nil)
		w.bus.Close()
	})
	return err
}

// Health reports the outcome of recent cycles.
func (w *Wiggler) Health() Health {
	if w.failCount.Load() > 0 {
		return HealthFailed
	}
	if w.cycles.Load() == 0 {
		return HealthUnknown
	}
	return HealthOK
}

// Cycles returns how many cycles completed successfully since New.
func (w *Wiggler) Cycles() int64 {
	return w.cycles.Load()
}
