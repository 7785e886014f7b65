package wiggle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/logger"
	"github.com/stigoleg/wiggler/internal/platform"
)

type fakeMover struct {
	mu    sync.Mutex
	pos   platform.Position
	moves int
	fail  bool
	// drift makes every Location call report a new position, as if the
	// user kept moving the mouse.
	drift bool
}

func (f *fakeMover) Location() platform.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drift {
		f.pos.X++
	}
	return f.pos
}

func (f *fakeMover) ScreenSize() (int, int) { return 800, 600 }

func (f *fakeMover) Move(p platform.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("no display")
	}
	f.pos = p
	f.moves++
	return nil
}

func (f *fakeMover) Moves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moves
}

type fakeStore struct {
	saved []config.Wiggle
	err   error
}

func (s *fakeStore) SaveWiggle(w config.Wiggle) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, w)
	return nil
}

func fastSettings() config.Settings {
	s := config.Default()
	s.MoveSeconds = 0.1
	s.WaitSeconds = 0
	return s
}

func newTestWiggler(t *testing.T, m *fakeMover, opts ...Option) *Wiggler {
	t.Helper()
	all := append([]Option{
		WithMover(m),
		WithSettings(fastSettings()),
		WithLogger(logger.Nop()),
		WithSeed(1),
	}, opts...)
	w := New(all...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = w.Shutdown(ctx)
	})
	return w
}

func nextEvent(t *testing.T, ch <-chan events.Event, want events.Name) events.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			require.True(t, ok, "event channel closed waiting for %s", want)
			if e.Name == want {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	w := New(WithMover(&fakeMover{}), WithLogger(logger.Nop()))
	defer w.Shutdown(context.Background())

	assert.True(t, w.IsReady())
	assert.False(t, w.IsWiggling())
	assert.Equal(t, config.DefaultMoveSeconds, w.GetMoveSpeed())
	assert.Equal(t, config.DefaultWaitSeconds, w.GetWaitTime())
	assert.Equal(t, HealthUnknown, w.Health())
	assert.False(t, w.Window().Large)
}

func TestNewFallsBackOnInvalidSettings(t *testing.T) {
	bad := config.Default()
	bad.MoveSeconds = 99
	w := New(WithMover(&fakeMover{}), WithSettings(bad), WithLogger(logger.Nop()))
	defer w.Shutdown(context.Background())

	assert.Equal(t, config.DefaultMoveSeconds, w.GetMoveSpeed())
}

func TestStartStop(t *testing.T) {
	m := &fakeMover{}
	w := newTestWiggler(t, m)
	ch, unsub := w.Events().Subscribe()
	defer unsub()

	require.NoError(t, w.StartWiggle())
	assert.True(t, w.IsWiggling())
	nextEvent(t, ch, events.WiggleStarted)

	require.Eventually(t, func() bool { return m.Moves() > 0 }, 2*time.Second, 10*time.Millisecond,
		"pointer should move while wiggling")

	require.NoError(t, w.StopWiggle())
	assert.False(t, w.IsWiggling())
	nextEvent(t, ch, events.WiggleStopped)

	moves := m.Moves()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, moves, m.Moves(), "pointer must not move after stop returns")
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	w := newTestWiggler(t, &fakeMover{})
	ch, unsub := w.Events().Subscribe()
	defer unsub()

	require.NoError(t, w.StopWiggle())

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartWhileRunningRestarts(t *testing.T) {
	w := newTestWiggler(t, &fakeMover{})
	ch, unsub := w.Events().Subscribe()
	defer unsub()

	require.NoError(t, w.StartWiggle())
	require.NoError(t, w.StartWiggle())
	assert.True(t, w.IsWiggling())

	nextEvent(t, ch, events.WiggleStarted)
	e := <-ch
	assert.Equal(t, events.WiggleStarted, e.Name, "restart emits a second start, not a stop")
}

func TestStartTimedStopsItself(t *testing.T) {
	w := newTestWiggler(t, &fakeMover{})
	ch, unsub := w.Events().Subscribe()
	defer unsub()

	require.NoError(t, w.StartTimed(150*time.Millisecond))
	assert.Greater(t, w.TimeRemaining(), time.Duration(0))

	nextEvent(t, ch, events.WiggleStopped)
	assert.False(t, w.IsWiggling())
	assert.Equal(t, time.Duration(0), w.TimeRemaining())
}

func TestRestartCancelsOldTimer(t *testing.T) {
	w := newTestWiggler(t, &fakeMover{})

	require.NoError(t, w.StartTimed(100*time.Millisecond))
	require.NoError(t, w.StartWiggle())

	time.Sleep(200 * time.Millisecond)
	assert.True(t, w.IsWiggling(), "old timer must not stop the new session")
	assert.Equal(t, time.Duration(0), w.TimeRemaining())
}

func TestSetConfig(t *testing.T) {
	store := &fakeStore{}
	w := newTestWiggler(t, &fakeMover{}, WithStore(store))
	ch, unsub := w.Events().Subscribe()
	defer unsub()

	require.NoError(t, w.SetConfig(2.5, 30))
	assert.Equal(t, 2.5, w.GetMoveSpeed())
	assert.Equal(t, 30.0, w.GetWaitTime())
	assert.Equal(t, []config.Wiggle{{MoveSeconds: 2.5, WaitSeconds: 30}}, store.saved)

	e := nextEvent(t, ch, events.ConfigSet)
	assert.Equal(t, events.ConfigPayload{Duration: 2.5, Time: 30}, e.Data)
}

func TestSetConfigRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name       string
		move, wait float64
	}{
		{"move below minimum", 0.05, 5},
		{"move above maximum", 11, 5},
		{"negative wait", 1, -0.5},
		{"wait above maximum", 1, 61},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWiggler(t, &fakeMover{})
			before := w.GetConfig()

			err := w.SetConfig(tt.move, tt.wait)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Equal(t, before, w.GetConfig())
		})
	}
}

func TestSetConfigStoreFailureLeavesConfig(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	w := newTestWiggler(t, &fakeMover{}, WithStore(store))
	before := w.GetConfig()

	err := w.SetConfig(3, 3)
	require.Error(t, err)
	assert.Equal(t, before, w.GetConfig())
}

func TestSetConfigAppliesToRunningSession(t *testing.T) {
	m := &fakeMover{}
	slow := fastSettings()
	slow.WaitSeconds = 1
	w := newTestWiggler(t, m, WithSettings(slow))

	require.NoError(t, w.StartWiggle())
	// The first wait was armed with the old cadence.
	require.NoError(t, w.SetConfig(0.1, 0))
	assert.Zero(t, w.Cycles())

	// Under the old cadence three seconds allow at most two cycles.
	require.Eventually(t, func() bool { return w.Cycles() >= 6 }, 3*time.Second, 10*time.Millisecond)
	assert.True(t, w.IsWiggling(), "no restart needed")

	require.NoError(t, w.SetConfig(0.1, 60))
	// Let the cycle in flight finish, then the long wait holds.
	time.Sleep(300 * time.Millisecond)
	settled := w.Cycles()
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, settled, w.Cycles())
}

func TestWindowSize(t *testing.T) {
	w := newTestWiggler(t, &fakeMover{})
	ch, unsub := w.Events().Subscribe()
	defer unsub()

	w.SetWindowLarge()
	assert.Equal(t, Window{Width: WindowWidth, Height: WindowLargeHeight, Large: true}, w.Window())
	e := nextEvent(t, ch, events.WindowResized)
	assert.Equal(t, events.WindowPayload{Width: WindowWidth, Height: WindowLargeHeight}, e.Data)

	w.SetWindowSmall()
	assert.Equal(t, Window{Width: WindowWidth, Height: WindowSmallHeight}, w.Window())
}

func TestShutdown(t *testing.T) {
	w := New(WithMover(&fakeMover{}), WithSettings(fastSettings()), WithLogger(logger.Nop()))
	ch, unsub := w.Events().Subscribe()
	defer unsub()

	require.NoError(t, w.StartWiggle())
	require.NoError(t, w.Shutdown(context.Background()))

	assert.False(t, w.IsReady())
	assert.False(t, w.IsWiggling())
	assert.ErrorIs(t, w.StartWiggle(), ErrNotReady)
	assert.ErrorIs(t, w.SetConfig(1, 1), ErrNotReady)
	assert.NoError(t, w.Shutdown(context.Background()), "second shutdown is a no-op")

	var names []events.Name
	for e := range ch {
		names = append(names, e.Name)
	}
	assert.Equal(t, []events.Name{events.WiggleStarted, events.WiggleStopped, events.Stopped}, names)
}

func TestStartRacingShutdownNeverOutlivesIt(t *testing.T) {
	for i := 0; i < 50; i++ {
		w := New(WithMover(&fakeMover{}), WithSettings(fastSettings()), WithLogger(logger.Nop()))

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 20; k++ {
					if err := w.StartWiggle(); err != nil {
						assert.ErrorIs(t, err, ErrNotReady)
						return
					}
				}
			}()
		}
		require.NoError(t, w.Shutdown(context.Background()))
		wg.Wait()

		assert.False(t, w.IsWiggling(), "iteration %d", i)
		assert.ErrorIs(t, w.StartWiggle(), ErrNotReady)
	}
}

func TestRespectActivitySkipsCycles(t *testing.T) {
	m := &fakeMover{drift: true}
	s := fastSettings()
	s.RespectActivity = true
	w := newTestWiggler(t, m, WithSettings(s))

	require.NoError(t, w.StartWiggle())
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, 0, m.Moves(), "user activity should suppress movement")
	assert.Equal(t, int64(0), w.Cycles())
}

func TestJitterMode(t *testing.T) {
	m := &fakeMover{pos: platform.Position{X: 400, Y: 300}}
	s := fastSettings()
	s.Mode = config.ModeJitter
	w := newTestWiggler(t, m, WithSettings(s))

	require.NoError(t, w.StartWiggle())
	require.Eventually(t, func() bool { return w.Cycles() > 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, w.StopWiggle())

	assert.Equal(t, HealthOK, w.Health())
	assert.Greater(t, m.Moves(), 4)
}

func TestHealthFailsWhenMovesFail(t *testing.T) {
	m := &fakeMover{fail: true}
	w := newTestWiggler(t, m)

	require.NoError(t, w.StartWiggle())
	require.Eventually(t, func() bool { return w.Health() == HealthFailed }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, w.IsWiggling(), "failures do not end the session")
}

type fakeInhibitor struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (f *fakeInhibitor) Name() string { return "fake" }

func (f *fakeInhibitor) Acquire(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired++
	return nil
}

func (f *fakeInhibitor) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

func TestKeepAwakeHoldsInhibitorWhileWiggling(t *testing.T) {
	inh := &fakeInhibitor{}
	s := fastSettings()
	s.KeepAwake = true
	w := newTestWiggler(t, &fakeMover{}, WithSettings(s), WithInhibitor(inh))

	require.NoError(t, w.StartWiggle())
	require.NoError(t, w.StartWiggle())
	require.NoError(t, w.StopWiggle())

	assert.Equal(t, 2, inh.acquired)
	assert.Equal(t, 2, inh.released)
}
