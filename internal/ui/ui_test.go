package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/logger"
	"github.com/stigoleg/wiggler/internal/platform/platformtest"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

type fakeBackend struct {
	mu       sync.Mutex
	wiggling bool
	move     float64
	wait     float64
	large    bool
	calls    []string
	setErr   error
	events   chan events.Event
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{move: 1, wait: 5, events: make(chan events.Event, 8)}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) StartWiggle(context.Context) error {
	f.record("start")
	f.wiggling = true
	return nil
}

func (f *fakeBackend) StartTimed(_ context.Context, d time.Duration) error {
	f.record("start " + d.String())
	f.wiggling = true
	return nil
}

func (f *fakeBackend) StopWiggle(context.Context) error {
	f.record("stop")
	f.wiggling = false
	return nil
}

func (f *fakeBackend) IsWiggling(context.Context) (bool, error) { return f.wiggling, nil }

func (f *fakeBackend) SetConfig(_ context.Context, move, wait float64) error {
	f.record("set")
	if f.setErr != nil {
		return f.setErr
	}
	f.move, f.wait = move, wait
	return nil
}

func (f *fakeBackend) GetMoveSpeed(context.Context) (float64, error) { return f.move, nil }

func (f *fakeBackend) GetWaitTime(context.Context) (float64, error) { return f.wait, nil }

func (f *fakeBackend) SetWindowSmall(context.Context) error {
	f.record("small")
	f.large = false
	return nil
}

func (f *fakeBackend) SetWindowLarge(context.Context) error {
	f.record("large")
	f.large = true
	return nil
}

func (f *fakeBackend) Subscribe(context.Context) (<-chan events.Event, error) {
	return f.events, nil
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to the model and runs the returned command once, feeding
// its message back. Ticks are not followed.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		return m
	}
	out := cmd()
	if out == nil {
		return m
	}
	next, _ = m.Update(out)
	return next.(Model)
}

func loadedModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := NewModel(context.Background(), b, Options{})
	m.log = logger.Nop()
	next, _ := m.Update(m.load()())
	return next.(Model)
}

func TestInitialModel(t *testing.T) {
	m := NewModel(context.Background(), newFakeBackend(), Options{})
	assert.Equal(t, panelMain, m.panel)
	assert.False(t, m.loaded)
	assert.False(t, m.controlsEnabled())
	assert.Contains(t, m.View(), "Connecting...")
}

func TestLoadPopulatesSliders(t *testing.T) {
	b := newFakeBackend()
	b.move, b.wait = 2.3, 40
	m := loadedModel(t, b)

	assert.True(t, m.controlsEnabled())
	assert.InDelta(t, 2.3, m.move.value, 1e-9)
	assert.InDelta(t, 40, m.wait.value, 1e-9)
	assert.Contains(t, m.View(), "Start")
}

func TestToggleStartsAndStops(t *testing.T) {
	b := newFakeBackend()
	m := loadedModel(t, b)

	m = step(t, m, keyMsg(" "))
	assert.True(t, m.wiggling)
	assert.Contains(t, m.View(), "Stop")

	m = step(t, m, keyMsg("enter"))
	assert.False(t, m.wiggling)
	assert.Equal(t, []string{"start", "stop"}, b.calls)
}

func TestOptionsToggleResizesWindow(t *testing.T) {
	b := newFakeBackend()
	m := loadedModel(t, b)

	m = step(t, m, keyMsg("o"))
	assert.Equal(t, panelOptions, m.panel)
	assert.True(t, b.large)
	view := m.View()
	assert.Contains(t, view, "Wiggle for")
	assert.Contains(t, view, "Before wiggling again, wait")
	assert.Contains(t, view, "Update")
	assert.Contains(t, view, "Reset")

	m = step(t, m, keyMsg("esc"))
	assert.Equal(t, panelMain, m.panel)
	assert.False(t, b.large)
}

func TestSliderBounds(t *testing.T) {
	b := newFakeBackend()
	b.move = config.MaxMoveSeconds
	b.wait = config.MinWaitSeconds
	m := loadedModel(t, b)
	m = step(t, m, keyMsg("o"))

	m = step(t, m, keyMsg("right"))
	assert.InDelta(t, config.MaxMoveSeconds, m.move.value, 1e-9)
	m = step(t, m, keyMsg("left"))
	assert.InDelta(t, 9.9, m.move.value, 1e-9)

	m = step(t, m, keyMsg("down"))
	m = step(t, m, keyMsg("left"))
	assert.InDelta(t, 0, m.wait.value, 1e-9)
	m = step(t, m, keyMsg("right"))
	assert.InDelta(t, 1, m.wait.value, 1e-9)
}

func TestSubmitSuccess(t *testing.T) {
	b := newFakeBackend()
	m := loadedModel(t, b)
	m = step(t, m, keyMsg("o"))
	m = step(t, m, keyMsg("right"))

	m = step(t, m, keyMsg("enter"))
	assert.Equal(t, noticeConfigUpdated, m.notice)
	assert.False(t, m.noticeError)
	assert.InDelta(t, 1.1, b.move, 1e-9)
	assert.InDelta(t, 1.1, m.loadedMove, 1e-9)
	assert.NotContains(t, b.calls, "start", "idle panel must not restart")
}

func TestSubmitWhileWigglingRestarts(t *testing.T) {
	b := newFakeBackend()
	b.wiggling = true
	m := loadedModel(t, b)
	m = step(t, m, keyMsg("o"))
	assert.Contains(t, m.View(), "Update and Restart")

	m = step(t, m, keyMsg("enter"))
	assert.Equal(t, noticeConfigUpdated, m.notice)
	assert.Equal(t, []string{"large", "set", "start"}, b.calls)
}

func TestSubmitFailureNotifies(t *testing.T) {
	b := newFakeBackend()
	b.setErr = errors.New("nope")
	m := loadedModel(t, b)
	m = step(t, m, keyMsg("o"))
	m = step(t, m, keyMsg("right"))

	require.InDelta(t, 1.1, m.move.value, 1e-9)

	m = step(t, m, keyMsg("enter"))
	assert.Equal(t, noticeConfigFailed, m.notice)
	assert.True(t, m.noticeError)
	assert.Contains(t, m.View(), noticeConfigFailed)
	assert.InDelta(t, 1.0, b.move, 1e-9)
	assert.InDelta(t, b.move, m.move.value, 1e-9, "slider shows what the backend holds")
	assert.InDelta(t, b.wait, m.wait.value, 1e-9)
}

func TestSubmitFailureWhileWigglingStillRestarts(t *testing.T) {
	b := newFakeBackend()
	b.wiggling = true
	b.setErr = errors.New("nope")
	m := loadedModel(t, b)
	m = step(t, m, keyMsg("o"))
	m = step(t, m, keyMsg("right"))

	m = step(t, m, keyMsg("enter"))
	assert.Equal(t, noticeConfigFailed, m.notice)
	assert.Equal(t, []string{"large", "set", "start"}, b.calls)
	assert.InDelta(t, 1.0, m.move.value, 1e-9)
	assert.Empty(t, m.err)
}

func TestResetRestoresLoadedValues(t *testing.T) {
	b := newFakeBackend()
	m := loadedModel(t, b)
	m = step(t, m, keyMsg("o"))
	m = step(t, m, keyMsg("right"))
	m = step(t, m, keyMsg("right"))
	require.InDelta(t, 1.2, m.move.value, 1e-9)

	m.focus = controlReset
	m = step(t, m, keyMsg("enter"))
	assert.InDelta(t, 1.0, m.move.value, 1e-9)
	assert.NotContains(t, b.calls, "set")
}

func TestNoticeClears(t *testing.T) {
	m := loadedModel(t, newFakeBackend())
	m, _ = m.notify(noticeConfigUpdated, false)

	next, _ := m.Update(clearNoticeMsg{id: m.noticeID - 1})
	assert.Equal(t, noticeConfigUpdated, next.(Model).notice, "stale clear is ignored")

	next, _ = m.Update(clearNoticeMsg{id: m.noticeID})
	assert.Empty(t, next.(Model).notice)
}

func TestEvents(t *testing.T) {
	m := loadedModel(t, newFakeBackend())

	next, _ := m.Update(eventMsg{Name: events.WiggleStarted})
	m = next.(Model)
	assert.True(t, m.wiggling)

	next, _ = m.Update(eventMsg{Name: events.WiggleStopped})
	m = next.(Model)
	assert.False(t, m.wiggling)

	next, _ = m.Update(eventMsg{Name: events.WindowResized, Data: events.WindowPayload{Width: 600, Height: 600}})
	m = next.(Model)
	assert.Equal(t, panelOptions, m.panel)

	next, _ = m.Update(eventMsg{Name: events.Stopped})
	m = next.(Model)
	assert.False(t, m.ready)
	assert.False(t, m.controlsEnabled())
	assert.Contains(t, m.View(), "Controls are disabled")
}

func TestDisabledControlsIgnoreKeys(t *testing.T) {
	b := newFakeBackend()
	m := loadedModel(t, b)
	m.ready = false

	m = step(t, m, keyMsg(" "))
	m = step(t, m, keyMsg("o"))
	assert.Empty(t, b.calls)
	assert.Equal(t, panelMain, m.panel)

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTimedStartShowsCountdown(t *testing.T) {
	b := newFakeBackend()
	m := loadedModel(t, b)
	m.opts.Duration = 10 * time.Minute

	next, cmd := m.Update(m.start(m.opts.Duration)())
	m = next.(Model)
	require.NotNil(t, cmd, "countdown ticks")
	assert.Equal(t, []string{"start 10m0s"}, b.calls)
	assert.Greater(t, m.TimeRemaining(), 9*time.Minute)
	assert.Contains(t, m.View(), "remaining")
}

func TestHelpPanel(t *testing.T) {
	m := loadedModel(t, newFakeBackend())

	m = step(t, m, keyMsg("h"))
	assert.Equal(t, panelHelp, m.panel)
	assert.Contains(t, m.View(), "The Wiggler Help")

	m = step(t, m, keyMsg("esc"))
	assert.Equal(t, panelMain, m.panel)
}

func TestLocalBackend(t *testing.T) {
	w := wiggle.New(wiggle.WithMover(platformtest.NewMover(320, 200)), wiggle.WithLogger(logger.Nop()))
	defer w.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := Local(w)

	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, b.SetConfig(ctx, 0.5, 2))
	move, _ := b.GetMoveSpeed(ctx)
	wait, _ := b.GetWaitTime(ctx)
	assert.Equal(t, 0.5, move)
	assert.Equal(t, 2.0, wait)

	e := <-ch
	assert.Equal(t, events.ConfigSet, e.Name)

	require.NoError(t, b.SetWindowLarge(ctx))
	assert.True(t, w.Window().Large)

	cancel()
	require.Eventually(t, func() bool { return w.Events().Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSliderString(t *testing.T) {
	s := slider{min: 0.1, max: 10, step: 0.1}
	s.set(2.25)
	assert.True(t, strings.HasSuffix(s.String(), "s"))
	assert.Contains(t, []string{"2.2s", "2.3s"}, s.String())

	w := slider{min: 0, max: 60, step: 1}
	w.set(12.6)
	assert.Equal(t, "13s", w.String())
}
