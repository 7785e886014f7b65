package ui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/wiggler/internal/events"
)

type loadedMsg struct {
	move, wait float64
	wiggling   bool
	err        error
}

type subscribedMsg struct {
	ch <-chan events.Event
}

type subscribeFailedMsg struct {
	err error
}

type eventMsg events.Event

type streamClosedMsg struct{}

type startedMsg struct {
	duration time.Duration
	err      error
}

type stoppedMsg struct {
	err error
}

type configSetMsg struct {
	// move and wait are the backend's values, valid when synced is set.
	move, wait float64
	synced     bool
	restarted  bool
	err        error
	// restartErr covers the restart and the read back, not SetConfig.
	restartErr error
}

type windowMsg struct {
	large bool
	err   error
}

// tickMsg is sent when the countdown timer ticks
type tickMsg time.Time

type clearNoticeMsg struct {
	id int
}

func (m Model) load() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		move, err := b.GetMoveSpeed(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		wait, err := b.GetWaitTime(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		on, err := b.IsWiggling(ctx)
		return loadedMsg{move: move, wait: wait, wiggling: on, err: err}
	}
}

func (m Model) subscribe() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		ch, err := b.Subscribe(ctx)
		if err != nil {
			return subscribeFailedMsg{err: err}
		}
		return subscribedMsg{ch: ch}
	}
}

func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(e)
	}
}

func (m Model) start(d time.Duration) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if d > 0 {
			return startedMsg{duration: d, err: b.StartTimed(ctx, d)}
		}
		return startedMsg{err: b.StartWiggle(ctx)}
	}
}

func (m Model) stop() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return stoppedMsg{err: b.StopWiggle(ctx)}
	}
}

// submit stores the slider values, restarts a running session so the new
// cadence applies at once, and reads the values back. The restart and the
// read back happen even when SetConfig fails, so the sliders always end up
// showing what the backend holds.
func (m Model) submit() tea.Cmd {
	b, ctx := m.backend, m.ctx
	move, wait, restart := m.move.value, m.wait.value, m.wiggling
	return func() tea.Msg {
		msg := configSetMsg{err: b.SetConfig(ctx, move, wait)}

		if restart {
			msg.restartErr = b.StartWiggle(ctx)
			msg.restarted = msg.restartErr == nil
		}

		gotMove, moveErr := b.GetMoveSpeed(ctx)
		gotWait, waitErr := b.GetWaitTime(ctx)
		if err := errors.Join(moveErr, waitErr); err != nil {
			msg.restartErr = errors.Join(msg.restartErr, err)
			return msg
		}
		msg.move, msg.wait, msg.synced = gotMove, gotWait, true
		return msg
	}
}

func (m Model) resizeWindow(large bool) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if large {
			return windowMsg{large: true, err: b.SetWindowLarge(ctx)}
		}
		return windowMsg{err: b.SetWindowSmall(ctx)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clearNotice(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
