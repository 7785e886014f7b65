package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

const (
	noticeConfigUpdated = "Updated Wiggle Config!"
	noticeConfigFailed  = "Error Setting Wiggle Config"
)

func update(msg tea.Msg, m Model) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKey(msg, m)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("failed to load wiggle state")
			m.err = msg.err.Error()
			return m, nil
		}
		m.loaded = true
		m.ready = true
		m.err = ""
		m.wiggling = msg.wiggling
		m.setSliders(msg.move, msg.wait)
		return m, nil

	case subscribedMsg:
		m.events = msg.ch
		return m, waitForEvent(msg.ch)

	case subscribeFailedMsg:
		m.log.Warn().Err(msg.err).Msg("event stream unavailable")
		m.err = "live updates unavailable: " + msg.err.Error()
		return m, nil

	case eventMsg:
		m = applyEvent(events.Event(msg), m)
		if m.events == nil {
			return m, nil
		}
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		m.events = nil
		m.ready = false
		m.wiggling = false
		m.duration = 0
		return m, nil

	case startedMsg:
		m.pending = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("failed to start wiggling")
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.wiggling = true
		m.duration = msg.duration
		if msg.duration > 0 {
			m.startTime = time.Now()
			return m, tick()
		}
		return m, nil

	case stoppedMsg:
		m.pending = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("failed to stop wiggling")
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.wiggling = false
		m.duration = 0
		return m, nil

	case configSetMsg:
		m.pending = false
		if msg.restartErr != nil {
			m.log.Error().Err(msg.restartErr).Msg("failed to restart or refresh after config update")
			m.err = msg.restartErr.Error()
		}
		if msg.restarted {
			// A restart clears any deadline.
			m.duration = 0
		}
		if msg.synced {
			m.setSliders(msg.move, msg.wait)
		}
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("failed to set wiggle config")
			return m.notify(noticeConfigFailed, true)
		}
		return m.notify(noticeConfigUpdated, false)

	case windowMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to resize panel")
		}
		return m, nil

	case tickMsg:
		if m.wiggling && m.duration > 0 {
			return m, tick()
		}
		return m, nil

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
			m.noticeError = false
		}
		return m, nil
	}

	return m, nil
}

func applyEvent(e events.Event, m Model) Model {
	switch e.Name {
	case events.WiggleStarted:
		m.wiggling = true
	case events.WiggleStopped:
		m.wiggling = false
		m.duration = 0
	case events.ConfigSet:
		if p, ok := e.Data.(events.ConfigPayload); ok {
			m.log.Info().Float64("duration", p.Duration).Float64("time", p.Time).Msg("config set")
		} else {
			m.log.Info().Msg("config set")
		}
	case events.WindowResized:
		if p, ok := e.Data.(events.WindowPayload); ok {
			m = syncPanel(m, p.Height >= wiggle.WindowLargeHeight)
		}
	case events.Stopped:
		m.ready = false
		m.wiggling = false
		m.duration = 0
	}
	return m
}

// syncPanel follows a resize made by another client.
func syncPanel(m Model, large bool) Model {
	switch {
	case large && m.panel == panelMain:
		m.panel = panelOptions
	case !large && m.panel == panelOptions:
		m.panel = panelMain
	}
	return m
}

func handleKey(msg tea.KeyMsg, m Model) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleHelp):
		if m.panel == panelHelp {
			m.panel = m.previous
		} else {
			m.previous = m.panel
			m.panel = panelHelp
		}
		return m, nil
	}

	if m.panel == panelHelp {
		if key.Matches(msg, m.keys.Back) {
			m.panel = m.previous
		}
		return m, nil
	}

	if !m.controlsEnabled() {
		return m, nil
	}

	if key.Matches(msg, m.keys.Toggle) {
		return toggle(m)
	}

	switch m.panel {
	case panelMain:
		switch {
		case key.Matches(msg, m.keys.Activate):
			return toggle(m)
		case key.Matches(msg, m.keys.Options):
			m.panel = panelOptions
			m.focus = controlMove
			return m, m.resizeWindow(true)
		}

	case panelOptions:
		switch {
		case key.Matches(msg, m.keys.Options), key.Matches(msg, m.keys.Back):
			m.panel = panelMain
			return m, m.resizeWindow(false)
		case key.Matches(msg, m.keys.Up):
			m.focus = (m.focus + controlCount - 1) % controlCount
		case key.Matches(msg, m.keys.Down):
			m.focus = (m.focus + 1) % controlCount
		case key.Matches(msg, m.keys.Left):
			m.adjust(-1)
		case key.Matches(msg, m.keys.Right):
			m.adjust(1)
		case key.Matches(msg, m.keys.Activate):
			if m.focus == controlReset {
				m.setSliders(m.loadedMove, m.loadedWait)
				return m, nil
			}
			m.pending = true
			return m, m.submit()
		}
	}
	return m, nil
}

func toggle(m Model) (Model, tea.Cmd) {
	m.pending = true
	if m.wiggling {
		return m, m.stop()
	}
	return m, m.start(0)
}

func (m *Model) adjust(dir int) {
	var s *slider
	switch m.focus {
	case controlMove:
		s = &m.move
	case controlWait:
		s = &m.wait
	default:
		return
	}
	if dir < 0 {
		s.decrement()
	} else {
		s.increment()
	}
}

func (m *Model) setSliders(move, wait float64) {
	m.move.set(move)
	m.wait.set(wait)
	m.loadedMove = m.move.value
	m.loadedWait = m.wait.value
}

func (m Model) notify(text string, isErr bool) (Model, tea.Cmd) {
	m.noticeID++
	m.notice = text
	m.noticeError = isErr
	return m, clearNotice(m.noticeID)
}
