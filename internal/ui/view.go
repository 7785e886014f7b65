package ui

import (
	"fmt"
	"strings"
)

func view(m Model) string {
	if m.panel == panelHelp {
		return helpView(m)
	}

	var b strings.Builder
	b.WriteString(mainView(m))
	if m.panel == panelOptions {
		b.WriteString("\n")
		b.WriteString(optionsView(m))
	}

	switch {
	case m.notice != "" && m.noticeError:
		b.WriteString("\n" + Current.Error.Render(m.notice))
	case m.notice != "":
		b.WriteString("\n" + Current.Notice.Render(m.notice))
	}
	if m.err != "" {
		b.WriteString("\n" + Current.Error.Render(m.err))
	}

	b.WriteString("\n\n" + m.help.View(m.keys.ForPanel(m.panel)))
	return b.String()
}

func mainView(m Model) string {
	var b strings.Builder

	title := "The Wiggler"
	if m.opts.Remote != "" {
		title += " @ " + m.opts.Remote
	}
	b.WriteString(Current.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case !m.loaded && m.err == "":
		b.WriteString(Current.InactiveStatus.Render("Connecting..."))
		return b.String()
	case !m.ready:
		b.WriteString(Current.DisabledItem.Render("The wiggler has stopped. Controls are disabled."))
		return b.String()
	}

	b.WriteString(Current.Text.Render("Keeps your computer awake by nudging the mouse now and then."))
	b.WriteString("\n")
	b.WriteString(Current.Help.Render("Press space to start or stop, o for options."))
	b.WriteString("\n\n")

	if m.wiggling {
		b.WriteString(m.spinner.View())
		b.WriteString(Current.ActiveStatus.Render("Wiggling"))
	} else {
		b.WriteString(Current.InactiveStatus.Render("Idle"))
	}
	b.WriteString("\n\n")

	label := "Start"
	if m.wiggling {
		label = "Stop"
	}
	if m.panel == panelMain {
		b.WriteString(Current.FocusedButton.Render(label))
	} else {
		b.WriteString(Current.Button.Render(label))
	}

	if m.duration > 0 && m.wiggling {
		remaining := m.TimeRemaining()
		minutes := int(remaining.Minutes())
		seconds := int(remaining.Seconds()) % 60
		b.WriteString("\n")
		b.WriteString(Current.Countdown.Render(fmt.Sprintf("%d:%02d remaining", minutes, seconds)))
		b.WriteString("\n")

		done := 1.0 - float64(remaining)/float64(m.duration)
		b.WriteString(" " + m.countbar.ViewAs(min(max(done, 0), 1)))
	}
	return b.String()
}

func optionsView(m Model) string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("Options"))
	b.WriteString("\n\n")

	for _, c := range []struct {
		ctl control
		s   slider
	}{{controlMove, m.move}, {controlWait, m.wait}} {
		style := Current.Text
		if m.focus == c.ctl {
			style = Current.SelectedItem
		}
		b.WriteString(style.Render(fmt.Sprintf("%s: %s", c.s.label, c.s)))
		b.WriteString("\n ")
		b.WriteString(m.bar.ViewAs(c.s.fraction()))
		b.WriteString("\n\n")
	}

	update := "Update"
	if m.wiggling {
		update = "Update and Restart"
	}
	b.WriteString(button(update, m.focus == controlUpdate, m.pending))
	b.WriteString(" ")
	b.WriteString(button("Reset", m.focus == controlReset, m.pending))

	return Current.Panel.Render(b.String())
}

func button(label string, focused, disabled bool) string {
	switch {
	case disabled:
		return Current.Button.Foreground(defaultColors.Subtle).Render(label)
	case focused:
		return Current.FocusedButton.Render(label)
	default:
		return Current.Button.Render(label)
	}
}

func helpView(m Model) string {
	help := `The Wiggler Help

Usage:
  wiggler [flags]
  wiggler serve --listen 127.0.0.1:7787
  wiggler start|stop|status --server 127.0.0.1:7787

Main:
  space/s   : Start or stop wiggling
  o         : Show or hide options

Options:
  ↑/↓, tab  : Move between sliders and buttons
  ←/→       : Adjust the focused slider
  enter     : Update or Reset
  esc       : Close options

Press 'h' or 'esc' to close help`

	return Current.Help.Render(help) + "\n\n" + m.help.View(m.keys.ForPanel(panelHelp))
}
