package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/logger"
)

// noticeTTL is how long a notification stays on screen.
const noticeTTL = 3 * time.Second

// Options control how the panel starts.
type Options struct {
	// Start begins wiggling as soon as the panel is up.
	Start bool
	// Duration makes the initial session timed. Implies Start.
	Duration time.Duration
	// Remote is shown in the header when driving another process.
	Remote string
}

// Model holds the panel state. All backend calls run as tea.Cmds; Update
// never blocks.
type Model struct {
	backend Backend
	ctx     context.Context
	opts    Options
	log     *zerolog.Logger

	loaded   bool
	ready    bool
	wiggling bool
	pending  bool
	events   <-chan events.Event

	panel    panel
	previous panel
	focus    control
	move     slider
	wait     slider
	// last values read from the backend, restored by Reset
	loadedMove float64
	loadedWait float64

	notice      string
	noticeError bool
	noticeID    int
	err         string

	startTime time.Time
	duration  time.Duration

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	bar      progress.Model
	countbar progress.Model
	width    int
}

// NewModel returns a panel driving b. ctx bounds every backend call and the
// event subscription.
func NewModel(ctx context.Context, b Backend, opts Options) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = Current.ActiveStatus

	return Model{
		backend: b,
		ctx:     ctx,
		opts:    opts,
		log:     logger.WithComponent("ui"),
		panel:   panelMain,
		move: slider{
			label: "Wiggle for",
			min:   config.MinMoveSeconds,
			max:   config.MaxMoveSeconds,
			step:  0.1,
			value: config.DefaultMoveSeconds,
		},
		wait: slider{
			label: "Before wiggling again, wait",
			min:   config.MinWaitSeconds,
			max:   config.MaxWaitSeconds,
			step:  1,
			value: config.DefaultWaitSeconds,
		},
		keys:     DefaultKeys(),
		help:     NewHelpModel(),
		spinner:  sp,
		bar:      progress.New(progress.WithSolidFill("#7D56F4"), progress.WithoutPercentage(), progress.WithWidth(30)),
		countbar: progress.New(progress.WithGradient("#7D56F4", "#43BF6D"), progress.WithWidth(30)),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load(), m.subscribe(), m.spinner.Tick}
	if m.opts.Start || m.opts.Duration > 0 {
		cmds = append(cmds, m.start(m.opts.Duration))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return update(msg, m)
}

// View implements tea.Model
func (m Model) View() string {
	return view(m)
}

// TimeRemaining returns the time left in a timed session started here.
func (m Model) TimeRemaining() time.Duration {
	if !m.wiggling || m.duration <= 0 {
		return 0
	}
	return max(m.duration-time.Since(m.startTime), 0)
}

// controlsEnabled is false until the backend answered and after it stopped.
func (m Model) controlsEnabled() bool {
	return m.loaded && m.ready && !m.pending
}
