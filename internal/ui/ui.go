package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the panel until the user quits or ctx is cancelled.
func Run(ctx context.Context, b Backend, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, b, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
