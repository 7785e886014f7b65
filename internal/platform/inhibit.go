package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/stigoleg/wiggler/internal/util"
)

// ErrInhibitUnavailable means no sleep inhibition mechanism exists here.
var ErrInhibitUnavailable = errors.New("sleep inhibition unavailable on this system")

// Inhibitor keeps the display and system from idling while held.
type Inhibitor interface {
	Name() string
	Acquire(ctx context.Context) error
	Release() error
}

// commandInhibitor holds a helper process (caffeinate, systemd-inhibit) for
// as long as the inhibition should last.
type commandInhibitor struct {
	name string
	args []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

func (c *commandInhibitor) Name() string { return c.name }

func (c *commandInhibitor) Acquire(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd != nil {
		return nil
	}
	path, err := util.LookCommand(c.name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInhibitUnavailable, err)
	}

	cmd := exec.CommandContext(ctx, path, c.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", c.name, err)
	}
	c.cmd = cmd
	go func() { _ = cmd.Wait() }()
	return nil
}

func (c *commandInhibitor) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd == nil || c.cmd.Process == nil {
		c.cmd = nil
		return nil
	}
	err := c.cmd.Process.Kill()
	c.cmd = nil
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop %s: %w", c.name, err)
	}
	return nil
}

// noopInhibitor is used where nothing better exists.
type noopInhibitor struct{}

func (noopInhibitor) Name() string { return "none" }

func (noopInhibitor) Acquire(context.Context) error { return ErrInhibitUnavailable }

func (noopInhibitor) Release() error { return nil }
