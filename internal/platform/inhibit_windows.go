//go:build windows

package platform

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sys/windows"
)

const (
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
	esContinuous      = 0x80000000
)

var (
	modkernel32                 = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = modkernel32.NewProc("SetThreadExecutionState")
)

func setThreadExecutionState(flags uintptr) error {
	r, _, err := procSetThreadExecutionState.Call(flags)
	if r == 0 {
		return err
	}
	return nil
}

// executionStateInhibitor holds SetThreadExecutionState on a dedicated OS
// thread, since the state belongs to the calling thread.
type executionStateInhibitor struct {
	mu      sync.Mutex
	release chan struct{}
	done    chan error
}

// NewInhibitor returns the SetThreadExecutionState inhibitor.
func NewInhibitor() Inhibitor {
	return &executionStateInhibitor{}
}

func (e *executionStateInhibitor) Name() string { return "SetThreadExecutionState" }

func (e *executionStateInhibitor) Acquire(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.release != nil {
		return nil
	}

	release := make(chan struct{})
	done := make(chan error, 1)
	started := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := setThreadExecutionState(esContinuous | esSystemRequired | esDisplayRequired); err != nil {
			started <- err
			return
		}
		started <- nil

		select {
		case <-release:
		case <-ctx.Done():
		}
		done <- setThreadExecutionState(esContinuous)
	}()

	if err := <-started; err != nil {
		return err
	}
	e.release, e.done = release, done
	return nil
}

func (e *executionStateInhibitor) Release() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.release == nil {
		return nil
	}
	close(e.release)
	err := <-e.done
	e.release, e.done = nil, nil
	return err
}
