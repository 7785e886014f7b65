package ui

import (
	"context"
	"time"

	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

// Backend is the call surface the panel drives. *client.Client implements
// it against a remote instance; Local wraps an in-process engine.
type Backend interface {
	StartWiggle(ctx context.Context) error
	StartTimed(ctx context.Context, d time.Duration) error
	StopWiggle(ctx context.Context) error
	IsWiggling(ctx context.Context) (bool, error)
	SetConfig(ctx context.Context, move, wait float64) error
	GetMoveSpeed(ctx context.Context) (float64, error)
	GetWaitTime(ctx context.Context) (float64, error)
	SetWindowSmall(ctx context.Context) error
	SetWindowLarge(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan events.Event, error)
}

type local struct {
	w *wiggle.Wiggler
}

// Local adapts an in-process Wiggler to Backend.
func Local(w *wiggle.Wiggler) Backend {
	return local{w: w}
}

func (l local) StartWiggle(context.Context) error { return l.w.StartWiggle() }

func (l local) StartTimed(_ context.Context, d time.Duration) error { return l.w.StartTimed(d) }

func (l local) StopWiggle(context.Context) error { return l.w.StopWiggle() }

func (l local) IsWiggling(context.Context) (bool, error) { return l.w.IsWiggling(), nil }

func (l local) SetConfig(_ context.Context, move, wait float64) error {
	return l.w.SetConfig(move, wait)
}

func (l local) GetMoveSpeed(context.Context) (float64, error) { return l.w.GetMoveSpeed(), nil }

func (l local) GetWaitTime(context.Context) (float64, error) { return l.w.GetWaitTime(), nil }

func (l local) SetWindowSmall(context.Context) error {
	l.w.SetWindowSmall()
	return nil
}

func (l local) SetWindowLarge(context.Context) error {
	l.w.SetWindowLarge()
	return nil
}

// Subscribe ends the subscription when ctx is done.
func (l local) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	if !l.w.IsReady() {
		return nil, wiggle.ErrNotReady
	}
	ch, unsubscribe := l.w.Events().Subscribe()
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return ch, nil
}
