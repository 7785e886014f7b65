// Package events fans engine notifications out to any number of listeners
// (the terminal UI, websocket clients).
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Name identifies a push notification.
type Name string

const (
	Ready         Name = "ready"
	WiggleStarted Name = "wiggle-started"
	WiggleStopped Name = "wiggle-stopped"
	ConfigSet     Name = "config-set"
	WindowResized Name = "window-resized"
	Stopped       Name = "stopped"
)

// subscriberBuffer is how many events a slow listener may fall behind
// before events are dropped for it.
const subscriberBuffer = 32

// Event is a single notification. Data is JSON-serialisable.
type Event struct {
	Name Name      `json:"name"`
	Data any       `json:"data,omitempty"`
	Time time.Time `json:"time"`
}

// ConfigPayload accompanies ConfigSet.
type ConfigPayload struct {
	Duration float64 `json:"duration"`
	Time     float64 `json:"time"`
}

// WindowPayload accompanies WindowResized.
type WindowPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bus is a non-blocking publish/subscribe hub.
type Bus struct {
	mu      sync.RWMutex
	subs    map[chan Event]struct{}
	closed  bool
	dropped atomic.Int64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; calling it more than once is safe.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(ch) })
	}
}

func (b *Bus) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers e to every subscriber without blocking. Listeners whose
// buffer is full miss the event.
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Emit is shorthand for Publish with the current time.
func (b *Bus) Emit(name Name, data any) {
	b.Publish(Event{Name: name, Data: data, Time: time.Now()})
}

// Dropped reports how many deliveries were skipped because a listener was full.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Subscribers returns the current listener count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
