package wiggle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stigoleg/wiggler/internal/logger"
)

// CleanupManager runs shutdown tasks in registration order, bounded by a
// timeout, exactly once.
type CleanupManager struct {
	mu          sync.Mutex
	resources   []CleanupResource
	timeout     time.Duration
	cleanupOnce sync.Once
	errs        []error
	log         *zerolog.Logger
}

// CleanupResource represents a resource that needs cleanup
type CleanupResource interface {
	Cleanup() error
	Name() string
}

// CleanupFunc is a function-based cleanup resource
type CleanupFunc struct {
	name string
	fn   func() error
}

func (c *CleanupFunc) Cleanup() error {
	return c.fn()
}

func (c *CleanupFunc) Name() string {
	return c.name
}

// NewCleanupManager creates a manager; a non-positive timeout means 5s.
func NewCleanupManager(timeout time.Duration) *CleanupManager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CleanupManager{
		resources: make([]CleanupResource, 0),
		timeout:   timeout,
		log:       logger.WithComponent("cleanup"),
	}
}

// Register adds a resource to be cleaned up
func (cm *CleanupManager) Register(resource CleanupResource) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.resources = append(cm.resources, resource)
}

// RegisterFunc registers a cleanup function
func (cm *CleanupManager) RegisterFunc(name string, fn func() error) {
	cm.Register(&CleanupFunc{name: name, fn: fn})
}

// RegisterWiggler stops w through Shutdown, bounded by the manager timeout.
func (cm *CleanupManager) RegisterWiggler(w *Wiggler) {
	cm.RegisterFunc("wiggler", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cm.timeout)
		defer cancel()
		return w.Shutdown(ctx)
	})
}

// Execute runs every registered cleanup once and returns the joined errors.
// Later calls return the same result without running anything.
func (cm *CleanupManager) Execute() error {
	cm.cleanupOnce.Do(func() {
		cm.errs = cm.executeWithTimeout()
	})
	return errors.Join(cm.errs...)
}

func (cm *CleanupManager) executeWithTimeout() []error {
	cm.mu.Lock()
	resources := make([]CleanupResource, len(cm.resources))
	copy(resources, cm.resources)
	cm.mu.Unlock()

	if len(resources) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cm.timeout)
	defer cancel()

	done := make(chan struct{})
	var cleanupErrors []error
	var mu sync.Mutex

	go func() {
		defer close(done)
		for _, resource := range resources {
			func() {
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						cleanupErrors = append(cleanupErrors, fmt.Errorf("panic cleaning up %s: %v", resource.Name(), r))
						mu.Unlock()
						cm.log.Error().Str("resource", resource.Name()).Interface("panic", r).Msg("panic during cleanup")
					}
				}()

				if err := resource.Cleanup(); err != nil {
					mu.Lock()
					cleanupErrors = append(cleanupErrors, fmt.Errorf("%s: %w", resource.Name(), err))
					mu.Unlock()
					cm.log.Error().Err(err).Str("resource", resource.Name()).Msg("cleanup failed")
				} else {
					cm.log.Debug().Str("resource", resource.Name()).Msg("cleaned up")
				}
			}()
		}
	}()

	select {
	case <-done:
		return cleanupErrors
	case <-ctx.Done():
		cm.log.Error().Dur("timeout", cm.timeout).Msg("cleanup timed out; some resources may not have been cleaned up")
		mu.Lock()
		defer mu.Unlock()
		return append(cleanupErrors, errors.New("cleanup timeout exceeded"))
	}
}

// Clear removes all registered resources without executing cleanup
func (cm *CleanupManager) Clear() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.resources = cm.resources[:0]
}
