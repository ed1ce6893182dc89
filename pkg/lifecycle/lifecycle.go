// Package lifecycle coordinates startup hooks, shutdown hooks and long-running
// background workers for the service process.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShutdownTimeout is returned when hooks or workers outlive the shutdown deadline.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// Phase orders shutdown. Hooks within a phase run concurrently; a phase
// starts only after every hook of the previous phase has returned.
type Phase int

const (
	// PhaseIngress stops accepting new work, e.g. draining the HTTP server.
	PhaseIngress Phase = iota
	// PhaseSettle finishes work already accepted, e.g. background writes.
	// Workers started with Go are awaited at the end of this phase.
	PhaseSettle
	// PhaseRelease closes connections and clients.
	PhaseRelease

	phaseCount
)

// Coordinator manages startup hooks, phased shutdown hooks and background workers.
type Coordinator struct {
	ctx       context.Context
	cancel    context.CancelFunc
	startupWg sync.WaitGroup
	workerWg  sync.WaitGroup
	ready     atomic.Bool

	mu    sync.Mutex
	hooks [phaseCount][]func()
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a PhaseRelease hook.
func (c *Coordinator) OnShutdown(fn func()) {
	c.OnStop(PhaseRelease, fn)
}

// OnStop registers a hook to run during the given shutdown phase.
// The context is already cancelled when hooks run.
func (c *Coordinator) OnStop(phase Phase, fn func()) {
	if phase < 0 || phase >= phaseCount {
		phase = PhaseRelease
	}
	c.mu.Lock()
	c.hooks[phase] = append(c.hooks[phase], fn)
	c.mu.Unlock()
}

// Go runs a background worker with the coordinator context. Workers must
// return once the context is cancelled; release hooks run after they do.
func (c *Coordinator) Go(fn func(ctx context.Context)) {
	c.workerWg.Go(func() {
		fn(c.ctx)
	})
}

// Ready returns true after all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.ready.Store(true)
}

// Shutdown cancels the context, then runs the ingress, settle and release
// phases in order, all within timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.run(PhaseIngress)
		c.run(PhaseSettle)
		c.workerWg.Wait()
		c.run(PhaseRelease)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w after %v", ErrShutdownTimeout, timeout)
	}
}

func (c *Coordinator) run(phase Phase) {
	c.mu.Lock()
	hooks := c.hooks[phase]
	c.mu.Unlock()

	var wg sync.WaitGroup
	for _, fn := range hooks {
		wg.Go(fn)
	}
	wg.Wait()
}
