// Package daemon supervises the background tasks that make up a
// running server: listeners and sinks. Each task is a plain function
// of a context; the supervisor's job is starting them, collecting
// their errors, and canceling the rest once enough of them have died.
package daemon

import (
	"context"
	"log/slog"
	"sync"
)

// Task is anything the supervisor can run and stop: a listener's Run
// method, a sink's Run method, or a closure wrapping either.
type Task func(ctx context.Context) error

// Handle is the join token for one running task: Wait blocks until
// the task returns and reports its error, if any.
type Handle struct {
	name string
	errc chan error
}

// Wait blocks until the task exits and returns its error.
func (h *Handle) Wait() error {
	return <-h.errc
}

// Name identifies the task this handle belongs to, for logging.
func (h *Handle) Name() string {
	return h.name
}

// Supervisor runs a fixed set of tasks under one cancelable context
// and joins all of them on Shutdown. It does not restart failed
// tasks: a dead listener stays dead until the process is restarted,
// the same as the embedded worker pool it is modeled on.
//
// Tasks started with StartListener are tracked separately: once every
// listener task has exited, the supervisor cancels itself so Done
// unblocks even without an external shutdown signal, and
// ListenersExhausted reports true so the caller can exit non-zero.
type Supervisor struct {
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	handles   []*Handle
	listeners int
	exhausted bool
}

// NewSupervisor creates a Supervisor bound to a context derived from
// parent; canceling that derived context (via Shutdown, or canceling
// parent itself) stops every task.
func NewSupervisor(parent context.Context, logger *slog.Logger) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{logger: logger, ctx: ctx, cancel: cancel}
}

// Start launches task in its own goroutine and returns a Handle for
// it. Tasks should return promptly once the Supervisor's context is
// canceled.
func (s *Supervisor) Start(name string, task Task) *Handle {
	return s.start(name, task, false)
}

// StartListener launches task as a tracked listener. Once every
// listener task started this way has exited, the supervisor cancels
// itself and ListenersExhausted reports true, per the requirement that
// the process not run on with no listener left alive.
func (s *Supervisor) StartListener(name string, task Task) *Handle {
	s.mu.Lock()
	s.listeners++
	s.mu.Unlock()
	return s.start(name, task, true)
}

func (s *Supervisor) start(name string, task Task, isListener bool) *Handle {
	h := &Handle{name: name, errc: make(chan error, 1)}

	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()

	go func() {
		err := task(s.ctx)
		if err != nil {
			s.logger.Error("task exited with error", "task", name, "error", err)
		} else {
			s.logger.Info("task exited", "task", name)
		}
		h.errc <- err

		if isListener {
			s.mu.Lock()
			s.listeners--
			// Only a spontaneous death (no shutdown already in
			// flight) counts as exhaustion; listeners dying because
			// Shutdown canceled the context are an effect, not the
			// cause.
			allDead := s.listeners == 0 && s.ctx.Err() == nil
			if allDead {
				s.exhausted = true
			}
			s.mu.Unlock()
			if allDead {
				s.logger.Error("all listeners have exited, shutting down")
				s.cancel()
			}
		}
	}()

	return h
}

// ListenersExhausted reports whether Done unblocked because every
// listener task registered via StartListener has exited, rather than
// an external shutdown signal or Shutdown being called directly.
func (s *Supervisor) ListenersExhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

// Shutdown cancels every task's context and blocks until all of them
// have returned, returning the first non-nil error encountered.
func (s *Supervisor) Shutdown() error {
	s.cancel()

	s.mu.Lock()
	handles := make([]*Handle, len(s.handles))
	copy(handles, s.handles)
	s.mu.Unlock()

	var first error
	for _, h := range handles {
		if err := h.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Done returns a channel closed when the supervisor's context is
// canceled, whether by Shutdown or by the parent context.
func (s *Supervisor) Done() <-chan struct{} {
	return s.ctx.Done()
}
