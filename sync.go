package cotick

import (
	"errors"

	"github.com/xesdoog/cotick/core"
)

// Backend is the minimal scheduler surface the Sync layer needs: a way to
// spawn a task and a way to make one bounded unit of scheduling progress.
// *core.Scheduler satisfies it; callers may substitute any implementation
// meeting the same contract.
type Backend interface {
	// Spawn registers fn as a task and returns its handle. The task must
	// not run before the backend's next unit of progress.
	Spawn(name string, fn core.TaskFunc) core.Handle

	// Step performs at least one bounded unit of scheduling progress.
	Step()
}

// runningReporter is an optional Backend capability. Backends that can
// identify the task currently executing enable Sync.Call's inline mode and
// Sync.Sleep; *core.Scheduler implements it.
type runningReporter interface {
	Running() *core.TaskContext
}

// ErrNilBackend is returned by NewSync for a missing backend.
var ErrNilBackend = errors.New("cotick: Sync requires a non-nil Backend")

// Sync is a blocking-style composition layer over a non-blocking Backend.
// Awaiting never blocks the underlying scheduler: it cedes control only by
// repeatedly invoking Step, which may resume unrelated tasks.
//
// Like the scheduler it drives, Sync is part of the single logical thread:
// call it from the host loop or from task bodies, not from other
// goroutines.
type Sync struct {
	backend Backend
}

// NewSync creates a Sync layer over backend.
func NewSync(backend Backend) (*Sync, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	return &Sync{backend: backend}, nil
}

// Run spawns fn on the backend and returns its handle without waiting.
func (s *Sync) Run(fn core.TaskFunc) core.Handle {
	return s.backend.Spawn("", fn)
}

// RunNamed is Run with an explicit task name.
func (s *Sync) RunNamed(name string, fn core.TaskFunc) core.Handle {
	return s.backend.Spawn(name, fn)
}

// Await polls the backend until h finishes, then returns its result and
// error. A handle that is already finished returns immediately without
// stepping. A body failure (returned error or panic wrapped as
// *core.PanicError) comes back as the error return, so failures are never
// swallowed by the composition layer.
//
// Await never returns while h is unfinished; bounding that is the caller's
// responsibility.
func (s *Sync) Await(h core.Handle) (any, error) {
	if h == nil {
		panic("cotick: Await called with nil handle")
	}
	for !h.Done() {
		s.backend.Step()
	}
	return h.Result(), h.Err()
}

// Call runs fn to completion and returns its result. Inside a running task
// body it executes fn inline with the caller's own context: no spawn, no
// tick elapses, and fn may still suspend through that context. Outside any
// task it spawns fn and awaits it. The dual mode makes Call safe to use on
// both sides of the scheduler without deadlocking.
//
// A backend that cannot report its running task always gets the
// spawn-and-await behavior.
func (s *Sync) Call(fn core.TaskFunc) (any, error) {
	if tc := s.running(); tc != nil {
		return fn(tc)
	}
	return s.Await(s.backend.Spawn("", fn))
}

// Sleep suspends the calling task body for steps ticks. This is a pure
// tick-count yield with no duration semantic, unlike TaskContext.Sleep.
// steps < 1 is treated as 1.
//
// Sleep panics if no task body is running, or if the backend cannot report
// the running task.
func (s *Sync) Sleep(steps int) {
	tc := s.running()
	if tc == nil {
		panic("cotick: Sleep requires a running task")
	}
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		tc.Yield()
	}
}

// Defer spawns a task that yields once before running fn, pushing fn past
// the next tick.
func (s *Sync) Defer(fn core.TaskFunc) core.Handle {
	if fn == nil {
		panic("cotick: Defer called with nil TaskFunc")
	}
	return s.backend.Spawn("deferred", func(tc *core.TaskContext) (any, error) {
		tc.Yield()
		return fn(tc)
	})
}

// All awaits every handle and returns their results in input order,
// regardless of completion order. The first error encountered (awaiting in
// input order) returns immediately; handles not yet awaited are left
// running, not cancelled.
func (s *Sync) All(hs ...core.Handle) ([]any, error) {
	results := make([]any, len(hs))
	for i, h := range hs {
		v, err := s.Await(h)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// Race steps the backend until the first handle finishes, checking all
// handles in input order each pass, and returns that handle's result or
// error. The remaining handles are left running, not cancelled. An already
// finished handle wins without stepping.
func (s *Sync) Race(hs ...core.Handle) (any, error) {
	if len(hs) == 0 {
		panic("cotick: Race called with no handles")
	}
	for {
		for _, h := range hs {
			if h.Done() {
				return h.Result(), h.Err()
			}
		}
		s.backend.Step()
	}
}

func (s *Sync) running() *core.TaskContext {
	if r, ok := s.backend.(runningReporter); ok {
		return r.Running()
	}
	return nil
}
