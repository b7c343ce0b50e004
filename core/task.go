package core

import (
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"
)

// TaskFunc is the body of a task. It runs on the task's own fiber and may
// suspend itself at any point through the TaskContext. The returned value
// and error become the task's terminal result.
type TaskFunc func(tc *TaskContext) (any, error)

// =============================================================================
// Status: Task lifecycle states
// =============================================================================

type Status int32

const (
	// StatusPending: spawned but never resumed yet
	StatusPending Status = iota

	// StatusRunning: body is currently executing
	StatusRunning

	// StatusWaiting: suspended, waiting for its timer or the next tick
	StatusWaiting

	// StatusDone: body returned normally
	StatusDone

	// StatusCancelled: removed by Cancel or CancelAll without finishing
	StatusCancelled

	// StatusError: body returned an error or panicked
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusWaiting:
		return "waiting"
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is one of the final states.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCancelled || s == StatusError
}

// =============================================================================
// Handle: The task surface consumed by callers and the sync layer
// =============================================================================

// Handle is the single task-handle contract shared by the scheduler's own
// tasks and by any custom sync-layer backend. Once Done reports true,
// Result and Err never change again.
type Handle interface {
	// Name returns the task's display name.
	Name() string

	// Status returns the task's current lifecycle state.
	Status() Status

	// Done reports whether the task reached a terminal state.
	Done() bool

	// Result returns the body's return value; nil until Done.
	Result() any

	// Err returns the body's failure (error return, *PanicError, or
	// ErrCancelled); nil until Done, and nil afterwards on success.
	Err() error

	// Cancel marks the task for removal at the next tick boundary.
	// Idempotent. No further body code runs after removal.
	Cancel()

	// Pause suspends scheduling of the task without touching its timer.
	// Idempotent.
	Pause()

	// Resume undoes Pause. The remaining wait time is exactly what it was
	// when the task was paused. Idempotent.
	Resume()

	// Paused reports whether the task is currently paused.
	Paused() bool
}

// =============================================================================
// Task: One suspendable unit of work and its fiber
// =============================================================================

type resumeMode int8

const (
	resumeRun resumeMode = iota
	resumeKill
)

// yieldMsg is what a fiber hands back to the scheduler at a suspension
// point or on completion.
type yieldMsg struct {
	finished bool
	wait     time.Duration
	result   any
	err      error
	panicked bool
	panicVal any
	stack    []byte
}

// killSentinel unwinds a fiber's goroutine when its task is removed
// without resuming.
type killSentinel struct{}

// Task is the scheduler's unit of suspendable work. Each task owns one
// goroutine that runs its body; the scheduler and the body hand control
// back and forth over unbuffered channels, so at any instant at most one
// of them is executing. All fields other than the atomics are owned by
// that single logical thread.
type Task struct {
	id   uint64
	name string
	s    *Scheduler
	tc   *TaskContext

	// wait is the remaining time before the task is due. Zero at spawn,
	// which makes the task due on the very first Advance that sees it.
	wait time.Duration

	// removed marks the task for compaction at the end of an Advance pass.
	removed bool

	resumes   uint64
	spawnedAt time.Time

	cancelled atomic.Bool
	paused    atomic.Bool

	// done publishes result and err: both are written before the store,
	// so any reader observing done==true sees the terminal state.
	done   atomic.Bool
	status atomic.Int32
	result any
	err    error

	resumeCh chan resumeMode
	yieldCh  chan yieldMsg
}

var _ Handle = (*Task)(nil)

// Name returns the task's display name.
func (t *Task) Name() string { return t.name }

// ID returns the task's scheduler-unique identifier.
func (t *Task) ID() uint64 { return t.id }

// Status returns the task's current lifecycle state.
func (t *Task) Status() Status { return Status(t.status.Load()) }

// Done reports whether the task reached a terminal state.
func (t *Task) Done() bool { return t.done.Load() }

// Result returns the body's return value once the task is done.
func (t *Task) Result() any {
	if !t.done.Load() {
		return nil
	}
	return t.result
}

// Err returns the task's failure once the task is done.
func (t *Task) Err() error {
	if !t.done.Load() {
		return nil
	}
	return t.err
}

// Cancel marks the task for removal at the next tick boundary. A cancelled
// task is never resumed again, even if its timer is already due.
func (t *Task) Cancel() {
	t.cancelled.Store(true)
}

// Pause suspends scheduling of the task. Its remaining wait time stops
// decrementing until Resume.
func (t *Task) Pause() {
	if t.done.Load() {
		return
	}
	if t.paused.CompareAndSwap(false, true) {
		t.s.pausedN.Add(1)
	}
}

// Resume undoes Pause, preserving the remaining wait time.
func (t *Task) Resume() {
	if t.paused.CompareAndSwap(true, false) {
		t.s.pausedN.Add(-1)
	}
}

// Paused reports whether the task is currently paused.
func (t *Task) Paused() bool { return t.paused.Load() }

// finish records the terminal state. The done store is last so that
// Result/Err are safe to read from any goroutine once Done is observed.
func (t *Task) finish(st Status, result any, err error) {
	t.result = result
	t.err = err
	t.status.Store(int32(st))
	t.done.Store(true)
}

// main is the fiber's goroutine. It parks until the scheduler's first
// resume, runs the body with panic recovery, and hands the terminal
// yieldMsg back. A kill received while parked means the task was removed
// without ever running; the goroutine just exits.
func (t *Task) main(fn TaskFunc) {
	if mode := <-t.resumeCh; mode == resumeKill {
		return
	}

	m := yieldMsg{finished: true}
	killed := false

	func() {
		defer func() {
			if v := recover(); v != nil {
				if _, ok := v.(killSentinel); ok {
					killed = true
					return
				}
				m.panicked = true
				m.panicVal = v
				m.stack = debug.Stack()
			}
		}()
		m.result, m.err = fn(t.tc)
	}()

	if killed {
		// The scheduler already recorded the terminal state and is not
		// listening on yieldCh.
		return
	}

	t.yieldCh <- m
}

// =============================================================================
// TaskContext: The body-side suspension API
// =============================================================================

// TaskContext is handed to a task's body and provides its suspension
// points. It is only valid while the owning task is the one currently
// resumed by the scheduler; using it from anywhere else is a programming
// error and panics.
type TaskContext struct {
	t *Task
}

// Name returns the owning task's display name.
func (tc *TaskContext) Name() string { return tc.t.name }

// Cancelled reports whether the owning task has a pending cancel request.
// Cancellation only takes effect at the next tick boundary; a long body
// can poll this to return early on its own.
func (tc *TaskContext) Cancelled() bool { return tc.t.cancelled.Load() }

// Spawn registers a sibling task on the owning scheduler. The new task
// becomes eligible starting the next Advance, never during the current one.
func (tc *TaskContext) Spawn(name string, fn TaskFunc) Handle {
	return tc.t.s.Spawn(name, fn)
}

// Sleep suspends the body for d of scheduler time. d <= 0 means "resume on
// the next tick regardless of elapsed time". On return the task has been
// resumed by the scheduler.
//
// Sleep panics if called while the owning task is not the currently
// resumed task: from outside any task, or from a different task's body.
func (tc *TaskContext) Sleep(d time.Duration) {
	t := tc.t
	if t.s.current != t {
		panic("cotick: Sleep called outside the owning task's execution")
	}
	t.yieldCh <- yieldMsg{wait: d}
	if mode := <-t.resumeCh; mode == resumeKill {
		panic(killSentinel{})
	}
}

// Yield suspends the body until the next tick. Equivalent to Sleep(0).
func (tc *TaskContext) Yield() {
	tc.Sleep(0)
}

// resolveTaskName derives a display name from the body's function symbol
// when no explicit name was given.
func resolveTaskName(fn TaskFunc, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if fn == nil {
		return "task"
	}
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "task"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
