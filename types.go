package cotick

import "github.com/xesdoog/cotick/core"

// Re-export commonly used types from the core package for convenience.
// This allows users to import only the cotick package for most use cases.

// Task is the scheduler's unit of suspendable work.
type Task = core.Task

// TaskFunc is the body signature of a task.
type TaskFunc = core.TaskFunc

// TaskContext provides a body's suspension points.
type TaskContext = core.TaskContext

// Handle is the unified task-handle contract.
type Handle = core.Handle

// Scheduler owns the live task set and advances it per tick.
type Scheduler = core.Scheduler

// Config controls optional scheduler behavior.
type Config = core.Config

// Status is a task lifecycle state.
type Status = core.Status

// SchedulerStats is a counter snapshot for export.
type SchedulerStats = core.SchedulerStats

// TaskRecord is one terminal task in the execution history.
type TaskRecord = core.TaskRecord

// PanicError wraps a panic recovered from a task body.
type PanicError = core.PanicError

// Status constants
const (
	StatusPending   Status = core.StatusPending
	StatusRunning   Status = core.StatusRunning
	StatusWaiting   Status = core.StatusWaiting
	StatusDone      Status = core.StatusDone
	StatusCancelled Status = core.StatusCancelled
	StatusError     Status = core.StatusError
)

// ErrCancelled reports a task removed before its body finished.
var ErrCancelled = core.ErrCancelled

// NewScheduler creates a scheduler with default configuration.
var NewScheduler = core.NewScheduler

// NewSchedulerWithConfig creates a scheduler from a Config.
var NewSchedulerWithConfig = core.NewSchedulerWithConfig

// DefaultConfig returns a Config with all defaults made explicit.
var DefaultConfig = core.DefaultConfig
