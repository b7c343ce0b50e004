package core

import (
	"sync/atomic"
	"time"
)

const defaultStepSize = time.Second / 60

// Config controls optional scheduler behavior. Zero-value fields fall back
// to defaults in NewScheduler.
type Config struct {
	// Logger receives diagnostics (task failures, clamped ticks).
	Logger Logger

	// PanicHandler is invoked when a task body panics.
	PanicHandler PanicHandler

	// Metrics receives tick and task lifecycle measurements.
	Metrics Metrics

	// StepSize is the time slice applied by Step. Defaults to one
	// 60fps frame.
	StepSize time.Duration

	// HistorySize bounds the terminal-task record ring. 0 uses the
	// default capacity; negative disables recording.
	HistorySize int
}

// DefaultConfig returns a Config with all defaults made explicit.
func DefaultConfig() *Config {
	return &Config{
		Logger:       NewDefaultLogger(),
		PanicHandler: &DefaultPanicHandler{},
		Metrics:      &NilMetrics{},
		StepSize:     defaultStepSize,
		HistorySize:  defaultHistoryCapacity,
	}
}

// Scheduler owns a set of live tasks and advances them once per external
// tick. It is the sole authority over when a task resumes.
//
// The scheduling model is strictly single-threaded and cooperative: Advance
// resumes due tasks one at a time, and a resumed body runs until it
// suspends itself or finishes. Advance, Step, Spawn and CancelAll must be
// called from the host loop's goroutine (or from a running task body, for
// Spawn and CancelAll); task handles are safe to use from anywhere.
type Scheduler struct {
	name   string
	tasks  []*Task
	nextID uint64

	// current is the task whose body is executing right now, nil between
	// resumes. It doubles as the reentrancy guard for Advance.
	current   *Task
	advancing bool

	stepSize time.Duration

	logger  Logger
	panicH  PanicHandler
	metrics Metrics
	history *executionHistory

	// Counters feeding Stats; atomic so snapshots are safe from any
	// goroutine (e.g. a metrics poller).
	liveN     atomic.Int64
	pausedN   atomic.Int64
	spawned   atomic.Uint64
	finished  atomic.Uint64
	cancelled atomic.Uint64
	errored   atomic.Uint64
	panicked  atomic.Uint64
	resumes   atomic.Uint64
	ticks     atomic.Uint64
}

// NewScheduler creates a scheduler with default configuration.
func NewScheduler(name string) *Scheduler {
	return NewSchedulerWithConfig(name, nil)
}

// NewSchedulerWithConfig creates a scheduler using config; nil fields fall
// back to defaults.
func NewSchedulerWithConfig(name string, config *Config) *Scheduler {
	if name == "" {
		name = "scheduler"
	}
	s := &Scheduler{
		name:     name,
		stepSize: defaultStepSize,
	}

	historySize := 0
	if config != nil {
		s.logger = config.Logger
		s.panicH = config.PanicHandler
		s.metrics = config.Metrics
		if config.StepSize > 0 {
			s.stepSize = config.StepSize
		}
		historySize = config.HistorySize
	}

	if s.logger == nil {
		s.logger = NewDefaultLogger()
	}
	if s.panicH == nil {
		s.panicH = &DefaultPanicHandler{}
	}
	if s.metrics == nil {
		s.metrics = &NilMetrics{}
	}
	s.history = newExecutionHistory(historySize)

	return s
}

// Name returns the scheduler's name, used in logs and metric labels.
func (s *Scheduler) Name() string { return s.name }

// StepSize returns the time slice applied by Step.
func (s *Scheduler) StepSize() time.Duration { return s.stepSize }

// Len returns the number of live tasks.
func (s *Scheduler) Len() int { return int(s.liveN.Load()) }

// Spawn registers a task whose fiber runs fn and returns its handle. The
// task is live immediately but does not run until the next Advance; a task
// spawned during an Advance pass is not visited in that same pass.
//
// An empty name is resolved from fn's function symbol.
func (s *Scheduler) Spawn(name string, fn TaskFunc) Handle {
	if fn == nil {
		panic("cotick: Spawn called with nil TaskFunc")
	}

	s.nextID++
	t := &Task{
		id:        s.nextID,
		name:      resolveTaskName(fn, name),
		s:         s,
		spawnedAt: time.Now(),
		resumeCh:  make(chan resumeMode),
		yieldCh:   make(chan yieldMsg),
	}
	t.tc = &TaskContext{t: t}

	go t.main(fn)

	s.tasks = append(s.tasks, t)
	s.liveN.Add(1)
	s.spawned.Add(1)
	return t
}

// Advance drives the scheduler by dt of elapsed time. For each task live at
// the start of the call: a cancelled task is removed without resuming, a
// paused task is skipped untouched, and otherwise the task's wait is
// decremented by dt and the task is resumed once it is due. A body that
// suspends again stays live with its new wait; a body that returns or
// fails is removed.
//
// Any task may cancel itself or any other task mid-pass; removal is
// deferred to a compaction step so every task is visited at most once.
//
// Advance panics if called from inside a running task body; that would
// deadlock the resume handoff. Negative dt is clamped to zero.
func (s *Scheduler) Advance(dt time.Duration) {
	if s.advancing || s.current != nil {
		panic("cotick: Advance called reentrantly from a task body")
	}
	if dt < 0 {
		s.logger.Warn("negative tick duration clamped to zero",
			F("scheduler", s.name), F("dt", dt))
		dt = 0
	}

	start := time.Now()
	s.advancing = true

	// Snapshot the bound: tasks appended mid-pass wait for the next tick.
	n := len(s.tasks)
	for i := 0; i < n; i++ {
		t := s.tasks[i]
		if t.removed {
			continue
		}
		if t.cancelled.Load() {
			s.remove(t, StatusCancelled, nil, ErrCancelled, true)
			continue
		}
		if t.paused.Load() {
			continue
		}
		t.wait -= dt
		if t.wait > 0 {
			continue
		}

		m := s.resume(t)
		switch {
		case m.panicked:
			err := &PanicError{Value: m.panicVal, Stack: m.stack}
			s.panicH.HandlePanic(s.name, t.name, m.panicVal, m.stack)
			s.metrics.RecordTaskPanic(s.name, m.panicVal)
			s.panicked.Add(1)
			s.remove(t, StatusError, nil, err, false)
		case m.finished && m.err != nil:
			s.logger.Error("task failed",
				F("scheduler", s.name), F("task", t.name), F("err", m.err))
			s.errored.Add(1)
			s.remove(t, StatusError, nil, m.err, false)
		case m.finished:
			s.remove(t, StatusDone, m.result, nil, false)
		default:
			t.wait = m.wait
			t.status.Store(int32(StatusWaiting))
		}
	}

	s.compact()
	s.advancing = false

	s.ticks.Add(1)
	s.metrics.RecordTickDuration(s.name, time.Since(start))
	s.metrics.RecordLiveTasks(s.name, len(s.tasks))
}

// Step advances the scheduler by one configured time slice. This is the
// unit of progress the sync layer polls on.
func (s *Scheduler) Step() {
	s.Advance(s.stepSize)
}

// CancelAll removes every live task without resuming any of them. When
// called from inside a task body, removal of the tasks (including the
// calling one) is deferred to the next tick boundary.
func (s *Scheduler) CancelAll() {
	if s.advancing {
		for _, t := range s.tasks {
			t.cancelled.Store(true)
		}
		return
	}

	for _, t := range s.tasks {
		s.remove(t, StatusCancelled, nil, ErrCancelled, true)
	}
	s.compact()
}

// Running returns the context of the task currently being resumed, or nil.
// Because the model is single-threaded, a non-nil return means the caller
// is executing inside that task's body.
func (s *Scheduler) Running() *TaskContext {
	if s.current != nil {
		return s.current.tc
	}
	return nil
}

// resume hands control to t's fiber and blocks until it suspends or
// finishes.
func (s *Scheduler) resume(t *Task) yieldMsg {
	s.current = t
	t.status.Store(int32(StatusRunning))
	t.resumes++
	s.resumes.Add(1)

	t.resumeCh <- resumeRun
	m := <-t.yieldCh

	s.current = nil
	return m
}

// remove records t's terminal state and marks it for compaction. With
// unwind set, the parked fiber goroutine is told to exit; that is only
// legal for tasks that are not finished, whose goroutine is guaranteed to
// be parked on its resume channel.
func (s *Scheduler) remove(t *Task, st Status, result any, err error, unwind bool) {
	t.finish(st, result, err)
	if unwind {
		t.resumeCh <- resumeKill
	}

	t.removed = true
	s.liveN.Add(-1)
	if t.paused.Load() {
		s.pausedN.Add(-1)
	}

	switch st {
	case StatusDone:
		s.finished.Add(1)
	case StatusCancelled:
		s.cancelled.Add(1)
	}

	s.history.Add(TaskRecord{
		ID:         t.id,
		Name:       t.name,
		Status:     st,
		Resumes:    t.resumes,
		SpawnedAt:  t.spawnedAt,
		FinishedAt: time.Now(),
	})
	s.metrics.RecordTaskFinished(s.name, st, time.Since(t.spawnedAt))
}

// compact drops removed tasks from the live slice, preserving order.
func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.removed {
			live = append(live, t)
		}
	}
	// Release references past the new end.
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}

// Stats returns a snapshot of scheduler counters. Safe to call from any
// goroutine.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Name:      s.name,
		Live:      int(s.liveN.Load()),
		Paused:    int(s.pausedN.Load()),
		Spawned:   s.spawned.Load(),
		Finished:  s.finished.Load(),
		Cancelled: s.cancelled.Load(),
		Errored:   s.errored.Load(),
		Panicked:  s.panicked.Load(),
		Resumes:   s.resumes.Load(),
		Ticks:     s.ticks.Load(),
	}
}

// Recent returns up to limit of the most recent terminal-task records,
// newest first. limit <= 0 returns all recorded entries.
func (s *Scheduler) Recent(limit int) []TaskRecord {
	return s.history.Recent(limit)
}

// Last returns the most recent terminal-task record, if any.
func (s *Scheduler) Last() (TaskRecord, bool) {
	return s.history.Last()
}
