package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task body panics
// =============================================================================

// PanicHandler is called when a task body panics during a resume. The
// panic has already been recovered; the scheduler removes the task and
// keeps running, so the handler is purely a reporting hook.
type PanicHandler interface {
	// HandlePanic is called once per panicked task.
	//
	// Parameters:
	// - schedulerName: the name of the scheduler that ran the task
	// - taskName: the display name of the panicked task
	// - panicInfo: the recovered panic value
	// - stackTrace: the stack trace captured at the panic site
	HandlePanic(schedulerName, taskName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler prints panic information to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(schedulerName, taskName string, panicInfo any, stackTrace []byte) {
	fmt.Printf("[%s] Task %q panicked: %v\nStack trace:\n%s",
		schedulerName, taskName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the hooks for collecting scheduler measurements.
// Implementations can forward to monitoring systems (Prometheus, StatsD,
// etc.).
//
// Methods should be non-blocking and fast; they are called from inside the
// tick loop.
type Metrics interface {
	// RecordTickDuration records the wall time one Advance call took.
	RecordTickDuration(schedulerName string, duration time.Duration)

	// RecordTaskFinished records that a task reached a terminal status.
	// lifetime is the time from spawn to removal.
	RecordTaskFinished(schedulerName string, status Status, lifetime time.Duration)

	// RecordTaskPanic records that a task body panicked.
	RecordTaskPanic(schedulerName string, panicInfo any)

	// RecordLiveTasks records the live-task count after a tick.
	RecordLiveTasks(schedulerName string, n int)
}

// NilMetrics is a no-op Metrics implementation, the default when none is
// configured.
type NilMetrics struct{}

// RecordTickDuration is a no-op.
func (m *NilMetrics) RecordTickDuration(schedulerName string, duration time.Duration) {}

// RecordTaskFinished is a no-op.
func (m *NilMetrics) RecordTaskFinished(schedulerName string, status Status, lifetime time.Duration) {
}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(schedulerName string, panicInfo any) {}

// RecordLiveTasks is a no-op.
func (m *NilMetrics) RecordLiveTasks(schedulerName string, n int) {}
