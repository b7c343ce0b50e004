// Package cotick provides a cooperative, single-threaded task scheduler
// driven by an external tick, plus a blocking-style composition layer built
// on top of it.
//
// The scheduler is meant for explicit, update-driven concurrency: a host
// loop (typically a game or simulation loop) calls Advance once per frame,
// and tasks suspend themselves between frames instead of blocking the loop.
//
// # Quick Start
//
// Create a scheduler and spawn a task that sleeps without blocking:
//
//	s := cotick.NewScheduler("game")
//	h := s.Spawn("fade-out", func(tc *cotick.TaskContext) (any, error) {
//		for alpha := 1.0; alpha > 0; alpha -= 0.1 {
//			setAlpha(alpha)
//			tc.Sleep(50 * time.Millisecond)
//		}
//		return nil, nil
//	})
//
//	for !h.Done() {
//		s.Advance(frameTime)
//	}
//
// # Key Concepts
//
// Task: a unit of suspendable work. Each task runs its body on its own
// fiber; the scheduler and the body hand control back and forth, so only
// one of them executes at a time. Tasks are spawned, resumed when due,
// and removed once they finish, fail, or are cancelled.
//
// Tick: one Advance(dt) call. Tasks only become eligible to resume at tick
// boundaries; nothing resumes mid-tick.
//
// Sync layer: Run, Await, Call, Sleep, Defer, All and Race compose tasks
// in a blocking style by polling the scheduler's Step. The layer accepts
// any Backend exposing Spawn and Step, so the default scheduler can be
// swapped out.
//
// # Concurrency Model
//
// Scheduling is strictly single-threaded and cooperative. Drive the
// scheduler and the Sync layer from one goroutine (the host loop); task
// handles (Cancel, Pause, Resume, Done, Result, Err) are safe to use from
// anywhere.
//
// # Observability
//
// Scheduler behavior is observable through the core.Logger, PanicHandler
// and Metrics interfaces configured via core.Config, a bounded
// terminal-task history, and Stats snapshots. The observability/prometheus
// package exports all of it as Prometheus collectors.
package cotick
