package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestTask_HandleBeforeCompletion tests the pre-terminal handle surface
// Main test items:
// 1. Result and Err are nil until the task is done
// 2. Done stays false across suspensions
func TestTask_HandleBeforeCompletion(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())

	h := s.Spawn("pending", func(tc *TaskContext) (any, error) {
		tc.Yield()
		return "value", nil
	})

	for i := 0; i < 2; i++ {
		if h.Done() || h.Result() != nil || h.Err() != nil {
			t.Fatalf("handle leaked terminal state before completion: done=%v result=%v err=%v",
				h.Done(), h.Result(), h.Err())
		}
		s.Advance(0)
	}

	if !h.Done() || h.Result() != "value" {
		t.Fatalf("done=%v result=%v, want done with \"value\"", h.Done(), h.Result())
	}
}

// TestTask_SleepOutsideTaskPanics tests the usage-error contract
// Main test items:
// 1. Sleep on a context whose task is not currently resumed panics
func TestTask_SleepOutsideTaskPanics(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())

	var leaked *TaskContext
	s.Spawn("leaky", func(tc *TaskContext) (any, error) {
		leaked = tc
		return nil, nil
	})
	s.Advance(0)

	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("Sleep outside a task did not panic")
		}
		if msg, ok := v.(string); !ok || !strings.Contains(msg, "Sleep") {
			t.Fatalf("unexpected panic value: %v", v)
		}
	}()
	leaked.Sleep(time.Second)
}

// TestTask_SleepOnForeignContextFails tests cross-task misuse
// Main test items:
// 1. A body calling Sleep on another task's context fails its own task
// 2. The foreign task is unaffected
func TestTask_SleepOnForeignContextFails(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())

	var foreign *TaskContext
	victim := s.Spawn("victim", func(tc *TaskContext) (any, error) {
		foreign = tc
		tc.Sleep(time.Hour)
		return nil, nil
	})
	s.Advance(0) // park victim, capture its context

	offender := s.Spawn("offender", func(tc *TaskContext) (any, error) {
		foreign.Sleep(time.Second)
		return nil, nil
	})
	s.Advance(0)

	var pe *PanicError
	if !errors.As(offender.Err(), &pe) {
		t.Fatalf("offender.Err() = %v, want *PanicError", offender.Err())
	}
	if victim.Done() {
		t.Fatal("victim was disturbed by foreign Sleep")
	}
}

// TestTask_PauseAfterDoneIsNoOp tests handle calls on terminal tasks
// Main test items:
// 1. Pause/Resume/Cancel after completion do not change terminal state
func TestTask_PauseAfterDoneIsNoOp(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())

	h := s.Spawn("done", func(tc *TaskContext) (any, error) {
		return 7, nil
	})
	s.Advance(0)

	h.Pause()
	h.Cancel()
	h.Resume()
	s.Advance(0)

	if h.Status() != StatusDone || h.Result() != 7 || h.Err() != nil {
		t.Fatalf("terminal state changed: status=%v result=%v err=%v",
			h.Status(), h.Result(), h.Err())
	}
	if h.Paused() {
		t.Fatal("finished task reports paused")
	}
}

// TestTask_NameResolution tests display names
// Main test items:
// 1. Explicit names are kept as-is
// 2. Empty names fall back to the body's function symbol
func TestTask_NameResolution(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())

	named := s.Spawn("explicit", noopBody)
	if named.Name() != "explicit" {
		t.Fatalf("Name() = %q, want explicit", named.Name())
	}

	auto := s.Spawn("", noopBody)
	if !strings.Contains(auto.Name(), "noopBody") {
		t.Fatalf("Name() = %q, want the function symbol", auto.Name())
	}
}

func noopBody(tc *TaskContext) (any, error) { return nil, nil }

// TestTask_StatusString tests status labels
func TestTask_StatusString(t *testing.T) {
	cases := map[Status]string{
		StatusPending:   "pending",
		StatusRunning:   "running",
		StatusWaiting:   "waiting",
		StatusDone:      "done",
		StatusCancelled: "cancelled",
		StatusError:     "error",
		Status(99):      "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", st, got, want)
		}
	}
	if StatusWaiting.Terminal() || !StatusCancelled.Terminal() {
		t.Error("Terminal() misclassified a status")
	}
}

// TestTask_PanicErrorUnwrap tests error wrapping
// Main test items:
// 1. errors.Is sees through PanicError when the panic value is an error
func TestTask_PanicErrorUnwrap(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())
	cause := errors.New("cause")

	h := s.Spawn("panics", func(tc *TaskContext) (any, error) {
		panic(cause)
	})
	s.Advance(0)

	if !errors.Is(h.Err(), cause) {
		t.Fatalf("errors.Is(%v, cause) = false", h.Err())
	}
}
