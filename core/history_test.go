package core

import (
	"testing"
	"time"
)

// TestHistory_RecordsTerminalTasks tests the execution history ring
// Main test items:
// 1. Each removal appends a record with the terminal status
// 2. Recent returns newest first; Last returns the newest
func TestHistory_RecordsTerminalTasks(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())

	s.Spawn("first", func(tc *TaskContext) (any, error) { return nil, nil })
	s.Advance(0)
	doomed := s.Spawn("second", func(tc *TaskContext) (any, error) {
		tc.Sleep(time.Hour)
		return nil, nil
	})
	s.Advance(0)
	doomed.Cancel()
	s.Advance(0)

	records := s.Recent(0)
	if len(records) != 2 {
		t.Fatalf("Recent(0) returned %d records, want 2", len(records))
	}
	if records[0].Name != "second" || records[0].Status != StatusCancelled {
		t.Fatalf("newest record = %q/%v, want second/cancelled", records[0].Name, records[0].Status)
	}
	if records[1].Name != "first" || records[1].Status != StatusDone {
		t.Fatalf("oldest record = %q/%v, want first/done", records[1].Name, records[1].Status)
	}

	last, ok := s.Last()
	if !ok || last.Name != "second" {
		t.Fatalf("Last() = %+v/%v, want the second task", last, ok)
	}
	if last.FinishedAt.Before(last.SpawnedAt) {
		t.Fatal("record finished before it spawned")
	}
}

// TestHistory_CapacityWrapsAround tests the ring bound
// Main test items:
// 1. Only the newest HistorySize records are retained
// 2. A negative HistorySize disables recording
func TestHistory_CapacityWrapsAround(t *testing.T) {
	cfg := quietConfig()
	cfg.HistorySize = 2
	s := NewSchedulerWithConfig("test", cfg)

	for _, name := range []string{"a", "b", "c"} {
		s.Spawn(name, func(tc *TaskContext) (any, error) { return nil, nil })
		s.Advance(0)
	}

	records := s.Recent(0)
	if len(records) != 2 {
		t.Fatalf("retained %d records, want 2", len(records))
	}
	if records[0].Name != "c" || records[1].Name != "b" {
		t.Fatalf("retained %q/%q, want c/b", records[0].Name, records[1].Name)
	}

	cfg2 := quietConfig()
	cfg2.HistorySize = -1
	s2 := NewSchedulerWithConfig("test", cfg2)
	s2.Spawn("a", func(tc *TaskContext) (any, error) { return nil, nil })
	s2.Advance(0)
	if got := s2.Recent(0); got != nil {
		t.Fatalf("disabled history returned %d records", len(got))
	}
	if _, ok := s2.Last(); ok {
		t.Fatal("disabled history returned a Last record")
	}
}

// TestHistory_RecentLimit tests the limit parameter
func TestHistory_RecentLimit(t *testing.T) {
	s := NewSchedulerWithConfig("test", quietConfig())

	for _, name := range []string{"a", "b", "c"} {
		s.Spawn(name, func(tc *TaskContext) (any, error) { return nil, nil })
	}
	s.Advance(0)

	records := s.Recent(2)
	if len(records) != 2 {
		t.Fatalf("Recent(2) returned %d records", len(records))
	}
	if records[0].Name != "c" || records[1].Name != "b" {
		t.Fatalf("Recent(2) = %q/%q, want c/b", records[0].Name, records[1].Name)
	}
}
