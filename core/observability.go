package core

import "time"

// TaskRecord captures one terminal task for the execution history.
type TaskRecord struct {
	ID         uint64
	Name       string
	Status     Status
	Resumes    uint64
	SpawnedAt  time.Time
	FinishedAt time.Time
}

// Lifetime returns the time from spawn to removal.
func (r TaskRecord) Lifetime() time.Duration {
	return r.FinishedAt.Sub(r.SpawnedAt)
}

// SchedulerStats is a point-in-time snapshot of scheduler counters,
// suitable for periodic export.
type SchedulerStats struct {
	Name      string
	Live      int
	Paused    int
	Spawned   uint64
	Finished  uint64
	Cancelled uint64
	Errored   uint64
	Panicked  uint64
	Resumes   uint64
	Ticks     uint64
}
