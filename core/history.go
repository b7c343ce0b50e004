package core

import "sync"

const defaultHistoryCapacity = 100

// executionHistory is a fixed-capacity ring of terminal-task records.
// Writes happen on the scheduler's logical thread; reads may come from
// anywhere (dashboards, tests), hence the mutex.
type executionHistory struct {
	mu    sync.Mutex
	items []TaskRecord
	head  int
	count int
}

func newExecutionHistory(capacity int) *executionHistory {
	switch {
	case capacity < 0:
		return &executionHistory{} // recording disabled
	case capacity == 0:
		capacity = defaultHistoryCapacity
	}
	return &executionHistory{items: make([]TaskRecord, capacity)}
}

func (h *executionHistory) Add(record TaskRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 {
		return
	}

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first.
func (h *executionHistory) Recent(limit int) []TaskRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}
	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]TaskRecord, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *executionHistory) Last() (TaskRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return TaskRecord{}, false
	}
	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}
