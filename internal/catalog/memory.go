package catalog

import (
	"context"
	"sync"
)

// CallLog reads recorded calls, most recent first.
type CallLog interface {
	ReadCalls(ctx context.Context, limit int) ([]CallRecord, error)
}

// MemoryLog keeps the most recent calls in memory. It is both a Recorder
// and a CallLog, for hosts that run without a store.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryLog struct {
	mu      sync.Mutex
	records []CallRecord
	size    int
}

// NewMemoryLog keeps at most size records. size <= 0 means 100.
func NewMemoryLog(size int) *MemoryLog {
	if size <= 0 {
		size = 100
	}
	return &MemoryLog{size: size}
}

// RecordCall implements Recorder.
func (m *MemoryLog) RecordCall(_ context.Context, rec CallRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if over := len(m.records) - m.size; over > 0 {
		m.records = append([]CallRecord(nil), m.records[over:]...)
	}
	return nil
}

// ReadCalls implements CallLog. limit <= 0 returns everything kept.
func (m *MemoryLog) ReadCalls(_ context.Context, limit int) ([]CallRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]CallRecord, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}
