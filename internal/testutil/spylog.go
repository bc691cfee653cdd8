package testutil

import (
	"sync"
)

// LogCall is one call recorded by a SpyLog.
type LogCall struct {
	Level string // "debug", "info", "warn" or "error"
	Msg   string
	Args  []any
}

// SpyLog records every call made through the logging capability.
// It satisfies proclog.Log.
//
// Thread-safety: SpyLog is safe for concurrent use via internal mutex.
type SpyLog struct {
	mu    sync.Mutex
	calls []LogCall
}

// NewSpyLog creates an empty SpyLog.
func NewSpyLog() *SpyLog {
	return &SpyLog{}
}

func (s *SpyLog) Debug(msg string, args ...any) { s.record("debug", msg, args) }
func (s *SpyLog) Info(msg string, args ...any)  { s.record("info", msg, args) }
func (s *SpyLog) Warn(msg string, args ...any)  { s.record("warn", msg, args) }
func (s *SpyLog) Error(msg string, args ...any) { s.record("error", msg, args) }

func (s *SpyLog) record(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, LogCall{Level: level, Msg: msg, Args: append([]any(nil), args...)})
}

// Calls returns a copy of the recorded calls in order.
func (s *SpyLog) Calls() []LogCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogCall(nil), s.calls...)
}

// Reset forgets all recorded calls.
func (s *SpyLog) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
