// Package gatewaylog keeps the most recent backend gateway calls for
// inspection on the dashboard's diagnostics endpoint.
package gatewaylog

import (
	"sync"
	"time"
)

// Call describes one request made to the X-Ray backend.
type Call struct {
	Time       time.Time     `json:"time"`
	Operation  string        `json:"operation"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	Status     int           `json:"status,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Executions int           `json:"executions,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Failed reports whether the call ended in a transport or HTTP error.
func (c Call) Failed() bool { return c.Error != "" }

// Log is a concurrent-safe fixed-size ring of calls. The oldest call is
// overwritten once the ring is full.
type Log struct {
	mu    sync.RWMutex
	calls []Call
	next  int
	count int
}

// New creates a log that remembers up to size calls.
func New(size int) *Log {
	if size <= 0 {
		size = 100
	}
	return &Log{calls: make([]Call, size)}
}

// Record appends c.
func (l *Log) Record(c Call) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[l.next] = c
	l.next = (l.next + 1) % len(l.calls)
	if l.count < len(l.calls) {
		l.count++
	}
}

// Last returns up to n of the most recent calls, oldest first.
func (l *Log) Last(n int) []Call {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n = min(n, l.count)
	if n <= 0 {
		return nil
	}
	size := len(l.calls)
	out := make([]Call, n)
	start := (l.next - n + size) % size
	for i := range n {
		out[i] = l.calls[(start+i)%size]
	}
	return out
}

// Len returns the number of calls held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Failures counts the failed calls currently held.
func (l *Log) Failures() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := len(l.calls)
	failed := 0
	for i := range l.count {
		if l.calls[(l.next-1-i+size)%size].Failed() {
			failed++
		}
	}
	return failed
}
