// Package alertlog keeps a bounded in-memory history of recent alerts.
package alertlog

import (
	"sync"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// Log is a fixed-capacity alert history. When full, appending evicts the
// oldest entry. Safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	capacity int
	entries  []models.Alert
	start    int // index of the oldest entry
	size     int
}

// New creates a log holding at most capacity alerts
func New(capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{
		capacity: capacity,
		entries:  make([]models.Alert, capacity),
	}
}

// Append records alerts in order, evicting the oldest entries once the
// log is full.
func (l *Log) Append(alerts ...models.Alert) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, alert := range alerts {
		idx := (l.start + l.size) % l.capacity
		l.entries[idx] = alert
		if l.size < l.capacity {
			l.size++
		} else {
			l.start = (l.start + 1) % l.capacity
		}
	}
}

// Recent returns up to n alerts, most recent first. n <= 0 returns all
// retained alerts.
func (l *Log) Recent(n int) []models.Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > l.size {
		n = l.size
	}

	out := make([]models.Alert, 0, n)
	for i := 0; i < n; i++ {
		idx := (l.start + l.size - 1 - i + l.capacity) % l.capacity
		out = append(out, l.entries[idx])
	}
	return out
}

// Len returns the number of retained alerts
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Capacity returns the configured maximum
func (l *Log) Capacity() int {
	return l.capacity
}
