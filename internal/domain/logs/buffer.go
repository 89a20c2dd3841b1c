package logs

import (
	"sync"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// DefaultCapacity is the per-service entry limit
const DefaultCapacity = 5000

// Buffer is a thread-safe circular buffer of log entries
type Buffer struct {
	mu      sync.RWMutex
	entries []types.LogEntry
	head    int
	size    int
}

// NewBuffer creates a buffer holding at most capacity entries.
// A non-positive capacity selects DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]types.LogEntry, capacity)}
}

// Push appends an entry, evicting the oldest one when full
func (b *Buffer) Push(entry types.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tail := (b.head + b.size) % len(b.entries)
	b.entries[tail] = entry
	if b.size == len(b.entries) {
		b.head = (b.head + 1) % len(b.entries)
		return
	}
	b.size++
}

// Last returns up to n of the most recent entries, oldest first
func (b *Buffer) Last(n int) []types.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.size {
		n = b.size
	}
	if n <= 0 {
		return []types.LogEntry{}
	}

	result := make([]types.LogEntry, n)
	start := b.head + b.size - n
	for i := range result {
		result[i] = b.entries[(start+i)%len(b.entries)]
	}
	return result
}

// All returns every retained entry, oldest first
func (b *Buffer) All() []types.LogEntry {
	return b.Last(b.Cap())
}

// Clear drops all entries
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.entries)
	b.head = 0
	b.size = 0
}

// Len returns the number of retained entries
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the capacity
func (b *Buffer) Cap() int {
	return len(b.entries)
}
