package display

import (
	"sync"
	"time"
)

// Entry is one rendered message.
type Entry struct {
	Seq        int       // 1-based position in the list
	SessionID  string    // Connection the message arrived on
	ReceivedAt time.Time // Local receive timestamp
	Text       string    // Payload, verbatim
}

// List is the ordered, append-only display list. It is created once and
// shared by every connection; entries are never removed.
type List struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewList creates an empty list.
func NewList() *List {
	return &List{}
}

// Append adds an entry at the end and assigns its sequence number.
func (l *List) Append(e Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.Seq = len(l.entries) + 1
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Snapshot returns a copy of all entries in insertion order.
func (l *List) Snapshot() []Entry {
	return l.Window(0, l.Len())
}

// Window returns a copy of entries [start, end), clamped to the list bounds.
func (l *List) Window(start, end int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if start < 0 {
		start = 0
	}
	if end > len(l.entries) {
		end = len(l.entries)
	}
	if start >= end {
		return nil
	}

	out := make([]Entry, end-start)
	copy(out, l.entries[start:end])
	return out
}
