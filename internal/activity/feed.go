// Package activity keeps a bounded feed of notable session events.
package activity

import (
	"sync"
	"sync/atomic"
	"time"
)

// Feed maintains a bounded ring buffer of notices.
type Feed struct {
	mu    sync.RWMutex
	buf   []Notice
	size  int
	start int
	count int

	idGen atomic.Int64
}

// NewFeed creates a Feed with the given capacity.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	f := &Feed{
		buf:  make([]Notice, capacity),
		size: capacity,
	}
	f.idGen.Store(time.Now().UnixNano())
	return f
}

// Append adds n to the feed, overwriting the oldest notice when full.
// ID and Time are set if missing. The stored notice is returned.
func (f *Feed) Append(n Notice) Notice {
	if n.ID == 0 {
		n.ID = f.idGen.Add(1)
	}
	if n.Time.IsZero() {
		n.Time = time.Now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.count < f.size {
		f.buf[(f.start+f.count)%f.size] = n
		f.count++
		return n
	}
	f.buf[f.start] = n
	f.start = (f.start + 1) % f.size
	return n
}

// Latest returns the last n notices, oldest first.
func (f *Feed) Latest(n int) []Notice {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if n <= 0 || f.count == 0 {
		return nil
	}
	if n > f.count {
		n = f.count
	}

	out := make([]Notice, n)
	first := (f.start + (f.count - n)) % f.size
	for i := 0; i < n; i++ {
		out[i] = f.buf[(first+i)%f.size]
	}
	return out
}

// Count returns the number of notices held.
func (f *Feed) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// Clear drops every notice.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.buf)
	f.start, f.count = 0, 0
}
