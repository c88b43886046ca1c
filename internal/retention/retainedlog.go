// Package retention provides a bounded, append-mostly log that keeps a
// designated sentinel entry forever plus a sliding window of the most
// recent entries. The ledger instantiates it twice: once for daily price
// snapshots and once for transactions.
package retention

import "time"

// SentinelFunc selects the index of the entry that eviction must never
// remove. It receives the entries in ascending time order and returns -1
// when no entry qualifies, in which case the earliest entry is pinned.
type SentinelFunc[T any] func(entries []T) int

// RetainedLog is an ordered log bounded by maxSize. Entries are kept in
// ascending time order. After any mutation the log holds at most maxSize
// entries: the sentinel plus the most recent maxSize-1.
//
// RetainedLog is not safe for concurrent use; the owning ledger serializes
// access under its own lock.
type RetainedLog[T any] struct {
	entries  []T
	maxSize  int
	timeOf   func(T) time.Time
	sentinel SentinelFunc[T]
}

// New creates a log bounded by maxSize whose sentinel is the earliest
// entry. timeOf extracts the ordering timestamp from an entry.
func New[T any](maxSize int, timeOf func(T) time.Time) *RetainedLog[T] {
	return NewWithSentinel(maxSize, timeOf, nil)
}

// NewWithSentinel creates a log whose eviction pins the entry chosen by
// sentinel instead of strictly the earliest one. The transaction log uses
// this to pin the initial-kind record that founded the holding period.
func NewWithSentinel[T any](maxSize int, timeOf func(T) time.Time, sentinel SentinelFunc[T]) *RetainedLog[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &RetainedLog[T]{
		maxSize:  maxSize,
		timeOf:   timeOf,
		sentinel: sentinel,
	}
}

// Len returns the number of retained entries.
func (l *RetainedLog[T]) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all retained entries in ascending time order.
func (l *RetainedLog[T]) Entries() []T {
	out := make([]T, len(l.entries))
	copy(out, l.entries)
	return out
}

// Latest returns the most recent entry, if any.
func (l *RetainedLog[T]) Latest() (T, bool) {
	if len(l.entries) == 0 {
		var zero T
		return zero, false
	}
	return l.entries[len(l.entries)-1], true
}

// Append inserts the entry in time order and evicts if the log grew past
// its bound. Entries with equal timestamps keep insertion order.
func (l *RetainedLog[T]) Append(entry T) {
	at := l.timeOf(entry)
	i := len(l.entries)
	for i > 0 && l.timeOf(l.entries[i-1]).After(at) {
		i--
	}
	l.entries = append(l.entries, entry)
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = entry
	l.Evict()
}

// UpsertForKey replaces the entry matched by key in place, or appends the
// entry when no match exists. It reports whether an existing entry was
// replaced. The snapshot log uses this to enforce one snapshot per day.
func (l *RetainedLog[T]) UpsertForKey(key func(T) bool, entry T) bool {
	for i := range l.entries {
		if key(l.entries[i]) {
			l.entries[i] = entry
			return true
		}
	}
	l.Append(entry)
	return false
}

// Evict prunes the log back to its bound: the sentinel entry is kept, the
// most recent maxSize-1 entries are kept, and everything between them is
// deleted. Eviction never fails and is a no-op while the log is within
// bounds.
func (l *RetainedLog[T]) Evict() {
	if len(l.entries) <= l.maxSize {
		return
	}

	sentinelIdx := 0
	if l.sentinel != nil {
		if i := l.sentinel(l.entries); i >= 0 && i < len(l.entries) {
			sentinelIdx = i
		}
	}

	recentStart := len(l.entries) - (l.maxSize - 1)
	kept := make([]T, 0, l.maxSize)
	if sentinelIdx < recentStart {
		kept = append(kept, l.entries[sentinelIdx])
	}
	kept = append(kept, l.entries[recentStart:]...)
	l.entries = kept
}

// Clone returns an independent copy of the log. The ledger stages a
// mutation on a clone, persists it, and only then swaps it in, so a failed
// commit leaves the live log untouched.
func (l *RetainedLog[T]) Clone() *RetainedLog[T] {
	entries := make([]T, len(l.entries))
	copy(entries, l.entries)
	return &RetainedLog[T]{
		entries:  entries,
		maxSize:  l.maxSize,
		timeOf:   l.timeOf,
		sentinel: l.sentinel,
	}
}

// Query returns all entries matching the predicate, in time order.
func (l *RetainedLog[T]) Query(match func(T) bool) []T {
	var out []T
	for _, e := range l.entries {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

// QueryRange returns all entries with timestamps in [start, end], in time
// order. Neither bound mutates the log.
func (l *RetainedLog[T]) QueryRange(start, end time.Time) []T {
	var out []T
	for _, e := range l.entries {
		at := l.timeOf(e)
		if at.Before(start) || at.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Reset replaces the log contents with entries restored from persistence.
// The caller provides them in ascending time order; eviction re-applies
// the bound in case the stored log predates a smaller maxSize.
func (l *RetainedLog[T]) Reset(entries []T) {
	l.entries = make([]T, len(entries))
	copy(l.entries, entries)
	l.Evict()
}
