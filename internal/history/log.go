package history

import (
	"slices"
	"strings"
	"time"

	"keysonscreen/internal/keys"
)

// DefaultCapacity is also the upper bound: a log never holds more entries.
const DefaultCapacity = 100

// ClampCapacity maps a configured capacity into (0, DefaultCapacity].
func ClampCapacity(capacity int) int {
	if capacity <= 0 || capacity > DefaultCapacity {
		return DefaultCapacity
	}
	return capacity
}

// Entry is one recorded key combination.
type Entry struct {
	Labels []keys.Label `json:"labels"`
	At     time.Time    `json:"at"`
}

func (e Entry) Text(divider string) string {
	if divider == "" {
		divider = keys.DefaultDivider
	}
	names := make([]string, len(e.Labels))
	for i, label := range e.Labels {
		names[i] = label.Name
	}
	return strings.Join(names, divider)
}

// Log keeps the most recent combinations, newest first. Like the Tracker it
// has a single owner and no locking.
type Log struct {
	entries  []Entry
	capacity int
	paused   bool
	now      func() time.Time
}

func NewLog(capacity int) *Log {
	return &Log{capacity: ClampCapacity(capacity), now: time.Now}
}

// Append records a snapshot and returns the stored entry. Modifier-only
// snapshots are skipped until a key completes the combination.
func (l *Log) Append(snap keys.Snapshot) (Entry, bool) {
	if l.paused || !snap.Terminal() {
		return Entry{}, false
	}
	entry := Entry{Labels: slices.Clone(snap.Labels), At: l.now()}
	l.entries = slices.Insert(l.entries, 0, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	return entry, true
}

// Restore seeds the log with entries ordered newest first.
func (l *Log) Restore(entries []Entry) {
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	l.entries = slices.Clone(entries)
}

// Merge appends older entries, ordered newest first, after the entries the
// log already holds.
func (l *Log) Merge(older []Entry) {
	merged := append(slices.Clone(l.entries), older...)
	if len(merged) > l.capacity {
		merged = merged[:l.capacity]
	}
	l.entries = merged
}

func (l *Log) Pause()  { l.paused = true }
func (l *Log) Resume() { l.paused = false }

func (l *Log) Paused() bool {
	return l.paused
}

func (l *Log) Clear() {
	l.entries = nil
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) Capacity() int {
	return l.capacity
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, entry := range l.entries {
		out[i] = Entry{Labels: slices.Clone(entry.Labels), At: entry.At}
	}
	return out
}

// Lines renders each entry joined with divider.
func (l *Log) Lines(divider string) []string {
	lines := make([]string, len(l.entries))
	for i, entry := range l.entries {
		lines[i] = entry.Text(divider)
	}
	return lines
}
