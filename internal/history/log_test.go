package history

import (
	"fmt"
	"testing"

	"keysonscreen/internal/keys"
)

func snapshotOf(ids ...keys.Identifier) keys.Snapshot {
	tr := keys.NewTracker()
	var snap keys.Snapshot
	for _, id := range ids {
		snap, _ = tr.Update(id, keys.Down, keys.DefaultOptions())
	}
	return snap
}

func TestLogSkipsModifierOnly(t *testing.T) {
	log := NewLog(0)
	if _, ok := log.Append(snapshotOf("KEY_LEFTSHIFT")); ok {
		t.Fatalf("expected modifier-only snapshot to be skipped")
	}
	if _, ok := log.Append(snapshotOf("KEY_LEFTSHIFT", "KEY_A")); !ok {
		t.Fatalf("expected completed combination to be recorded")
	}
	if log.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", log.Len())
	}
	if got := log.Lines(" + ")[0]; got != "Left Shift + A" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestLogNewestFirstAndBounded(t *testing.T) {
	log := NewLog(DefaultCapacity)
	for i := 0; i < 250; i++ {
		log.Append(snapshotOf(keys.Identifier(fmt.Sprintf("KEY_%d", i))))
		if log.Len() > DefaultCapacity {
			t.Fatalf("log exceeded capacity: %d", log.Len())
		}
	}
	entries := log.Entries()
	if len(entries) != DefaultCapacity {
		t.Fatalf("expected %d entries, got %d", DefaultCapacity, len(entries))
	}
	if entries[0].Text("") != "249" {
		t.Fatalf("expected newest entry first, got %q", entries[0].Text(""))
	}
	if entries[DefaultCapacity-1].Text("") != "150" {
		t.Fatalf("unexpected oldest retained entry: %q", entries[DefaultCapacity-1].Text(""))
	}
}

func TestLogCapacityNeverExceedsDefault(t *testing.T) {
	log := NewLog(500)
	for i := 0; i < 300; i++ {
		log.Append(snapshotOf(keys.Identifier(fmt.Sprintf("KEY_%d", i))))
	}
	if log.Len() != DefaultCapacity || log.Capacity() != DefaultCapacity {
		t.Fatalf("expected %d entries, got len=%d capacity=%d", DefaultCapacity, log.Len(), log.Capacity())
	}
}

func TestClampCapacity(t *testing.T) {
	cases := map[int]int{-1: DefaultCapacity, 0: DefaultCapacity, 1: 1, 100: 100, 101: DefaultCapacity}
	for in, want := range cases {
		if got := ClampCapacity(in); got != want {
			t.Fatalf("ClampCapacity(%d): got %d want %d", in, got, want)
		}
	}
}

func TestLogPauseResume(t *testing.T) {
	log := NewLog(10)
	log.Pause()
	if _, ok := log.Append(snapshotOf("KEY_A")); ok {
		t.Fatalf("expected append to be ignored while paused")
	}
	if !log.Paused() || log.Len() != 0 {
		t.Fatalf("unexpected paused state")
	}
	log.Resume()
	if _, ok := log.Append(snapshotOf("KEY_A")); !ok {
		t.Fatalf("expected append after resume")
	}
}

func TestLogRestoreTrimsAndClear(t *testing.T) {
	log := NewLog(2)
	log.Restore([]Entry{
		{Labels: []keys.Label{{Name: "C"}}},
		{Labels: []keys.Label{{Name: "B"}}},
		{Labels: []keys.Label{{Name: "A"}}},
	})
	lines := log.Lines("-")
	if len(lines) != 2 || lines[0] != "C" || lines[1] != "B" {
		t.Fatalf("unexpected restored lines: %v", lines)
	}
	log.Clear()
	if log.Len() != 0 {
		t.Fatalf("expected empty log after clear")
	}
}

func TestLogMergeKeepsNewerEntriesFirst(t *testing.T) {
	log := NewLog(3)
	log.Append(snapshotOf("KEY_X"))
	log.Merge([]Entry{
		{Labels: []keys.Label{{Name: "C"}}},
		{Labels: []keys.Label{{Name: "B"}}},
		{Labels: []keys.Label{{Name: "A"}}},
	})
	if got := log.Lines("-"); len(got) != 3 || got[0] != "X" || got[1] != "C" || got[2] != "B" {
		t.Fatalf("unexpected merged lines: %v", got)
	}
}

func TestEntriesAreCopies(t *testing.T) {
	log := NewLog(5)
	log.Append(snapshotOf("KEY_A"))
	entries := log.Entries()
	entries[0].Labels[0].Name = "mutated"
	entries[0] = Entry{}
	if log.Lines("")[0] != "A" {
		t.Fatalf("log mutated through Entries: %q", log.Lines("")[0])
	}
}
