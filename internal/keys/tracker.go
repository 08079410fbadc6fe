package keys

import (
	"slices"
	"strings"
)

const DefaultDivider = " + "

// State is the normalized state of an input event.
type State uint8

const (
	Up State = iota
	Down
	Hold
	ScrollPulse
)

func (s State) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	case Hold:
		return "hold"
	case ScrollPulse:
		return "scroll"
	default:
		return "unknown"
	}
}

// Options are the display settings applied to a single update. They are
// passed in on every call so a settings change takes effect on the next event.
type Options struct {
	DifferentiateSides bool
	Divider            string
	Ignore             []string
}

func DefaultOptions() Options {
	return Options{DifferentiateSides: true, Divider: DefaultDivider}
}

func (o Options) divider() string {
	if o.Divider == "" {
		return DefaultDivider
	}
	return o.Divider
}

func (o Options) ignored(value string) bool {
	return slices.Contains(o.Ignore, value)
}

// Snapshot is the display state produced by an accepted update.
type Snapshot struct {
	Identifiers []Identifier
	Labels      []Label
	Text        string
}

// Terminal reports whether the snapshot contains a non-modifier key.
func (s Snapshot) Terminal() bool {
	for _, label := range s.Labels {
		if !label.IsModifier() {
			return true
		}
	}
	return false
}

// Tracker is the key combination state machine. It is not safe for
// concurrent use; a single goroutine must drive Update.
type Tracker struct {
	pressed       []Identifier
	scrollPending bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Update applies one normalized event and reports the snapshot to display,
// if any.
//
// Releases and repeats never produce output while other keys are still
// held, so a combination stays on screen while it is released key by key.
func (t *Tracker) Update(id Identifier, state State, opts Options) (Snapshot, bool) {
	switch state {
	case Down, ScrollPulse:
		if !slices.Contains(t.pressed, id) {
			t.pressed = append(t.pressed, id)
		}
		if state == ScrollPulse {
			t.scrollPending = true
		}
	case Up:
		idx := slices.Index(t.pressed, id)
		if idx < 0 {
			return Snapshot{}, false
		}
		t.pressed = slices.Delete(t.pressed, idx, idx+1)
		if len(t.pressed) > 0 {
			return Snapshot{}, false
		}
	case Hold:
		if len(t.pressed) > 0 {
			return Snapshot{}, false
		}
	default:
		return Snapshot{}, false
	}
	if len(t.pressed) == 0 {
		return Snapshot{}, false
	}
	return t.snapshot(opts)
}

func (t *Tracker) snapshot(opts Options) (Snapshot, bool) {
	labels := make([]Label, 0, len(t.pressed))
	last := len(t.pressed) - 1
	for i, id := range t.pressed {
		label := Resolve(id, opts.DifferentiateSides)
		if label.IsModifier() || i == last {
			labels = append(labels, label)
		}
	}
	names := make([]string, len(labels))
	for i, label := range labels {
		if opts.ignored(label.Name) {
			return Snapshot{}, false
		}
		names[i] = label.Name
	}
	text := strings.Join(names, opts.divider())
	if opts.ignored(text) {
		return Snapshot{}, false
	}
	return Snapshot{
		Identifiers: slices.Clone(t.pressed),
		Labels:      labels,
		Text:        text,
	}, true
}

// TakeScrollRelease reports whether a scroll pulse is waiting for its
// synthetic release and clears the flag. Wheels never report a release, so
// the caller must feed one back before processing the next raw event.
func (t *Tracker) TakeScrollRelease() bool {
	pending := t.scrollPending
	t.scrollPending = false
	return pending
}

// Pressed returns the currently held identifiers in press order.
func (t *Tracker) Pressed() []Identifier {
	return slices.Clone(t.pressed)
}

// Reset forgets all held keys, e.g. after the device they came from is gone.
func (t *Tracker) Reset() {
	t.pressed = nil
	t.scrollPending = false
}
