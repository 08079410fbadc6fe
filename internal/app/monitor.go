package app

import (
	"context"

	"keysonscreen/internal/input"
	"keysonscreen/internal/keys"
	"keysonscreen/internal/logging"
)

// Observer receives every snapshot the tracker emits, in emission order.
type Observer interface {
	Observe(snap keys.Snapshot)
}

type ObserverFunc func(snap keys.Snapshot)

func (f ObserverFunc) Observe(snap keys.Snapshot) { f(snap) }

// Monitor is the only writer of its Tracker. It consumes raw events in
// arrival order and dispatches each snapshot to its observers synchronously.
type Monitor struct {
	tracker   *keys.Tracker
	options   func() keys.Options
	observers []Observer
	logger    logging.Logger
}

type MonitorOption func(*Monitor)

func WithMonitorLogger(logger logging.Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithOptions sets the source of tracker options. It is read once per
// event so settings changes apply to the next key.
func WithOptions(fn func() keys.Options) MonitorOption {
	return func(m *Monitor) {
		if fn != nil {
			m.options = fn
		}
	}
}

func WithObserver(o Observer) MonitorOption {
	return func(m *Monitor) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		tracker: keys.NewTracker(),
		options: keys.DefaultOptions,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run consumes events until ctx is done or events is closed.
func (m *Monitor) Run(ctx context.Context, events <-chan input.RawEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.Handle(ev)
		}
	}
}

// Handle feeds one event through the normalizer and tracker. A scroll pulse
// is followed by its synthetic release before Handle returns. A device loss
// resets the tracker so keys held on that device do not stay pressed.
func (m *Monitor) Handle(ev input.RawEvent) {
	if ev.Kind == input.KindDeviceLost {
		m.reset(ev.Device)
		return
	}
	opts := m.options()
	m.apply(ev, opts)
	if m.tracker.TakeScrollRelease() {
		m.apply(input.SyntheticScrollRelease(), opts)
	}
}

func (m *Monitor) apply(ev input.RawEvent, opts keys.Options) {
	id, state, ok := input.Normalize(ev)
	if !ok {
		return
	}
	snap, emitted := m.tracker.Update(id, state, opts)
	if !emitted {
		return
	}
	m.logger.Debug("combination",
		logging.F("text", snap.Text),
		logging.F("state", state),
		logging.F("device", ev.Device),
	)
	for _, o := range m.observers {
		o.Observe(snap)
	}
}

func (m *Monitor) reset(path string) {
	m.tracker.Reset()
	m.logger.Info("tracker_reset", logging.F("path", path))
}
