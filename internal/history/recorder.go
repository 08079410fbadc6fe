package history

import (
	"context"
	"time"

	"keysonscreen/internal/keys"
	"keysonscreen/internal/logging"
)

const storeTimeout = 2 * time.Second

// Store persists history entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Clear(ctx context.Context) error
	Close() error
}

// Recorder feeds snapshots into a Log and persists what the log accepts.
// Store failures are logged; they never stop recording.
type Recorder struct {
	log    *Log
	store  Store
	logger logging.Logger
}

func NewRecorder(log *Log, store Store, logger logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Recorder{log: log, store: store, logger: logger}
}

func (r *Recorder) Observe(snap keys.Snapshot) {
	entry, ok := r.log.Append(snap)
	if !ok || r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.Warn("history_persist_failed", logging.F("error", err))
	}
}

func (r *Recorder) Log() *Log {
	return r.log
}

// Load restores the log from the store.
func Load(ctx context.Context, log *Log, store Store) error {
	if store == nil {
		return nil
	}
	entries, err := store.Recent(ctx, log.Capacity())
	if err != nil {
		return err
	}
	log.Restore(entries)
	return nil
}
