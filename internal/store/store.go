package store

import (
	"errors"
	"fmt"
	"strings"

	"keysonscreen/internal/history"
)

const (
	BackendFile  = "file"
	BackendBbolt = "bbolt"
)

var ErrUnknownBackend = errors.New("unknown history backend")

// HistoryStore is a history.Store that also reports its backend.
type HistoryStore interface {
	history.Store
	Backend() string
}

// Open returns the history store for backend rooted at path. Stores keep at
// most capacity entries.
func Open(backend, path string, capacity int) (HistoryStore, error) {
	capacity = history.ClampCapacity(capacity)
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendBbolt:
		return NewBboltHistoryStore(path, capacity)
	case BackendFile:
		return NewFileHistoryStore(path, capacity), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
