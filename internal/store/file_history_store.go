package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"keysonscreen/internal/history"
)

const historyFileVersion = 1

type historyFile struct {
	Version int             `json:"version"`
	Entries []history.Entry `json:"entries"`
}

// FileHistoryStore keeps history as a JSON document, newest first. Every
// write rewrites the whole file.
type FileHistoryStore struct {
	path     string
	capacity int
	mu       sync.Mutex
}

func NewFileHistoryStore(path string, capacity int) *FileHistoryStore {
	capacity = history.ClampCapacity(capacity)
	return &FileHistoryStore{path: path, capacity: capacity}
}

func (s *FileHistoryStore) Append(ctx context.Context, entry history.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	file.Entries = slices.Insert(file.Entries, 0, entry)
	if len(file.Entries) > s.capacity {
		file.Entries = file.Entries[:s.capacity]
	}
	return s.write(file)
}

func (s *FileHistoryStore) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	entries := file.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *FileHistoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(&historyFile{Version: historyFileVersion, Entries: []history.Entry{}})
}

func (s *FileHistoryStore) Backend() string {
	return BackendFile
}

func (s *FileHistoryStore) Close() error {
	return nil
}

// load treats a missing or blank file as an empty history.
func (s *FileHistoryStore) load() (*historyFile, error) {
	file := &historyFile{Version: historyFileVersion}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return file, nil
	}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if file.Version > historyFileVersion {
		return nil, fmt.Errorf("history file %s has unsupported version %d", s.path, file.Version)
	}
	return file, nil
}

// write replaces the history file through a temp file in the same directory.
func (s *FileHistoryStore) write(file *historyFile) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(file); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
