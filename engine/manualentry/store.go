package manualentry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bvtime/reconciler/engine/core"
)

// Store is a durable, file-backed list of entries. Every mutation
// serialises the full list back to disk via write-temp-then-rename, so a
// crash mid-write never corrupts the existing file.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the store file, treating a missing file as an empty list.
func (s *Store) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, core.NewError(err, core.KindIOError, map[string]any{"path": s.path})
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, core.NewError(err, core.KindCorruptStore, map[string]any{"path": s.path})
	}
	return entries, nil
}

func (s *Store) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return core.NewError(err, core.KindIOError, nil)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".manualentry-*.tmp")
	if err != nil {
		return core.NewError(err, core.KindIOError, map[string]any{"dir": dir})
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return core.NewError(err, core.KindIOError, map[string]any{"path": tmpPath})
	}
	if err := tmp.Close(); err != nil {
		return core.NewError(err, core.KindIOError, map[string]any{"path": tmpPath})
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return core.NewError(err, core.KindIOError, map[string]any{"from": tmpPath, "to": s.path})
	}
	return nil
}

// Add validates entry, assigns an ID/CreatedAt, appends it, and persists
// the full list.
func (s *Store) Add(entry Entry) (Entry, error) {
	if err := entry.Validate(); err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	entry.ID = core.MustNewID()
	entry.CreatedAt = time.Now().UTC()
	entries = append(entries, entry)

	if err := s.save(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Remove deletes the entry with the given ID, returning a not-found error
// if it isn't present.
func (s *Store) Remove(id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	idx := -1
	for i, e := range entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.NewError(fmt.Errorf("entry %s not found", id), core.KindNotFound, nil)
	}

	entries = append(entries[:idx], entries[idx+1:]...)
	return s.save(entries)
}

// MarkSynced flags the entry with the given ID as synced at `when`.
func (s *Store) MarkSynced(id core.ID, when time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Synced = true
			whenUTC := when.UTC()
			entries[i].SyncedAt = &whenUTC
			found = true
			break
		}
	}
	if !found {
		return core.NewError(fmt.Errorf("entry %s not found", id), core.KindNotFound, nil)
	}
	return s.save(entries)
}

// List returns every entry currently in the store.
func (s *Store) List() ([]Entry, error) {
	return s.Load()
}
