package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// fileDocument is the on-disk shape of the leaderboard file.
type fileDocument struct {
	Leaderboard []Entry `json:"leaderboard"`
}

// FileStore keeps the leaderboard in a single JSON document. A mutex
// serializes every read-modify-write so concurrent deaths cannot clobber
// each other, and writes go through a temp file plus rename so a crash
// never leaves a half-written document behind.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries []Entry
}

// NewFileStore opens or creates the leaderboard file at path.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leaderboard %s: %w", path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse leaderboard %s: %w", path, err)
	}
	store.entries = doc.Leaderboard
	sortEntries(store.entries)
	return store, nil
}

// Record implements Store.
func (s *FileStore) Record(ctx context.Context, name string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{Name: name, Score: score, Date: time.Now().UTC()})
	sortEntries(s.entries)
	if len(s.entries) > MaxEntries {
		s.entries = s.entries[:MaxEntries]
	}
	return s.flushLocked()
}

// TopEntries implements Store.
func (s *FileStore) TopEntries(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[:n])
	return out, nil
}

// Close implements Store. The file is flushed on every record, so there is
// nothing left to do.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) flushLocked() error {
	doc := fileDocument{Leaderboard: s.entries}
	if doc.Leaderboard == nil {
		doc.Leaderboard = []Entry{}
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".leaderboard-*")
	if err != nil {
		return fmt.Errorf("create temp leaderboard: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write leaderboard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close leaderboard: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace leaderboard %s: %w", s.path, err)
	}
	return nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
