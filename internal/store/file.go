package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// FileStore keeps all records as one JSON array on disk, rewritten on
// every Put via a temp file and rename.
type FileStore struct {
	path string

	mu      sync.Mutex
	records map[domain.SessionKey]domain.Credentials
}

// NewFileStore opens path, reading any existing records. A missing file
// is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		records: make(map[domain.SessionKey]domain.Credentials),
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("module", "store.file").Str("path", path).Msg("no session file, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	var list []domain.Credentials
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse sessions file: %w", err)
	}
	for _, c := range list {
		if c.UniqueID == "" {
			continue
		}
		s.records[c.UniqueID] = c
	}
	log.Info().Str("module", "store.file").Str("path", path).Int("sessions", len(s.records)).Msg("loaded sessions")
	return s, nil
}

func (s *FileStore) Put(_ context.Context, c domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.records[c.UniqueID]
	s.records[c.UniqueID] = c
	if err := s.flush(); err != nil {
		if existed {
			s.records[c.UniqueID] = prev
		} else {
			delete(s.records, c.UniqueID)
		}
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key domain.SessionKey) (domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.records[key]
	if !ok {
		return domain.Credentials{}, ErrNotFound
	}
	return c, nil
}

func (s *FileStore) List(_ context.Context) ([]domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedRecords(s.records), nil
}

func (s *FileStore) Close() error { return nil }

// flush must be called with mu held.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(sortedRecords(s.records), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sessions-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace sessions file: %w", err)
	}
	return nil
}
