package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// MaxEntries caps the number of remembered queries per account.
const MaxEntries = 5

// Service persists recent search queries per account. Each list is
// deduplicated (exact, case-sensitive), ordered most-recent-first and
// capped at MaxEntries.
type Service struct {
	mu      sync.RWMutex
	path    string
	entries map[string][]string
}

// NewService creates a search-history service storing data inside the
// provided directory. A corrupt history file is discarded and treated
// as empty, never surfaced as an error.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	svc := &Service{
		path:    filepath.Join(storageDir, "searchhistory.json"),
		entries: make(map[string][]string),
	}

	svc.load()

	return svc, nil
}

// List returns the recent queries for the account, most recent first.
func (s *Service) List(accountID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.entries[accountID]
	out := make([]string, len(stored))
	copy(out, stored)
	return out
}

// Record prepends the query to the account's history, removing any
// existing occurrence and evicting the oldest entry beyond MaxEntries.
// Blank queries are ignored.
func (s *Service) Record(accountID, query string) error {
	query = strings.TrimSpace(query)
	if query == "" || accountID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.entries[accountID]
	updated := make([]string, 0, len(current)+1)
	updated = append(updated, query)
	for _, q := range current {
		if q != query {
			updated = append(updated, q)
		}
	}
	if len(updated) > MaxEntries {
		updated = updated[:MaxEntries]
	}
	s.entries[accountID] = updated

	return s.saveLocked()
}

// Clear removes the account's entire history.
func (s *Service) Clear(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[accountID]; !ok {
		return nil
	}
	delete(s.entries, accountID)
	return s.saveLocked()
}

// load reads the history file once at startup. Unparseable content is
// dropped: search history is a convenience, not data worth failing over.
func (s *Service) load() {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		log.Printf("[history] failed to open %s: %v", s.path, err)
		return
	}
	defer file.Close()

	var stored map[string][]string
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		log.Printf("[history] discarding corrupt history file: %v", err)
		return
	}

	for accountID, queries := range stored {
		cleaned := make([]string, 0, MaxEntries)
		seen := make(map[string]bool, len(queries))
		for _, q := range queries {
			q = strings.TrimSpace(q)
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			cleaned = append(cleaned, q)
			if len(cleaned) == MaxEntries {
				break
			}
		}
		if len(cleaned) > 0 {
			s.entries[accountID] = cleaned
		}
	}
}

// saveLocked writes the history file. Must be called with mu held.
func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create history temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.entries); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode history: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close history temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}

	return nil
}
