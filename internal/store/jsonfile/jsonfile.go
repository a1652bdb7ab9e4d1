package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dochub/internal/model"
	"dochub/internal/store"
)

// Store persists the whole document collection as a single JSON file on
// local disk. The mutex serializes the read-modify-write of Upsert against
// other calls into the same store; the write itself goes to a temp file that
// is renamed over the collection, so readers see either the old collection
// or the new one, never a partial write.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ store.DocumentStore = (*Store)(nil)

// New creates a Store backed by the JSON file at path. Parent directories
// are created if missing; the collection file itself is created lazily on
// the first Upsert.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("collection path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create collection dir: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Upsert replaces the record with a matching id in place, or appends it.
func (s *Store) Upsert(ctx context.Context, rec *model.DocumentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = *rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, *rec)
	}

	return s.write(records)
}

// ListAll returns the full collection in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]model.DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() ([]model.DocumentRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.DocumentRecord{}, nil
		}
		return nil, fmt.Errorf("read collection: %w", err)
	}
	var records []model.DocumentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return records, nil
}

func (s *Store) write(records []model.DocumentRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".documents-*.json")
	if err != nil {
		return fmt.Errorf("create temp collection: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp collection: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace collection: %w", err)
	}
	return nil
}
