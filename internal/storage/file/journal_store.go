package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

// JournalStore appends trade records to a JSONL file, one record per
// line. The file is opened per append so a crashed process never holds
// the journal hostage.
type JournalStore struct {
	path string
}

// NewJournalStore creates a journal store writing to path.
func NewJournalStore(path string) *JournalStore {
	return &JournalStore{path: path}
}

var _ storage.JournalStore = (*JournalStore)(nil)

// Append writes one record to the end of the journal.
func (s *JournalStore) Append(_ context.Context, rec *domain.JournalRecord) error {
	if rec == nil || rec.Type == "" || rec.Slug == "" {
		return storage.ErrInvalidInput
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return f.Sync()
}

// ReadAll returns every journal record in append order. A missing file
// is an empty journal, not an error.
func (s *JournalStore) ReadAll(_ context.Context) ([]*domain.JournalRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal %s: %w", s.path, err)
	}
	defer f.Close()

	var out []*domain.JournalRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec := &domain.JournalRecord{}
		if err := json.Unmarshal(line, rec); err != nil {
			return nil, fmt.Errorf("decode journal line: %w", err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return out, nil
}
