// Package history persists each user's past questions and answers.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/codexr/internal/domain"
)

var errCorrupt = errors.New("corrupt history file")

// Store keeps one newest-first list of records per user.
type Store interface {
	// Save prepends a record stamped with the current time.
	Save(ctx context.Context, userID string, entry domain.HistoryEntry) error

	// Load returns the user's records, newest first. Users without history
	// get an empty list.
	Load(ctx context.Context, userID string) ([]domain.HistoryRecord, error)

	// Clear removes all of the user's records.
	Clear(ctx context.Context, userID string) error
}

// FileStore stores each user's history as a JSON array in its own file,
// named by a hash of the normalised user identifier.
type FileStore struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &FileStore{
		dir:   dir,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Key returns the file key for a user identifier.
func Key(userID string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(userID))))
	return hex.EncodeToString(sum[:])
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, userID string, entry domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := Key(userID)
	l := s.lock(key)
	l.Lock()
	defer l.Unlock()

	records, err := s.read(key)
	if errors.Is(err, errCorrupt) {
		// Keep the unreadable file for inspection and start a new list.
		aside := filepath.Join(s.dir, fmt.Sprintf("%s.corrupt-%d", key, s.now().UnixNano()))
		slog.Warn("history file unreadable, starting fresh", "key", key, "moved_to", aside, "error", err)
		if err := os.Rename(s.path(key), aside); err != nil {
			return fmt.Errorf("move corrupt history file: %w", err)
		}
		records = []domain.HistoryRecord{}
	} else if err != nil {
		return err
	}
	record := domain.HistoryRecord{
		Query:     entry.Query,
		Answer:    entry.Answer.Normalize(),
		Timestamp: s.now().Unix(),
	}
	records = append([]domain.HistoryRecord{record}, records...)
	return s.write(key, records)
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, userID string) ([]domain.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := Key(userID)
	l := s.lock(key)
	l.Lock()
	defer l.Unlock()

	return s.read(key)
}

// Clear implements Store. Clearing a user without history succeeds.
func (s *FileStore) Clear(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := Key(userID)
	l := s.lock(key)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove history file: %w", err)
	}
	return nil
}

func (s *FileStore) read(key string) ([]domain.HistoryRecord, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.HistoryRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var records []domain.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history file: %w: %w", errCorrupt, err)
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}

func (s *FileStore) write(key string, records []domain.HistoryRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp history file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}

// Recent returns at most limit records. A non-positive limit returns all.
func Recent(records []domain.HistoryRecord, limit int) []domain.HistoryRecord {
	if limit <= 0 || len(records) <= limit {
		return records
	}
	return records[:limit]
}
