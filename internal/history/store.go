// Package history keeps the most recent valuations in a bounded, newest-first
// list persisted as one JSON array under a fixed key.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/storage"
)

// Key is the storage key the history array lives under.
const Key = "immo-bewertung-history"

// DefaultMaxEntries is the retained entry count when none is configured.
const DefaultMaxEntries = 10

// Store is the sole reader and writer of the persisted history.
type Store struct {
	kv         storage.KV
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	maxEntries int
	mu         sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries sets the retention cap. Values below 1 are ignored.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithClock replaces the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator replaces the entry ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// WithLogger sets the logger used for fail-open reads.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store on top of kv.
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		logger:     slog.Default(),
		now:        time.Now,
		newID:      uuid.NewString,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxEntries returns the retention cap.
func (s *Store) MaxEntries() int {
	return s.maxEntries
}

// Append records a successful valuation and evicts the oldest entries beyond
// the cap. The returned entry is a copy; later changes to req or result do not
// reach the store.
func (s *Store) Append(ctx context.Context, req model.ValuationRequest, result model.ValuationResult) (model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := model.HistoryEntry{
		ID:            s.newID(),
		Timestamp:     s.now().UTC().Truncate(time.Millisecond),
		Address:       req.Address,
		BuildingClass: req.BuildingClass.Label(),
		Results:       result.Clone(),
		InputSnapshot: req.Clone(),
	}

	entries := append([]model.HistoryEntry{entry}, s.load(ctx)...)
	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}

	if err := s.save(ctx, entries, "append"); err != nil {
		return model.HistoryEntry{}, err
	}
	return entry.Clone(), nil
}

// List returns the entries newest first. Unreadable state yields an empty list.
func (s *Store) List(ctx context.Context) []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	out := make([]model.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// Get returns the entry with id or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.load(ctx) {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return model.HistoryEntry{}, fmt.Errorf("history entry %q: %w", id, common.ErrNotFound)
}

// Remove deletes the entry with id. An unknown id is a no-op; callers that
// must report it look the entry up with Get first.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.save(ctx, kept, "remove")
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, Key); err != nil {
		return &common.StorageError{Op: "clear", Key: Key, Err: err}
	}
	return nil
}

func (s *Store) load(ctx context.Context) []model.HistoryEntry {
	data, err := s.kv.Get(ctx, Key)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		common.LogError(s.logger, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err),
			"history unreadable, treating as empty", common.Fields{"key": Key})
		return nil
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		common.LogError(s.logger, fmt.Errorf("%w: %w", common.ErrStorageCorrupted, err),
			"history corrupted, treating as empty", common.Fields{"key": Key, "bytes": len(data)})
		return nil
	}

	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}
	return entries
}

func (s *Store) save(ctx context.Context, entries []model.HistoryEntry, op string) error {
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return &common.StorageError{Op: op, Key: Key, Err: err}
	}
	if err := s.kv.Set(ctx, Key, data); err != nil {
		return &common.StorageError{Op: op, Key: Key, Err: fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)}
	}
	return nil
}
