package itinerary

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/csheth/tripnotes/internal/ids"
	"github.com/csheth/tripnotes/internal/store"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Store keeps saved itineraries. Nothing is written until Save.
type Store struct {
	mu      sync.Mutex
	backend store.Backend
	logger  *slog.Logger
	clock   func() time.Time

	items []Itinerary
}

func Open(backend store.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := store.LoadJSON(backend, store.KeyItineraries, &s.items); err != nil {
		return nil, fmt.Errorf("open itineraries: %w", err)
	}
	return s, nil
}

// List returns saved itineraries, most recently updated first.
func (s *Store) List() []Itinerary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Itinerary, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *Store) Get(id string) (Itinerary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.items[idx].clone(), true
	}
	return Itinerary{}, false
}

// New starts a draft with a freshly allocated id and one empty day. The
// draft is not stored until Save.
func (s *Store) New() Draft {
	d := Draft{ID: ids.New("itinerary")}
	d.AddDay()
	return d
}

// Edit opens a saved itinerary as a draft.
func (s *Store) Edit(id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Draft{}, fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	return draftFrom(s.items[idx]), nil
}

// Save validates the draft, renumbers its days and stores the result,
// replacing any earlier version with the same id.
func (s *Store) Save(d Draft) (Itinerary, error) {
	it := d.Build()
	if err := it.Validate(); err != nil {
		return Itinerary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	idx := s.indexOf(it.ID)
	if idx >= 0 {
		it.CreatedAt = s.items[idx].CreatedAt
		if now.Before(s.items[idx].UpdatedAt) {
			now = s.items[idx].UpdatedAt
		}
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = now
	if idx >= 0 {
		s.items[idx] = it
	} else {
		s.items = append(s.items, it)
	}
	s.logger.Debug("itinerary saved", "itinerary_id", it.ID, "days", len(it.Days))
	return it.clone(), s.persistLocked()
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return s.persistLocked()
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() error {
	if err := store.SaveJSON(s.backend, store.KeyItineraries, s.items); err != nil {
		s.logger.Error("persist itineraries failed", "key", store.KeyItineraries, "err", err)
		return err
	}
	return nil
}
