package notes

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/ids"
	"github.com/csheth/tripnotes/internal/store"
)

// ErrNotFound is returned for note ids the store does not hold.
var ErrNotFound = errors.New("note not found")

const migratedMarker = "true"

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

// Store owns the travel notes and which of them is open in the editor.
type Store struct {
	mu      sync.Mutex
	backend store.Backend
	logger  *slog.Logger
	clock   func() time.Time

	notes    []Note
	activeID string
}

// Open loads notes and the active pointer, then imports the legacy single
// note if it has not been imported yet.
func Open(backend store.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := store.LoadJSON(backend, store.KeyNotes, &s.notes); err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	activeID, err := store.LoadString(backend, store.KeyActiveNote)
	if err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	if s.indexOf(activeID) >= 0 {
		s.activeID = activeID
	}
	if _, err := s.Migrate(); err != nil {
		s.logger.Error("legacy note import failed", "err", err)
	}
	return s, nil
}

// Migrate imports the legacy flat note into a single "My Travel Items" note.
// It runs at most once: the migrated marker is set either by a successful
// import or by finding the new store already populated. The legacy document
// itself is never modified. It reports whether a note was created.
func (s *Store) Migrate() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marker, err := store.LoadString(s.backend, store.KeyNotesMigrated)
	if err != nil {
		return false, fmt.Errorf("migrate notes: %w", err)
	}
	if marker == migratedMarker {
		return false, nil
	}
	if len(s.notes) > 0 {
		return false, s.markMigratedLocked()
	}

	var legacy Legacy
	found, err := store.LoadJSON(s.backend, store.KeyLegacyNote, &legacy)
	if err != nil {
		s.logger.Warn("legacy note unreadable, skipping import", "key", store.KeyLegacyNote, "err", err)
		return false, nil
	}
	if !found || legacy.ItemCount() == 0 {
		return false, nil
	}

	now := s.clock()
	note := Note{
		ID:        ids.New("note"),
		Title:     MigratedTitle,
		Content:   legacy.Content(),
		Cards:     legacy.Cards(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes = append(s.notes, note)
	if err := s.persistLocked(); err != nil {
		return true, fmt.Errorf("migrate notes: %w", err)
	}
	s.logger.Info("legacy note imported", "note_id", note.ID, "cards", len(note.Cards))
	return true, s.markMigratedLocked()
}

// List returns notes, most recently updated first.
func (s *Store) List() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Note, 0, len(s.notes))
	for _, note := range s.notes {
		out = append(out, note.clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Len reports how many notes exist.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *Store) Get(id string) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.notes[idx].clone(), true
	}
	return Note{}, false
}

// Active returns the note open in the editor, if any.
func (s *Store) Active() (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(s.activeID); idx >= 0 {
		return s.notes[idx].clone(), true
	}
	return Note{}, false
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Select opens a note in the editor.
func (s *Store) Select(id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Note{}, fmt.Errorf("select %s: %w", id, ErrNotFound)
	}
	s.activeID = id
	return s.notes[idx].clone(), s.persistActiveLocked()
}

// Deselect closes the editor so the next added card starts a new note.
func (s *Store) Deselect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	return s.persistActiveLocked()
}

// Create adds an empty note and opens it.
func (s *Store) Create(title string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note := s.newNoteLocked(title)
	s.notes = append(s.notes, note)
	s.activeID = note.ID
	err := errors.Join(s.persistLocked(), s.persistActiveLocked())
	return note.clone(), err
}

// Delete removes a note, deselecting it when it was open.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.notes = append(s.notes[:idx], s.notes[idx+1:]...)
	err := s.persistLocked()
	if s.activeID == id {
		s.activeID = ""
		err = errors.Join(err, s.persistActiveLocked())
	}
	return err
}

func (s *Store) UpdateTitle(id, title string) (Note, error) {
	return s.mutate(id, func(n *Note) bool {
		if n.Title == title {
			return false
		}
		n.Title = title
		return true
	})
}

func (s *Store) UpdateContent(id, content string) (Note, error) {
	return s.mutate(id, func(n *Note) bool {
		if n.Content == content {
			return false
		}
		n.Content = content
		return true
	})
}

// SaveDraft writes an editor buffer back to its note. Nothing is written
// when both fields already match, which keeps repeated flushes idempotent.
func (s *Store) SaveDraft(id, title, content string) (Note, error) {
	return s.mutate(id, func(n *Note) bool {
		if n.Title == title && n.Content == content {
			return false
		}
		n.Title = title
		n.Content = content
		return true
	})
}

// AddCard appends card to the open note. With no open note it creates one
// titled fallbackTitle holding just this card and opens it; created reports
// that case so callers can navigate to the notes view.
func (s *Store) AddCard(card cards.Card, fallbackTitle string) (note Note, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(s.activeID); idx >= 0 {
		s.notes[idx].Cards = append(s.notes[idx].Cards, card)
		s.touchLocked(&s.notes[idx])
		return s.notes[idx].clone(), false, s.persistLocked()
	}
	note = s.newNoteLocked(fallbackTitle)
	note.Cards = []cards.Card{card}
	s.notes = append(s.notes, note)
	s.activeID = note.ID
	s.logger.Info("note created for card", "note_id", note.ID, "card_id", card.ID)
	return note.clone(), true, errors.Join(s.persistLocked(), s.persistActiveLocked())
}

// RemoveCard drops one card from a note.
func (s *Store) RemoveCard(noteID, cardID string) (Note, error) {
	return s.mutate(noteID, func(n *Note) bool {
		kept := n.Cards[:0:0]
		for _, card := range n.Cards {
			if card.ID != cardID {
				kept = append(kept, card)
			}
		}
		if len(kept) == len(n.Cards) {
			return false
		}
		n.Cards = kept
		return true
	})
}

// ClearCards empties a note's cards and keeps its title and content.
func (s *Store) ClearCards(noteID string) (Note, error) {
	return s.mutate(noteID, func(n *Note) bool {
		if len(n.Cards) == 0 {
			return false
		}
		n.Cards = []cards.Card{}
		return true
	})
}

func (s *Store) mutate(id string, apply func(*Note) bool) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Note{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if !apply(&s.notes[idx]) {
		return s.notes[idx].clone(), nil
	}
	s.touchLocked(&s.notes[idx])
	return s.notes[idx].clone(), s.persistLocked()
}

func (s *Store) newNoteLocked(title string) Note {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	now := s.clock()
	return Note{
		ID:        ids.New("note"),
		Title:     title,
		Cards:     []cards.Card{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Store) touchLocked(n *Note) {
	if now := s.clock(); now.After(n.UpdatedAt) {
		n.UpdatedAt = now
	}
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() error {
	if err := store.SaveJSON(s.backend, store.KeyNotes, s.notes); err != nil {
		s.logger.Error("persist notes failed", "key", store.KeyNotes, "err", err)
		return err
	}
	return nil
}

func (s *Store) persistActiveLocked() error {
	if err := store.SaveString(s.backend, store.KeyActiveNote, s.activeID); err != nil {
		s.logger.Error("persist active note failed", "key", store.KeyActiveNote, "err", err)
		return err
	}
	return nil
}

func (s *Store) markMigratedLocked() error {
	if err := store.SaveString(s.backend, store.KeyNotesMigrated, migratedMarker); err != nil {
		s.logger.Error("persist migration marker failed", "key", store.KeyNotesMigrated, "err", err)
		return fmt.Errorf("migrate notes: %w", err)
	}
	return nil
}
