package notes

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/store"
)

// countingBackend records how many writes hit each key.
type countingBackend struct {
	store.Backend
	mu   sync.Mutex
	puts map[string]int
}

func newCountingBackend() *countingBackend {
	return &countingBackend{Backend: store.NewMemoryBackend(), puts: map[string]int{}}
}

func (c *countingBackend) Put(key string, value []byte) error {
	c.mu.Lock()
	c.puts[key]++
	c.mu.Unlock()
	return c.Backend.Put(key, value)
}

func (c *countingBackend) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts[key]
}

func seedLegacy(t *testing.T, backend store.Backend) {
	t.Helper()
	legacy := map[string]any{
		"notes": "Pack an umbrella",
		"plans": "Day trip to Sintra",
		"transports": []map[string]any{
			{"id": "t1", "title": "TAP 123", "price": 180},
		},
		"hotels": []map[string]any{
			{"id": "h1", "title": "Alfama Stay", "rating": 4.5},
		},
		"restaurants": []map[string]any{},
		"activitys": []map[string]any{
			{"title": "Tram 28"},
		},
	}
	if err := store.SaveJSON(backend, store.KeyLegacyNote, legacy); err != nil {
		t.Fatalf("seed legacy: %v", err)
	}
}

func TestMigrationImportsLegacyOnce(t *testing.T) {
	t.Parallel()

	backend := store.NewMemoryBackend()
	seedLegacy(t, backend)

	s, err := Open(backend)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	list := s.List()
	if len(list) != 1 {
		t.Fatalf("expected one migrated note, got %d", len(list))
	}
	note := list[0]
	if note.Title != MigratedTitle {
		t.Fatalf("unexpected title %q", note.Title)
	}
	if note.Content != "Pack an umbrella\n\nDay trip to Sintra" {
		t.Fatalf("unexpected content %q", note.Content)
	}
	counts := note.Counts()
	if counts[cards.Transports] != 1 || counts[cards.Hotels] != 1 || counts[cards.Activities] != 1 || counts[cards.Restaurants] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
	hotel := note.CardsIn(cards.Hotels)[0]
	if hotel.Rating != "4.5" || hotel.CardType != "hotel" {
		t.Fatalf("hotel not restored: %+v", hotel)
	}
	if activity := note.CardsIn(cards.Activities)[0]; activity.ID == "" {
		t.Fatal("legacy item without id should receive one")
	}

	again, err := Open(backend)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if again.Len() != 1 {
		t.Fatalf("migration ran twice: %d notes", again.Len())
	}
	if _, err := backend.Get(store.KeyLegacyNote); err != nil {
		t.Fatalf("legacy document must be left in place: %v", err)
	}
}

func TestMigrationSkipsPopulatedStore(t *testing.T) {
	t.Parallel()

	backend := store.NewMemoryBackend()
	s, _ := Open(backend)
	if _, err := s.Create("Existing"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedLegacy(t, backend)

	reopened, err := Open(backend)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("expected only the existing note, got %d", reopened.Len())
	}
	marker, _ := store.LoadString(backend, store.KeyNotesMigrated)
	if marker != migratedMarker {
		t.Fatalf("populated store should set the marker, got %q", marker)
	}

	// Even after every note is deleted the legacy document is not re-imported.
	for _, note := range reopened.List() {
		if err := reopened.Delete(note.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}
	third, _ := Open(backend)
	if third.Len() != 0 {
		t.Fatalf("legacy note re-imported into an emptied store: %d", third.Len())
	}
}

func TestMigrationIgnoresEmptyLegacy(t *testing.T) {
	t.Parallel()

	backend := store.NewMemoryBackend()
	_ = store.SaveJSON(backend, store.KeyLegacyNote, Legacy{Notes: "only text"})
	s, err := Open(backend)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("legacy note without items should not migrate, got %d notes", s.Len())
	}
}

func TestAddCardCreatesNoteWhenNoneActive(t *testing.T) {
	t.Parallel()

	s, _ := Open(store.NewMemoryBackend())
	card := cards.Classify(cards.Record{"type": "hotel", "name": "Casa"})
	note, created, err := s.AddCard(card, "Lisbon")
	if err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	if !created || note.Title != "Lisbon" || len(note.Cards) != 1 {
		t.Fatalf("expected a new note holding the card, got created=%v %+v", created, note)
	}
	if s.ActiveID() != note.ID {
		t.Fatal("created note should become active")
	}

	second := cards.Classify(cards.Record{"type": "hotel", "name": "Casa"})
	note, created, err = s.AddCard(second, "ignored")
	if err != nil || created {
		t.Fatalf("second add should append, created=%v err=%v", created, err)
	}
	if len(note.Cards) != 2 || note.Cards[0].ID == note.Cards[1].ID {
		t.Fatalf("re-adding should keep two distinct cards: %+v", note.Cards)
	}
	if !note.Cards[0].SameContent(note.Cards[1]) {
		t.Fatal("re-added cards should carry identical content")
	}

	if err := s.Deselect(); err != nil {
		t.Fatalf("Deselect: %v", err)
	}
	_, created, _ = s.AddCard(cards.Classify(cards.Record{"name": "Museum"}), "")
	if !created || s.Len() != 2 {
		t.Fatalf("with no active note a new note should be created, got %d notes", s.Len())
	}
	active, _ := s.Active()
	if active.Title != DefaultTitle {
		t.Fatalf("expected default title, got %q", active.Title)
	}
}

func TestRemoveAndClearCards(t *testing.T) {
	t.Parallel()

	s, _ := Open(store.NewMemoryBackend())
	note, _ := s.Create("Porto")
	if _, err := s.UpdateContent(note.ID, "wine cellars"); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	a, _, _ := s.AddCard(cards.Classify(cards.Record{"name": "A"}), "")
	_, _, _ = s.AddCard(cards.Classify(cards.Record{"name": "B"}), "")

	updated, err := s.RemoveCard(note.ID, a.Cards[0].ID)
	if err != nil {
		t.Fatalf("RemoveCard: %v", err)
	}
	if len(updated.Cards) != 1 || updated.Cards[0].Title != "B" {
		t.Fatalf("unexpected cards after remove: %+v", updated.Cards)
	}
	cleared, err := s.ClearCards(note.ID)
	if err != nil {
		t.Fatalf("ClearCards: %v", err)
	}
	if len(cleared.Cards) != 0 || cleared.Title != "Porto" || cleared.Content != "wine cellars" {
		t.Fatalf("clear should keep title and content: %+v", cleared)
	}
	if _, err := s.ClearCards("note_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteActiveNoteDeselects(t *testing.T) {
	t.Parallel()

	backend := store.NewMemoryBackend()
	s, _ := Open(backend)
	note, _ := s.Create("Rome")
	if err := s.Delete(note.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Active(); ok {
		t.Fatal("deleted note should not stay active")
	}
	reopened, _ := Open(backend)
	if reopened.ActiveID() != "" {
		t.Fatalf("active pointer should be cleared, got %q", reopened.ActiveID())
	}
}

func TestUpdatedAtAdvancesOnChange(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	s, _ := Open(store.NewMemoryBackend(), WithClock(clock))
	note, _ := s.Create("Oslo")
	renamed, _ := s.UpdateTitle(note.ID, "Bergen")
	if !renamed.UpdatedAt.After(note.UpdatedAt) {
		t.Fatal("title change should advance updatedAt")
	}
	same, _ := s.UpdateTitle(note.ID, "Bergen")
	if !same.UpdatedAt.Equal(renamed.UpdatedAt) {
		t.Fatal("no-op update should not touch updatedAt")
	}
}
