package workflow

import (
	"testing"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/notes"
	"github.com/csheth/tripnotes/internal/store"
)

func newCollectorFixture(t *testing.T) (*Collector, *notes.Store) {
	t.Helper()
	noteStore, err := notes.Open(store.NewMemoryBackend())
	if err != nil {
		t.Fatalf("notes.Open: %v", err)
	}
	return NewCollector(noteStore, nil), noteStore
}

func TestAddingSameRecordTwiceKeepsBothCards(t *testing.T) {
	t.Parallel()

	collector, noteStore := newCollectorFixture(t)
	rec := cards.Record{"type": "restaurant", "name": "Konoba", "city": "Split", "price": "€€"}

	first, err := collector.AddRecord(rec)
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if !first.CreatedNote || !first.Navigate || first.NoteTitle != "Trip to Split" || first.Label != AddedLabel {
		t.Fatalf("first add should create a note and navigate: %+v", first)
	}
	second, err := collector.AddRecord(rec)
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if second.CreatedNote || second.Navigate || second.NoteID != first.NoteID {
		t.Fatalf("second add should append to the active note: %+v", second)
	}

	note, _ := noteStore.Get(first.NoteID)
	if len(note.Cards) != 2 {
		t.Fatalf("expected two cards, got %d", len(note.Cards))
	}
	if note.Cards[0].ID == note.Cards[1].ID || !note.Cards[0].SameContent(note.Cards[1]) {
		t.Fatalf("cards should differ only in identity: %+v", note.Cards)
	}
	if note.Cards[0].Category != cards.Restaurants {
		t.Fatalf("unexpected category %q", note.Cards[0].Category)
	}
}

func TestAddBlockAndPlanOption(t *testing.T) {
	t.Parallel()

	collector, noteStore := newCollectorFixture(t)
	blocks := cards.Parse("Options:\n[CARD]\ntype: transport\ntitle: Night train\ndata: {\"mode\":\"train\"}\n[/CARD]")
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(blocks))
	}
	res, err := collector.AddBlock(blocks[0])
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if res.Card.Category != cards.Transports || res.Card.CardType != "train" {
		t.Fatalf("unexpected card %+v", res.Card)
	}
	if res.NoteTitle != notes.DefaultTitle {
		t.Fatalf("without a city the default title is used, got %q", res.NoteTitle)
	}

	opt, err := collector.AddPlanOption(cards.Hotels, cards.Record{"name": "Hotel Park", "price_per_night": 120.0})
	if err != nil {
		t.Fatalf("AddPlanOption: %v", err)
	}
	if opt.Card.Category != cards.Hotels || opt.Card.Price != "120" || opt.CreatedNote {
		t.Fatalf("unexpected plan option result %+v", opt)
	}
	active, _ := noteStore.Active()
	if counts := active.Counts(); counts[cards.Transports] != 1 || counts[cards.Hotels] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}
