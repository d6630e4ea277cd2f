package workflow

import (
	"log/slog"
	"strings"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/notes"
)

// AddedLabel replaces the label of an add affordance once its card is saved.
const AddedLabel = "✓ Added"

// AddResult tells the caller what adding a card did. Presentation, such as
// relabelling the button or switching to the notes view, is up to the caller.
type AddResult struct {
	Card        cards.Card
	NoteID      string
	NoteTitle   string
	CreatedNote bool
	// Navigate is set when a new note was created for the card.
	Navigate bool
	Label    string
}

// Collector files cards into travel notes.
type Collector struct {
	notes  *notes.Store
	logger *slog.Logger
}

func NewCollector(store *notes.Store, logger *slog.Logger) *Collector {
	return &Collector{notes: store, logger: orDiscard(logger)}
}

// AddRecord classifies a raw record and adds it to the active note.
func (c *Collector) AddRecord(rec cards.Record) (AddResult, error) {
	return c.add(cards.Classify(rec), rec)
}

// AddBlock adds a card parsed out of assistant text.
func (c *Collector) AddBlock(block cards.Block) (AddResult, error) {
	return c.AddRecord(block.Record())
}

// AddPlanOption adds a planner option from a known category bucket.
func (c *Collector) AddPlanOption(category cards.Category, rec cards.Record) (AddResult, error) {
	return c.add(cards.ClassifyAs(category, rec), rec)
}

func (c *Collector) add(card cards.Card, rec cards.Record) (AddResult, error) {
	note, created, err := c.notes.AddCard(card, NoteTitleFor(rec))
	result := AddResult{
		Card:        card,
		NoteID:      note.ID,
		NoteTitle:   note.Title,
		CreatedNote: created,
		Navigate:    created,
		Label:       AddedLabel,
	}
	if err != nil {
		c.logger.Error("add card failed", "card_id", card.ID, "note_id", note.ID, "err", err)
	}
	return result, err
}

// NoteTitleFor names a note started by adding rec: the record's city when
// it has one, otherwise the generic default.
func NoteTitleFor(rec cards.Record) string {
	if city := strings.TrimSpace(rec.Get("city")); city != "" {
		return "Trip to " + city
	}
	return notes.DefaultTitle
}
