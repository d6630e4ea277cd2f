package notes

import (
	"strings"
	"time"

	"github.com/csheth/tripnotes/internal/cards"
)

// DefaultTitle names notes created without an explicit title.
const DefaultTitle = "Travel Note"

// Note is a travel document: free text plus the cards collected into it.
type Note struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Cards     []cards.Card `json:"cards"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CardsIn returns the cards of one category in insertion order.
func (n Note) CardsIn(c cards.Category) []cards.Card {
	return n.byCategory()[c]
}

// Counts reports how many cards each category holds.
func (n Note) Counts() map[cards.Category]int {
	grouped := n.byCategory()
	counts := make(map[cards.Category]int, len(grouped))
	for _, c := range cards.Categories() {
		counts[c] = len(grouped[c])
	}
	return counts
}

// Card finds a card by id.
func (n Note) Card(id string) (cards.Card, bool) {
	for _, card := range n.Cards {
		if card.ID == id {
			return card, true
		}
	}
	return cards.Card{}, false
}

// DisplayTitle never returns a blank heading.
func (n Note) DisplayTitle() string {
	if title := strings.TrimSpace(n.Title); title != "" {
		return title
	}
	return DefaultTitle
}

func (n Note) byCategory() map[cards.Category][]cards.Card {
	grouped := make(map[cards.Category][]cards.Card, 4)
	for _, card := range n.Cards {
		c := card.Category
		if !c.Valid() {
			c = cards.Activities
		}
		grouped[c] = append(grouped[c], card)
	}
	return grouped
}

func (n Note) clone() Note {
	n.Cards = append([]cards.Card(nil), n.Cards...)
	return n
}
