package notes

import (
	"strings"

	"github.com/csheth/tripnotes/internal/cards"
)

// MigratedTitle names the note built from the legacy single document.
const MigratedTitle = "My Travel Items"

// Legacy is the flat, single travel note written by earlier versions. The
// misspelled "activitys" key is what those versions stored.
type Legacy struct {
	Notes       string       `json:"notes"`
	Plans       string       `json:"plans"`
	Transports  []cards.Card `json:"transports"`
	Hotels      []cards.Card `json:"hotels"`
	Restaurants []cards.Card `json:"restaurants"`
	Activitys   []cards.Card `json:"activitys"`
}

// legacyBuckets maps each category onto the legacy array holding it.
func (l *Legacy) legacyBuckets() map[cards.Category]*[]cards.Card {
	return map[cards.Category]*[]cards.Card{
		cards.Transports:  &l.Transports,
		cards.Hotels:      &l.Hotels,
		cards.Restaurants: &l.Restaurants,
		cards.Activities:  &l.Activitys,
	}
}

// ItemCount is the number of cards across all four arrays.
func (l *Legacy) ItemCount() int {
	total := 0
	for _, bucket := range l.legacyBuckets() {
		total += len(*bucket)
	}
	return total
}

// Cards converts every legacy item into a card tagged with its bucket's
// category, in category display order.
func (l *Legacy) Cards() []cards.Card {
	buckets := l.legacyBuckets()
	out := make([]cards.Card, 0, l.ItemCount())
	seen := map[string]bool{}
	for _, c := range cards.Categories() {
		for _, item := range *buckets[c] {
			if seen[item.ID] {
				item.ID = ""
			}
			card := cards.Restore(c, item)
			seen[card.ID] = true
			out = append(out, card)
		}
	}
	return out
}

// Content joins the legacy free-text fields.
func (l *Legacy) Content() string {
	parts := make([]string, 0, 2)
	for _, text := range []string{l.Notes, l.Plans} {
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
