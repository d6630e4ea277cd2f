package cards

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/csheth/tripnotes/internal/ids"
)

// Category is the closed set of buckets a card can live in.
type Category string

const (
	Transports  Category = "transports"
	Hotels      Category = "hotels"
	Restaurants Category = "restaurants"
	Activities  Category = "activities"
)

var categoryOrder = []Category{Transports, Hotels, Restaurants, Activities}

var categoryLabels = map[Category]string{
	Transports:  "Transport",
	Hotels:      "Hotels",
	Restaurants: "Restaurants",
	Activities:  "Activities",
}

// Categories lists every category in display order.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the human readable heading for the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[Activities]
}

// ParseCategory maps a stored category name back onto the enum.
func ParseCategory(value string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	return c, c.Valid()
}

// Record is a raw, loosely typed card source: parsed block fields or a planner option.
type Record map[string]any

// Get returns the field as text, formatting numbers without trailing zeros.
func (r Record) Get(key string) string {
	return stringify(r[key])
}

// First returns the first non-empty field among keys.
func (r Record) First(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(r.Get(key)); value != "" {
			return value
		}
	}
	return ""
}

func (r Record) clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}

// Text is a string field that also accepts JSON numbers and booleans, which
// older documents stored for price and rating.
type Text string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Text(stringify(raw))
	return nil
}

// Card is a normalized travel item stored inside a note.
type Card struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Details  string    `json:"details"`
	Price    Text      `json:"price"`
	Rating   Text      `json:"rating"`
	ImageURL string    `json:"image_url"`
	Link     string    `json:"link"`
	Category Category  `json:"category"`
	CardType string    `json:"cardType"`
	Data     Record    `json:"data,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// SameContent reports whether two cards carry identical values ignoring ID and AddedAt.
func (c Card) SameContent(other Card) bool {
	if c.Title != other.Title || c.Subtitle != other.Subtitle || c.Details != other.Details ||
		c.Price != other.Price || c.Rating != other.Rating || c.ImageURL != other.ImageURL ||
		c.Link != other.Link || c.Category != other.Category || c.CardType != other.CardType {
		return false
	}
	left, _ := json.Marshal(c.Data)
	right, _ := json.Marshal(other.Data)
	return string(left) == string(right)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// DefaultCardType is the widget subtype used when a source names none.
func DefaultCardType(c Category) string {
	if c == Transports {
		return "plane"
	}
	if cardType, ok := cardTypes[c]; ok {
		return cardType
	}
	return cardTypes[Activities]
}

// Restore fills the identity and category fields of a card decoded from an
// older document so it can live in category c.
func Restore(c Category, card Card) Card {
	if !c.Valid() {
		c = Activities
	}
	card.Category = c
	if strings.TrimSpace(card.ID) == "" {
		card.ID = ids.New("card")
	}
	if strings.TrimSpace(card.Title) == "" {
		card.Title = card.Data.First(messageChains.title...)
	}
	if strings.TrimSpace(card.Title) == "" {
		card.Title = defaultTitle
	}
	if strings.TrimSpace(card.CardType) == "" {
		card.CardType = DefaultCardType(c)
	}
	if card.AddedAt.IsZero() {
		card.AddedAt = now()
	}
	return card
}
