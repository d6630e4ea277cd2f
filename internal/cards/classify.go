package cards

import (
	"strings"
	"time"

	"github.com/csheth/tripnotes/internal/ids"
)

const defaultTitle = "Item"

var transportModes = map[string]bool{
	"plane": true,
	"car":   true,
	"bus":   true,
	"train": true,
}

// Planner transport options carry a vehicle in "type" instead of "mode".
var transportTypeModes = map[string]string{
	"flight": "plane",
	"plane":  "plane",
	"car":    "car",
	"bus":    "bus",
	"train":  "train",
}

var cardTypes = map[Category]string{
	Hotels:      "hotel",
	Restaurants: "restaurant",
	Activities:  "activity",
}

// fieldChains lists, per card field, the source keys tried in order.
type fieldChains struct {
	title, subtitle, details, price, rating, image, link []string
}

var messageChains = fieldChains{
	title:    []string{"name", "title", "route"},
	subtitle: []string{"address", "city", "airline"},
	details:  []string{"details", "description"},
	price:    []string{"price"},
	rating:   []string{"rating"},
	image:    []string{"image_url", "photo", "image"},
	link:     []string{"link", "url"},
}

// Planner options also use subtitle, booking_link and per-night pricing.
var optionChains = fieldChains{
	title:    []string{"name", "title", "route"},
	subtitle: []string{"address", "city", "airline", "subtitle"},
	details:  []string{"details", "description", "duration"},
	price:    []string{"price", "price_per_night", "price_level"},
	rating:   []string{"rating"},
	image:    []string{"image_url", "photo", "image"},
	link:     []string{"link", "url", "booking_link"},
}

var now = time.Now

// Classify maps a raw record onto a category and a fresh card. The first
// matching rule wins: transport type or a known vehicle mode, then hotel,
// then restaurant; everything else is an activity. Every call allocates a new
// id, so classifying the same record twice yields two distinct cards.
func Classify(rec Record) Card {
	kind := strings.TrimSpace(rec.Get("type"))
	mode := strings.TrimSpace(rec.Get("mode"))
	switch {
	case kind == "transport" || transportModes[mode]:
		cardType := mode
		if cardType == "" {
			cardType = "plane"
		}
		return build(rec, Transports, cardType, messageChains)
	case kind == "hotel":
		return build(rec, Hotels, cardTypes[Hotels], messageChains)
	case kind == "restaurant":
		return build(rec, Restaurants, cardTypes[Restaurants], messageChains)
	default:
		return build(rec, Activities, cardTypes[Activities], messageChains)
	}
}

// ClassifyAs builds a card for a record whose category is already known, such
// as an option taken from a planner result bucket. Unknown categories fall
// back to Classify.
func ClassifyAs(category Category, rec Record) Card {
	if !category.Valid() {
		return Classify(rec)
	}
	if category != Transports {
		return build(rec, category, cardTypes[category], optionChains)
	}
	cardType := strings.TrimSpace(rec.Get("mode"))
	if cardType == "" {
		cardType = transportTypeModes[strings.ToLower(strings.TrimSpace(rec.Get("type")))]
	}
	if cardType == "" {
		cardType = "plane"
	}
	return build(rec, Transports, cardType, optionChains)
}

func build(rec Record, category Category, cardType string, chains fieldChains) Card {
	title := rec.First(chains.title...)
	if title == "" {
		title = defaultTitle
	}
	return Card{
		ID:       ids.New("card"),
		Title:    title,
		Subtitle: rec.First(chains.subtitle...),
		Details:  rec.First(chains.details...),
		Price:    Text(rec.First(chains.price...)),
		Rating:   Text(rec.First(chains.rating...)),
		ImageURL: rec.First(chains.image...),
		Link:     rec.First(chains.link...),
		Category: category,
		CardType: cardType,
		Data:     rec.clone(),
		AddedAt:  now(),
	}
}
