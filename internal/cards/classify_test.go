package cards

import (
	"encoding/json"
	"testing"
)

func TestClassifyRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rec      Record
		category Category
		cardType string
	}{
		{"transport type", Record{"type": "transport"}, Transports, "plane"},
		{"transport with mode", Record{"type": "transport", "mode": "bus"}, Transports, "bus"},
		{"train mode beats hotel type", Record{"type": "hotel", "mode": "train"}, Transports, "train"},
		{"car mode alone", Record{"mode": "car"}, Transports, "car"},
		{"hotel", Record{"type": "hotel"}, Hotels, "hotel"},
		{"restaurant", Record{"type": "restaurant"}, Restaurants, "restaurant"},
		{"unknown type", Record{"type": "museum"}, Activities, "activity"},
		{"unknown mode", Record{"mode": "boat"}, Activities, "activity"},
		{"empty", Record{}, Activities, "activity"},
		{"nil", nil, Activities, "activity"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			card := Classify(tt.rec)
			if card.Category != tt.category || card.CardType != tt.cardType {
				t.Fatalf("Classify(%v) = %s/%s, want %s/%s", tt.rec, card.Category, card.CardType, tt.category, tt.cardType)
			}
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	t.Parallel()

	types := []any{nil, "", "transport", "hotel", "restaurant", "activity", "flight", 42, "HOTEL"}
	modes := []any{nil, "", "plane", "car", "bus", "train", "ferry", true}
	for _, kind := range types {
		for _, mode := range modes {
			rec := Record{}
			if kind != nil {
				rec["type"] = kind
			}
			if mode != nil {
				rec["mode"] = mode
			}
			card := Classify(rec)
			if !card.Category.Valid() {
				t.Fatalf("Classify(%v) produced invalid category %q", rec, card.Category)
			}
			if mode == "train" && (card.Category != Transports || card.CardType != "train") {
				t.Fatalf("train mode must classify as transports/train, got %s/%s", card.Category, card.CardType)
			}
		}
	}
}

func TestClassifyFieldFallbacks(t *testing.T) {
	t.Parallel()

	card := Classify(Record{
		"type":        "hotel",
		"title":       "ignored because name wins",
		"name":        "Hotel Park",
		"city":        "Split",
		"description": "Sea view",
		"price":       120.0,
		"rating":      4.5,
		"photo":       "https://img.example/p.jpg",
		"url":         "https://book.example/park",
	})
	if card.Title != "Hotel Park" || card.Subtitle != "Split" || card.Details != "Sea view" {
		t.Fatalf("unexpected text fields: %+v", card)
	}
	if card.Price != "120" || card.Rating != "4.5" {
		t.Fatalf("numbers should be normalized, got price=%q rating=%q", card.Price, card.Rating)
	}
	if card.ImageURL != "https://img.example/p.jpg" || card.Link != "https://book.example/park" {
		t.Fatalf("unexpected media fields: %+v", card)
	}

	bare := Classify(Record{"route": ""})
	if bare.Title != "Item" || bare.Subtitle != "" || bare.Link != "" {
		t.Fatalf("empty record should fall back to defaults, got %+v", bare)
	}
}

func TestClassifySameRecordTwiceYieldsDistinctCards(t *testing.T) {
	t.Parallel()

	rec := Record{"type": "restaurant", "name": "Bokeria", "address": "Split"}
	first := Classify(rec)
	second := Classify(rec)
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %q and %q", first.ID, second.ID)
	}
	if !first.SameContent(second) {
		t.Fatalf("expected identical content:\n%+v\n%+v", first, second)
	}

	rec["name"] = "mutated"
	if first.Data.Get("name") != "Bokeria" {
		t.Fatal("card data must not alias the caller's record")
	}
}

func TestClassifyAsPlannerOptions(t *testing.T) {
	t.Parallel()

	flight := ClassifyAs(Transports, Record{
		"type":         "flight",
		"title":        "Ryanair to Split",
		"subtitle":     "Zagreb → Split",
		"price":        89,
		"booking_link": "https://www.skyscanner.net/x",
	})
	if flight.CardType != "plane" || flight.Subtitle != "Zagreb → Split" || flight.Link != "https://www.skyscanner.net/x" {
		t.Fatalf("unexpected flight card: %+v", flight)
	}
	if flight.Price != "89" {
		t.Fatalf("expected price 89, got %q", flight.Price)
	}

	bus := ClassifyAs(Transports, Record{"type": "bus", "title": "FlixBus"})
	if bus.CardType != "bus" {
		t.Fatalf("expected bus card type, got %q", bus.CardType)
	}

	hotel := ClassifyAs(Hotels, Record{"name": "Boutique Hotel", "price_per_night": 120})
	if hotel.Category != Hotels || hotel.CardType != "hotel" || hotel.Price != "120" {
		t.Fatalf("unexpected hotel card: %+v", hotel)
	}

	fallback := ClassifyAs(Category("nightlife"), Record{"type": "restaurant"})
	if fallback.Category != Restaurants {
		t.Fatalf("unknown category should defer to Classify, got %s", fallback.Category)
	}
}

func TestTextAcceptsNumbers(t *testing.T) {
	t.Parallel()

	var card Card
	if err := json.Unmarshal([]byte(`{"id":"c1","price":45,"rating":null,"category":"hotels"}`), &card); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if card.Price != "45" || card.Rating != "" {
		t.Fatalf("unexpected price/rating: %q/%q", card.Price, card.Rating)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	if c, ok := ParseCategory(" Hotels "); !ok || c != Hotels {
		t.Fatalf("expected hotels, got %q %v", c, ok)
	}
	if _, ok := ParseCategory("nightlife"); ok {
		t.Fatal("nightlife is not a card category")
	}
	if len(Categories()) != 4 {
		t.Fatalf("expected four categories, got %d", len(Categories()))
	}
}
