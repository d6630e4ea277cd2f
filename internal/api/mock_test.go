package api

import (
	"strings"
	"testing"
	"time"

	"github.com/csheth/tripnotes/internal/cards"
)

func TestMockPlanClassifiesLikeLiveResults(t *testing.T) {
	t.Parallel()

	plan := MockPlan(PlanRequest{Origin: "Zagreb", Destination: "Paris"})
	if !plan.Mock {
		t.Fatal("mock plan must be flagged")
	}
	if len(plan.Transport) != 5 || len(plan.Hotels) != 3 || len(plan.Restaurants) != 3 || len(plan.Activities) != 4 {
		t.Fatalf("unexpected option counts %d/%d/%d/%d", len(plan.Transport), len(plan.Hotels), len(plan.Restaurants), len(plan.Activities))
	}
	for _, c := range cards.Categories() {
		for _, option := range plan.Options(c) {
			card := cards.ClassifyAs(c, option)
			if card.Category != c || card.Title == "" || card.Title == "Item" {
				t.Fatalf("option %v classified as %+v", option, card)
			}
			if card.Link == "" {
				t.Fatalf("option %v has no link", option)
			}
		}
	}
	bus := cards.ClassifyAs(cards.Transports, plan.Transport[3])
	train := cards.ClassifyAs(cards.Transports, plan.Transport[4])
	if bus.CardType != "bus" || train.CardType != "train" {
		t.Fatalf("unexpected transport subtypes %q %q", bus.CardType, train.CardType)
	}
	if !strings.Contains(plan.Hotels[0].Get("name"), "Paris") {
		t.Fatalf("hotel names should mention the destination: %v", plan.Hotels[0])
	}
	if plan.DepartureDate == "" || plan.ReturnDate == "" {
		t.Fatal("mock plan should carry default dates")
	}
}

func TestPlanCacheFreshnessAndStaleFallback(t *testing.T) {
	t.Parallel()

	cache, err := NewPlanCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewPlanCache: %v", err)
	}
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	req := PlanRequest{Destination: "Rome", DepartureDate: "2024-02-01", ReturnDate: "2024-02-03", Adults: 2}
	if _, _, ok := cache.Get(req); ok {
		t.Fatal("empty cache should miss")
	}
	live := Plan{Destination: "Rome", Hotels: []cards.Record{{"name": "Hotel Roma"}}}
	if err := cache.Put(req, live); err != nil {
		t.Fatalf("Put: %v", err)
	}

	same := req
	same.Destination = "  rome "
	plan, fresh, ok := cache.Get(same)
	if !ok || !fresh || len(plan.Hotels) != 1 {
		t.Fatalf("expected fresh hit, got ok=%v fresh=%v plan=%+v", ok, fresh, plan)
	}

	current = current.Add(2 * time.Hour)
	if _, fresh, ok := cache.Get(req); !ok || fresh {
		t.Fatalf("expected stale hit, got ok=%v fresh=%v", ok, fresh)
	}

	other := req
	other.Adults = 3
	if _, _, ok := cache.Get(other); ok {
		t.Fatal("different party size should miss")
	}
	if err := cache.Put(other, MockPlan(other)); err != nil {
		t.Fatalf("Put mock: %v", err)
	}
	if _, _, ok := cache.Get(other); ok {
		t.Fatal("mock plans must not be cached")
	}
}
