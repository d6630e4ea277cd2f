package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/itinerary"
)

// Source identifies where a plan came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	SourceMock  Source = "mock"
)

// PlanResult is a plan plus its provenance. LiveErr holds the failure that
// caused a fallback.
type PlanResult struct {
	Request api.PlanRequest
	Plan    api.Plan
	Source  Source
	Stale   bool
	LiveErr error
}

// Planner generates plans, degrading from the live backend to the on-disk
// cache and finally to offline placeholder options.
type Planner struct {
	client api.Client
	cache  *api.PlanCache
	logger *slog.Logger
	now    func() time.Time
}

// NewPlanner builds a planner. cache may be nil.
func NewPlanner(client api.Client, cache *api.PlanCache, logger *slog.Logger) *Planner {
	return &Planner{client: client, cache: cache, logger: orDiscard(logger), now: time.Now}
}

// Generate returns a plan for req. Only an invalid request is an error;
// network failures fall back.
func (p *Planner) Generate(ctx context.Context, req api.PlanRequest) (PlanResult, error) {
	req = req.Normalize(p.now())
	if err := req.Validate(); err != nil {
		return PlanResult{}, err
	}
	result := PlanResult{Request: req}

	plan, err := p.client.GeneratePlan(ctx, req)
	if err == nil {
		if p.cache != nil {
			if cacheErr := p.cache.Put(req, plan); cacheErr != nil {
				p.logger.Warn("plan cache write failed", "err", cacheErr)
			}
		}
		result.Plan = plan
		result.Source = SourceLive
		return result, nil
	}
	p.logger.Warn("planner request failed, falling back", "destination", req.Destination, "err", err)
	result.LiveErr = err

	if p.cache != nil {
		if cached, fresh, ok := p.cache.Get(req); ok {
			result.Plan = cached
			result.Source = SourceCache
			result.Stale = !fresh
			return result, nil
		}
	}
	result.Plan = api.MockPlan(req)
	result.Source = SourceMock
	return result, nil
}

// SeedItinerary starts an itinerary draft from a planner request, with one
// day per calendar day of the trip.
func SeedItinerary(store *itinerary.Store, req api.PlanRequest) itinerary.Draft {
	draft := store.New()
	draft.Origin = req.Origin
	draft.Destination = req.Destination
	draft.StartDate = req.DepartureDate
	draft.EndDate = req.ReturnDate
	draft.Budget = float64(req.Budget)
	draft.EnsureDays(itinerary.TripDays(req.DepartureDate, req.ReturnDate))
	return draft
}
