package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/csheth/tripnotes/internal/cards"
)

const dateLayout = "2006-01-02"

const (
	defaultLeadDays = 7
	defaultStayDays = 5
)

var now = time.Now

// PlanRequest asks the planner for options between two places.
type PlanRequest struct {
	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date,omitempty"`
	ReturnDate    string `json:"return_date,omitempty"`
	Budget        int    `json:"budget,omitempty"`
	Adults        int    `json:"adults"`
}

// Normalize trims fields and fills defaults: one adult, departure a week
// from today and a five day stay.
func (r PlanRequest) Normalize(today time.Time) PlanRequest {
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)
	r.DepartureDate = strings.TrimSpace(r.DepartureDate)
	r.ReturnDate = strings.TrimSpace(r.ReturnDate)
	if r.Adults < 1 {
		r.Adults = 1
	}
	if r.DepartureDate == "" {
		r.DepartureDate = today.AddDate(0, 0, defaultLeadDays).Format(dateLayout)
	}
	if r.ReturnDate == "" {
		if departure, err := time.Parse(dateLayout, r.DepartureDate); err == nil {
			r.ReturnDate = departure.AddDate(0, 0, defaultStayDays).Format(dateLayout)
		}
	}
	return r
}

// Validate checks the request before it is sent.
func (r PlanRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Destination, validation.Required),
		validation.Field(&r.DepartureDate, validation.Date(dateLayout)),
		validation.Field(&r.ReturnDate, validation.Date(dateLayout)),
		validation.Field(&r.Adults, validation.Min(1)),
		validation.Field(&r.Budget, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Plan holds planner options grouped by category. Each option is a raw
// record suitable for cards.ClassifyAs.
type Plan struct {
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	DepartureDate string            `json:"departure_date"`
	ReturnDate    string            `json:"return_date"`
	Transport     []cards.Record    `json:"transport"`
	Hotels        []cards.Record    `json:"hotels"`
	Restaurants   []cards.Record    `json:"restaurants"`
	Activities    []cards.Record    `json:"activities"`
	Links         map[string]string `json:"links,omitempty"`
	Mock          bool              `json:"mock,omitempty"`
}

// Options returns the options of one category.
func (p Plan) Options(c cards.Category) []cards.Record {
	return p.buckets()[c]
}

// Total counts options across every category.
func (p Plan) Total() int {
	total := 0
	for _, options := range p.buckets() {
		total += len(options)
	}
	return total
}

func (p Plan) buckets() map[cards.Category][]cards.Record {
	return map[cards.Category][]cards.Record{
		cards.Transports:  p.Transport,
		cards.Hotels:      p.Hotels,
		cards.Restaurants: p.Restaurants,
		cards.Activities:  p.Activities,
	}
}

func decodePlan(body []byte, req PlanRequest) (Plan, error) {
	var plan Plan
	if err := json.Unmarshal(body, &plan); err != nil {
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	if plan.Destination == "" {
		plan.Destination = req.Destination
	}
	if plan.Origin == "" {
		plan.Origin = req.Origin
	}
	if plan.DepartureDate == "" {
		plan.DepartureDate = req.DepartureDate
	}
	if plan.ReturnDate == "" {
		plan.ReturnDate = req.ReturnDate
	}
	return plan, nil
}
