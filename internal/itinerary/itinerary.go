package itinerary

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the calendar date format used for start and end dates.
const DateLayout = "2006-01-02"

var (
	// ErrNotFound is returned for itinerary ids the store does not hold.
	ErrNotFound = errors.New("itinerary not found")
	// ErrValidation wraps field errors from Save.
	ErrValidation = errors.New("invalid itinerary")
	// ErrDayRange is returned for day indexes outside the draft.
	ErrDayRange = errors.New("day index out of range")
)

// Day is one numbered day of a trip.
type Day struct {
	DayNumber  int      `json:"dayNumber"`
	Activities []string `json:"activities"`
	Notes      string   `json:"notes"`
}

// Itinerary is a saved, day-structured trip plan.
type Itinerary struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Budget      float64   `json:"budget"`
	Notes       string    `json:"notes"`
	Days        []Day     `json:"days"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Label is a short "origin → destination" heading.
func (it Itinerary) Label() string {
	origin := strings.TrimSpace(it.Origin)
	destination := strings.TrimSpace(it.Destination)
	switch {
	case origin != "" && destination != "":
		return origin + " → " + destination
	case destination != "":
		return destination
	case origin != "":
		return origin
	default:
		return "Untitled trip"
	}
}

func (it Itinerary) clone() Itinerary {
	days := make([]Day, len(it.Days))
	for i, day := range it.Days {
		day.Activities = append([]string(nil), day.Activities...)
		days[i] = day
	}
	it.Days = days
	return it
}

// Validate checks dates, their order and the budget.
func (it Itinerary) Validate() error {
	err := validation.ValidateStruct(&it,
		validation.Field(&it.ID, validation.Required),
		validation.Field(&it.StartDate, validation.Date(DateLayout)),
		validation.Field(&it.EndDate,
			validation.Date(DateLayout),
			validation.By(endNotBefore(it.StartDate)),
		),
		validation.Field(&it.Budget, validation.Min(0.0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func endNotBefore(start string) validation.RuleFunc {
	return func(value interface{}) error {
		end, _ := value.(string)
		if start == "" || end == "" {
			return nil
		}
		from, err := time.Parse(DateLayout, start)
		if err != nil {
			return nil
		}
		to, err := time.Parse(DateLayout, end)
		if err != nil {
			return nil
		}
		if to.Before(from) {
			return errors.New("must not be before the start date")
		}
		return nil
	}
}

// TripDays counts the calendar days from start to end inclusive. It returns
// zero when either date is missing or malformed.
func TripDays(start, end string) int {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil || to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
