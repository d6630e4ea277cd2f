package itinerary

import (
	"fmt"
	"strings"
	"time"
)

// DayDraft holds the raw editor inputs of one day. Activities may contain
// blank inputs; they are dropped when the draft is built.
type DayDraft struct {
	Activities []string
	Notes      string
}

// Draft is the editor state for an itinerary. Day numbers are not stored
// here: they come from each day's position when the draft is built.
type Draft struct {
	ID          string
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	Budget      float64
	Notes       string
	Days        []DayDraft

	createdAt time.Time
}

// AddDay appends an empty day and returns its index.
func (d *Draft) AddDay() int {
	d.Days = append(d.Days, DayDraft{})
	return len(d.Days) - 1
}

// EnsureDays pads the draft with empty days until it has at least n.
func (d *Draft) EnsureDays(n int) {
	for len(d.Days) < n {
		d.AddDay()
	}
}

// RemoveDay deletes the day at index i. Later days move up one position.
func (d *Draft) RemoveDay(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.Days = append(d.Days[:i], d.Days[i+1:]...)
	return nil
}

// MoveDay moves the day at from so it ends up at index to.
func (d *Draft) MoveDay(from, to int) error {
	if err := d.check(from); err != nil {
		return err
	}
	if err := d.check(to); err != nil {
		return err
	}
	day := d.Days[from]
	d.Days = append(d.Days[:from], d.Days[from+1:]...)
	d.Days = append(d.Days[:to], append([]DayDraft{day}, d.Days[to:]...)...)
	return nil
}

// SetActivities replaces the activity inputs of day i.
func (d *Draft) SetActivities(i int, inputs []string) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.Days[i].Activities = append([]string(nil), inputs...)
	return nil
}

// SetDayNotes replaces the notes of day i.
func (d *Draft) SetDayNotes(i int, notes string) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.Days[i].Notes = notes
	return nil
}

// Build turns the editor state into an itinerary. Days are numbered 1..N by
// position and keep only their non-blank activities.
func (d Draft) Build() Itinerary {
	days := make([]Day, len(d.Days))
	for i, day := range d.Days {
		activities := make([]string, 0, len(day.Activities))
		for _, activity := range day.Activities {
			if activity = strings.TrimSpace(activity); activity != "" {
				activities = append(activities, activity)
			}
		}
		days[i] = Day{
			DayNumber:  i + 1,
			Activities: activities,
			Notes:      strings.TrimSpace(day.Notes),
		}
	}
	return Itinerary{
		ID:          d.ID,
		Origin:      strings.TrimSpace(d.Origin),
		Destination: strings.TrimSpace(d.Destination),
		StartDate:   strings.TrimSpace(d.StartDate),
		EndDate:     strings.TrimSpace(d.EndDate),
		Budget:      d.Budget,
		Notes:       strings.TrimSpace(d.Notes),
		Days:        days,
		CreatedAt:   d.createdAt,
	}
}

func (d *Draft) check(i int) error {
	if i < 0 || i >= len(d.Days) {
		return fmt.Errorf("%w: %d of %d", ErrDayRange, i, len(d.Days))
	}
	return nil
}

// draftFrom reopens a saved itinerary for editing in saved day order.
func draftFrom(it Itinerary) Draft {
	days := make([]DayDraft, len(it.Days))
	for i, day := range it.Days {
		days[i] = DayDraft{
			Activities: append([]string(nil), day.Activities...),
			Notes:      day.Notes,
		}
	}
	return Draft{
		ID:          it.ID,
		Origin:      it.Origin,
		Destination: it.Destination,
		StartDate:   it.StartDate,
		EndDate:     it.EndDate,
		Budget:      it.Budget,
		Notes:       it.Notes,
		Days:        days,
		createdAt:   it.CreatedAt,
	}
}
