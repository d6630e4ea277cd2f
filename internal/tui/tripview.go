package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/tripnotes/internal/itinerary"
)

type tripFieldKind int

const (
	tripOrigin tripFieldKind = iota
	tripDestination
	tripStart
	tripEnd
	tripBudget
	tripNotes
	dayActivities
	dayNotes
)

const activitySeparator = ";"

type tripField struct {
	kind tripFieldKind
	day  int
}

func (f tripField) label() string {
	switch f.kind {
	case tripOrigin:
		return "Origin"
	case tripDestination:
		return "Destination"
	case tripStart:
		return "Start date"
	case tripEnd:
		return "End date"
	case tripBudget:
		return "Budget"
	case tripNotes:
		return "Notes"
	case dayActivities:
		return fmt.Sprintf("Day %d activities", f.day+1)
	default:
		return fmt.Sprintf("Day %d notes", f.day+1)
	}
}

func draftFields(d *itinerary.Draft) []tripField {
	fields := []tripField{
		{kind: tripOrigin, day: -1},
		{kind: tripDestination, day: -1},
		{kind: tripStart, day: -1},
		{kind: tripEnd, day: -1},
		{kind: tripBudget, day: -1},
		{kind: tripNotes, day: -1},
	}
	for i := range d.Days {
		fields = append(fields, tripField{kind: dayActivities, day: i}, tripField{kind: dayNotes, day: i})
	}
	return fields
}

func fieldValue(d *itinerary.Draft, f tripField) string {
	switch f.kind {
	case tripOrigin:
		return d.Origin
	case tripDestination:
		return d.Destination
	case tripStart:
		return d.StartDate
	case tripEnd:
		return d.EndDate
	case tripBudget:
		if d.Budget == 0 {
			return ""
		}
		return strconv.FormatFloat(d.Budget, 'f', -1, 64)
	case tripNotes:
		return d.Notes
	case dayActivities:
		return strings.Join(d.Days[f.day].Activities, activitySeparator+" ")
	default:
		return d.Days[f.day].Notes
	}
}

func setFieldValue(d *itinerary.Draft, f tripField, value string) error {
	value = strings.TrimSpace(value)
	switch f.kind {
	case tripOrigin:
		d.Origin = value
	case tripDestination:
		d.Destination = value
	case tripStart:
		d.StartDate = value
	case tripEnd:
		d.EndDate = value
	case tripBudget:
		if value == "" {
			d.Budget = 0
			return nil
		}
		budget, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.New("must be a number")
		}
		d.Budget = budget
	case tripNotes:
		d.Notes = value
	case dayActivities:
		return d.SetActivities(f.day, strings.Split(value, activitySeparator))
	default:
		return d.SetDayNotes(f.day, value)
	}
	return nil
}

func (m *model) handleItineraryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trips.draft != nil {
		return m.handleDraftKey(key)
	}
	switch key.String() {
	case "j", "down":
		m.moveTripCursor(1)
	case "k", "up":
		m.moveTripCursor(-1)
	case "n":
		draft := m.ws.Itineraries.New()
		m.openDraft(draft)
		m.infoMessage = "New itinerary. Press s to save it."
	case "e", "enter":
		list := m.ws.Itineraries.List()
		if len(list) == 0 {
			m.infoMessage = "Press n to start an itinerary."
			return m, nil
		}
		draft, err := m.ws.Itineraries.Edit(list[m.trips.cursor].ID)
		if err != nil {
			m.setError("open itinerary failed", err)
			return m, nil
		}
		m.openDraft(draft)
	case "d":
		list := m.ws.Itineraries.List()
		if len(list) == 0 {
			return m, nil
		}
		target := list[m.trips.cursor]
		if err := m.ws.Itineraries.Delete(target.ID); err != nil {
			m.setError("delete itinerary failed", err)
			return m, nil
		}
		m.moveTripCursor(0)
		m.infoMessage = fmt.Sprintf("Deleted %s.", target.Label())
	}
	return m, nil
}

func (m *model) openDraft(draft itinerary.Draft) {
	m.trips.draft = &draft
	m.trips.field = 0
	m.errorMessage = ""
}

func (m *model) moveTripCursor(step int) {
	total := len(m.ws.Itineraries.List())
	m.trips.cursor += step
	if m.trips.cursor >= total {
		m.trips.cursor = total - 1
	}
	if m.trips.cursor < 0 {
		m.trips.cursor = 0
	}
}

func (m *model) currentTripField() tripField {
	fields := draftFields(m.trips.draft)
	if m.trips.field >= len(fields) {
		m.trips.field = len(fields) - 1
	}
	if m.trips.field < 0 {
		m.trips.field = 0
	}
	return fields[m.trips.field]
}

func (m *model) handleDraftKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	draft := m.trips.draft
	switch key.String() {
	case "esc":
		m.trips.draft = nil
		m.infoMessage = "Draft discarded."
	case "j", "down":
		m.trips.field++
		m.currentTripField()
	case "k", "up":
		m.trips.field--
		m.currentTripField()
	case "enter", "i":
		field := m.currentTripField()
		m.trips.input.SetValue(fieldValue(draft, field))
		m.trips.input.CursorEnd()
		m.trips.input.Placeholder = field.label()
		m.mode = modeInsert
		return m, m.trips.input.Focus()
	case "+":
		idx := draft.AddDay()
		m.trips.field = len(draftFields(draft)) - 2
		m.infoMessage = fmt.Sprintf("Added day %d.", idx+1)
	case "-":
		field := m.currentTripField()
		if field.day < 0 {
			m.infoMessage = "Move to a day to remove it."
			return m, nil
		}
		if err := draft.RemoveDay(field.day); err != nil {
			m.setError("remove day failed", err)
			return m, nil
		}
		m.currentTripField()
		m.infoMessage = fmt.Sprintf("Removed day %d. Later days moved up.", field.day+1)
	case "<", ">":
		field := m.currentTripField()
		if field.day < 0 {
			m.infoMessage = "Move to a day to reorder it."
			return m, nil
		}
		to := field.day - 1
		if key.String() == ">" {
			to = field.day + 1
		}
		if err := draft.MoveDay(field.day, to); err != nil {
			if errors.Is(err, itinerary.ErrDayRange) {
				return m, nil
			}
			m.setError("move day failed", err)
			return m, nil
		}
		m.trips.field += (to - field.day) * 2
	case "s":
		saved, err := m.ws.Itineraries.Save(*draft)
		switch {
		case errors.Is(err, itinerary.ErrValidation):
			m.errorMessage = err.Error()
			return m, nil
		case err != nil && saved.ID == "":
			m.setError("save itinerary failed", err)
			return m, nil
		}
		m.trips.draft = nil
		m.focusTrip(saved.ID)
		m.infoMessage = fmt.Sprintf("Saved %s (%d days).", saved.Label(), len(saved.Days))
		m.errorMessage = ""
		if err != nil {
			m.setError("itinerary kept for this session but not written", err)
		}
	}
	return m, nil
}

func (m *model) handleItineraryFieldKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trips.draft == nil {
		m.mode = modeNormal
		return m, nil
	}
	switch key.Type {
	case tea.KeyEsc:
		m.trips.input.Blur()
		m.mode = modeNormal
		return m, nil
	case tea.KeyEnter:
		field := m.currentTripField()
		if err := setFieldValue(m.trips.draft, field, m.trips.input.Value()); err != nil {
			m.errorMessage = fmt.Sprintf("%s: %v", field.label(), err)
			return m, nil
		}
		m.errorMessage = ""
		m.trips.input.Blur()
		m.mode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.trips.input, cmd = m.trips.input.Update(key)
	return m, cmd
}

func (m *model) focusTrip(id string) {
	for i, it := range m.ws.Itineraries.List() {
		if it.ID == id {
			m.trips.cursor = i
			return
		}
	}
}

func (m *model) viewItineraries() string {
	if m.trips.draft != nil {
		return m.draftView()
	}
	list := m.ws.Itineraries.List()
	if len(list) == 0 {
		return joinNonEmpty([]string{
			sectionHeaderStyle.Render("Itineraries"),
			helperStyle.Render("No itineraries yet. Press n to start one, or seed one from the planner."),
		})
	}
	m.moveTripCursor(0)
	rows := []string{sectionHeaderStyle.Render(fmt.Sprintf("Itineraries (%d)", len(list)))}
	for i, it := range list {
		line := fmt.Sprintf("  %s  %s", truncate(it.Label(), 40), dateRange(it.StartDate, it.EndDate))
		if i == m.trips.cursor {
			line = currentLineStyle.Render(line)
		}
		rows = append(rows, line)
	}
	return joinNonEmpty([]string{strings.Join(rows, "\n"), m.itineraryDetail(list[m.trips.cursor])})
}

func (m *model) itineraryDetail(it itinerary.Itinerary) string {
	wrap := m.wrapWidth(6)
	lines := []string{titleStyle.Render(it.Label())}
	if it.Budget > 0 {
		lines = append(lines, helperStyle.Render(fmt.Sprintf("Budget %s", strconv.FormatFloat(it.Budget, 'f', -1, 64))))
	}
	if it.Notes != "" {
		lines = append(lines, wordwrap.String(it.Notes, wrap))
	}
	for _, day := range it.Days {
		lines = append(lines, subtitleStyle.Render(fmt.Sprintf("Day %d", day.DayNumber)))
		for _, activity := range day.Activities {
			lines = append(lines, "  • "+wordwrap.String(activity, wrap))
		}
		if day.Notes != "" {
			lines = append(lines, helperStyle.Render("  "+day.Notes))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *model) draftView() string {
	draft := m.trips.draft
	current := m.currentTripField()
	rows := []string{sectionHeaderStyle.Render("Edit itinerary")}
	for i, field := range draftFields(draft) {
		if field.kind == dayActivities {
			rows = append(rows, "", subtitleStyle.Render(fmt.Sprintf("Day %d", field.day+1)))
		}
		value := fieldValue(draft, field)
		if i == m.trips.field && m.mode == modeInsert {
			rows = append(rows, fmt.Sprintf("  %-18s %s", field.label(), m.trips.input.View()))
			continue
		}
		if value == "" {
			value = helperStyle.Render("—")
		}
		line := fmt.Sprintf("  %-18s %s", field.label(), value)
		if i == m.trips.field {
			line = selectionLineStyle.Render(fmt.Sprintf("  %-18s %s", field.label(), fieldValue(draft, field)))
		}
		rows = append(rows, line)
	}
	hint := "Enter edits • + adds a day • s saves • Esc discards"
	if current.day >= 0 {
		hint = "Enter edits • + adds • - removes • < > reorder this day • s saves • Esc discards"
	}
	if days := itinerary.TripDays(draft.StartDate, draft.EndDate); days > 0 && days != len(draft.Days) {
		hint += fmt.Sprintf(" • dates span %d days, draft has %d", days, len(draft.Days))
	}
	rows = append(rows, "", helperStyle.Render(hint))
	return strings.Join(rows, "\n")
}

func dateRange(start, end string) string {
	switch {
	case start != "" && end != "":
		return helperStyle.Render(start + " → " + end)
	case start != "":
		return helperStyle.Render("from " + start)
	default:
		return ""
	}
}
