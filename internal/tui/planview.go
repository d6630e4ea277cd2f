package tui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/workflow"
)

const (
	planOrigin = iota
	planDestination
	planDeparture
	planReturn
	planBudget
	planAdults
)

var plannerLabels = []string{"From", "To", "Departure", "Return", "Budget", "Adults"}

func newPlannerInputs() []textinput.Model {
	placeholders := []string{"Berlin", "Lisbon", "YYYY-MM-DD (default: in a week)", "YYYY-MM-DD (default: +5 days)", "0", "1"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, placeholder := range placeholders {
		input := textinput.New()
		input.Placeholder = placeholder
		input.CharLimit = 80
		input.Width = 40
		inputs[i] = input
	}
	return inputs
}

func (m *model) handlePlannerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "i", "e":
		m.mode = modeInsert
		return m, m.planner.inputs[m.planner.focus].Focus()
	case "enter", "g":
		return m, m.generatePlan()
	case "j", "down":
		m.movePlanCursor(1)
	case "k", "up":
		m.movePlanCursor(-1)
	case "a":
		m.addPlanOption()
	case "y":
		if opt, ok := m.selectedPlanOption(); ok {
			m.copyLink(opt.card.Link)
		}
	case "t":
		m.seedItinerary()
	}
	return m, nil
}

func (m *model) handlePlannerFormKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.planner.inputs[m.planner.focus].Blur()
		m.mode = modeNormal
		return m, nil
	case "enter":
		m.planner.inputs[m.planner.focus].Blur()
		m.mode = modeNormal
		return m, m.generatePlan()
	case "tab", "down":
		return m, m.focusPlannerInput(m.planner.focus + 1)
	case "shift+tab", "up":
		return m, m.focusPlannerInput(m.planner.focus - 1)
	}
	var cmd tea.Cmd
	m.planner.inputs[m.planner.focus], cmd = m.planner.inputs[m.planner.focus].Update(key)
	return m, cmd
}

func (m *model) focusPlannerInput(idx int) tea.Cmd {
	total := len(m.planner.inputs)
	idx = (idx + total) % total
	m.planner.inputs[m.planner.focus].Blur()
	m.planner.focus = idx
	return m.planner.inputs[idx].Focus()
}

func (m *model) plannerRequest() (api.PlanRequest, error) {
	value := func(i int) string {
		return strings.TrimSpace(m.planner.inputs[i].Value())
	}
	req := api.PlanRequest{
		Origin:        value(planOrigin),
		Destination:   value(planDestination),
		DepartureDate: value(planDeparture),
		ReturnDate:    value(planReturn),
	}
	if raw := value(planBudget); raw != "" {
		budget, err := strconv.Atoi(raw)
		if err != nil {
			return api.PlanRequest{}, errors.New("budget must be a whole number")
		}
		req.Budget = budget
	}
	if raw := value(planAdults); raw != "" {
		adults, err := strconv.Atoi(raw)
		if err != nil {
			return api.PlanRequest{}, errors.New("adults must be a whole number")
		}
		req.Adults = adults
	}
	return req, nil
}

func (m *model) generatePlan() tea.Cmd {
	req, err := m.plannerRequest()
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	if req.Destination == "" {
		m.errorMessage = "Enter a destination first (press i)."
		return nil
	}
	m.planner.seq++
	m.planner.loading = true
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Planning a trip to %s…", req.Destination)
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindPlan, planJob(m.ws.Planner, m.planner.seq, req)))
}

func (m *model) handlePlanResult(msg planResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.planner.seq {
		return m, nil
	}
	m.planner.loading = false
	if msg.err != nil {
		m.setError("plan failed", msg.err)
		return m, nil
	}
	result := msg.result
	m.planner.result = &result
	m.planner.options = planOptions(result.Plan)
	m.planner.cursor = 0
	m.planner.added = map[int]bool{}
	if m.planner.inputs[planDeparture].Value() == "" {
		m.planner.inputs[planDeparture].SetValue(result.Request.DepartureDate)
	}
	if m.planner.inputs[planReturn].Value() == "" {
		m.planner.inputs[planReturn].SetValue(result.Request.ReturnDate)
	}
	m.infoMessage = planSourceLine(result)
	return m, nil
}

func planOptions(plan api.Plan) []planOption {
	var options []planOption
	for _, c := range cards.Categories() {
		for _, rec := range plan.Options(c) {
			options = append(options, planOption{category: c, record: rec, card: cards.ClassifyAs(c, rec)})
		}
	}
	return options
}

func planSourceLine(result workflow.PlanResult) string {
	total := result.Plan.Total()
	switch result.Source {
	case workflow.SourceCache:
		if result.Stale {
			return fmt.Sprintf("Offline: showing an older saved plan (%d options).", total)
		}
		return fmt.Sprintf("Offline: showing a saved plan (%d options).", total)
	case workflow.SourceMock:
		return fmt.Sprintf("Offline: showing placeholder options (%d).", total)
	default:
		return fmt.Sprintf("Found %d options. Press a to add one to your note.", total)
	}
}

func (m *model) movePlanCursor(step int) {
	total := len(m.planner.options)
	if total == 0 {
		return
	}
	m.planner.cursor += step
	if m.planner.cursor < 0 {
		m.planner.cursor = 0
	}
	if m.planner.cursor >= total {
		m.planner.cursor = total - 1
	}
}

func (m *model) selectedPlanOption() (planOption, bool) {
	if m.planner.cursor < 0 || m.planner.cursor >= len(m.planner.options) {
		return planOption{}, false
	}
	return m.planner.options[m.planner.cursor], true
}

func (m *model) addPlanOption() {
	opt, ok := m.selectedPlanOption()
	if !ok {
		m.infoMessage = "Generate a plan first."
		return
	}
	result, err := m.ws.Collector.AddPlanOption(opt.category, opt.record)
	if err != nil {
		m.setError("add to note failed", err)
		return
	}
	m.planner.added[m.planner.cursor] = true
	if result.CreatedNote {
		m.infoMessage = fmt.Sprintf("Created %q with %s.", result.NoteTitle, result.Card.Title)
		return
	}
	m.infoMessage = fmt.Sprintf("Added %s to %q.", result.Card.Title, result.NoteTitle)
}

func (m *model) seedItinerary() {
	req, err := m.plannerRequest()
	if m.planner.result != nil {
		req, err = m.planner.result.Request, nil
	}
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	draft := workflow.SeedItinerary(m.ws.Itineraries, req)
	m.switchScreen(screenItineraries)
	m.openDraft(draft)
	m.infoMessage = fmt.Sprintf("Drafted %d day(s). Press s to save.", len(draft.Days))
}

func (m *model) viewPlanner() string {
	rows := []string{sectionHeaderStyle.Render("Trip planner")}
	for i, input := range m.planner.inputs {
		label := fmt.Sprintf("  %-10s ", plannerLabels[i])
		if m.mode == modeInsert && i == m.planner.focus {
			label = selectionLineStyle.Render(label)
		}
		rows = append(rows, label+input.View())
	}
	hint := "i edits the form • Enter plans • j/k pick • a adds to note • y copies link • t drafts an itinerary"
	if m.mode == modeInsert {
		hint = "Tab moves between fields • Enter plans • Esc stops editing"
	}
	rows = append(rows, helperStyle.Render(hint))
	parts := []string{strings.Join(rows, "\n")}
	if m.planner.loading {
		parts = append(parts, fmt.Sprintf("%s Planning…", m.spinner.View()))
	}
	if m.planner.result != nil {
		parts = append(parts, m.planOptionsView())
	}
	return joinNonEmpty(parts)
}

func (m *model) planOptionsView() string {
	plan := m.planner.result.Plan
	width := m.wrapWidth(4)
	var sections []string
	idx := 0
	for _, c := range cards.Categories() {
		count := len(plan.Options(c))
		if count == 0 {
			continue
		}
		lines := []string{sectionHeaderStyle.Render(fmt.Sprintf("%s (%d)", c.Label(), count))}
		for i := 0; i < count; i++ {
			opt := m.planner.options[idx]
			footer := ""
			if m.planner.added[idx] {
				footer = cardAddedStyle.Render(workflow.AddedLabel)
			} else if idx == m.planner.cursor {
				footer = cardButtonStyle.Render("a  Add to note")
			}
			lines = append(lines, renderCard(opt.card, idx == m.planner.cursor, footer, width))
			idx++
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if links := linksView(plan.Links); links != "" {
		sections = append(sections, links)
	}
	return joinNonEmpty(sections)
}

func linksView(links map[string]string) string {
	if len(links) == 0 {
		return ""
	}
	keys := make([]string, 0, len(links))
	for key := range links {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	lines := []string{sectionHeaderStyle.Render("Search links")}
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("  %-12s %s", key, helperStyle.Render(links[key])))
	}
	return strings.Join(lines, "\n")
}
