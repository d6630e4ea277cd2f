package tui

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/itinerary"
	"github.com/csheth/tripnotes/internal/notes"
	"github.com/csheth/tripnotes/internal/workflow"
)

const defaultJobTimeout = 90 * time.Second

// Config wires the program to an opened workspace.
type Config struct {
	Workspace *workflow.Workspace
	Logger    *slog.Logger
	// JobTimeout bounds each network job. Zero means 90 seconds.
	JobTimeout time.Duration
}

type composerPurpose int

const (
	composeMessage composerPurpose = iota
	composeRename
)

type chatState struct {
	cursor    int
	blocks    []cards.Block
	cardLines []int
	added     map[string]bool
	purpose   composerPurpose
	// notice is the transient failure line for noticeChatID.
	notice       string
	noticeChatID string
	dirty        bool
}

type noteField int

const (
	fieldTitle noteField = iota
	fieldContent
)

type notesState struct {
	cursor     int
	cardCursor int
	editor     *notes.Editor
	field      noteField
	title      textinput.Model
	content    textarea.Model
}

type itineraryState struct {
	cursor int
	draft  *itinerary.Draft
	field  int
	input  textinput.Model
}

type planOption struct {
	category cards.Category
	record   cards.Record
	card     cards.Card
}

type plannerState struct {
	inputs  []textinput.Model
	focus   int
	seq     int
	loading bool
	result  *workflow.PlanResult
	options []planOption
	cursor  int
	added   map[int]bool
}

type model struct {
	config Config
	ws     *workflow.Workspace
	logger *slog.Logger
	jobs   *jobBus
	tracks jobTracker

	layout   pageLayout
	screen   screen
	mode     interactionMode
	spinner  spinner.Model
	viewport viewport.Model
	composer textinput.Model

	helpVisible  bool
	errorMessage string
	infoMessage  string

	chat    chatState
	notes   notesState
	trips   itineraryState
	planner plannerState
}

// New builds the root model. cfg.Workspace must be set.
func New(cfg Config) tea.Model {
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Workspace.Logger
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	composer := textinput.New()
	composer.Placeholder = "Ask about flights, hotels, food or things to do"
	composer.CharLimit = 2000
	composer.Width = 72
	composer.Prompt = "› "

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	noteTitle := textinput.New()
	noteTitle.Placeholder = notes.DefaultTitle
	noteTitle.CharLimit = 120
	noteTitle.Width = 60

	fieldInput := textinput.New()
	fieldInput.CharLimit = 500
	fieldInput.Width = 60

	m := &model{
		config:   cfg,
		ws:       cfg.Workspace,
		logger:   logger.With("component", "tui"),
		layout:   newPageLayout(),
		screen:   screenChat,
		mode:     modeNormal,
		spinner:  spin,
		viewport: vp,
		composer: composer,
		chat: chatState{
			cursor: -1,
			added:  map[string]bool{},
			dirty:  true,
		},
		notes: notesState{
			title:   noteTitle,
			content: newNoteTextarea(),
		},
		trips: itineraryState{input: fieldInput},
		planner: plannerState{
			inputs: newPlannerInputs(),
			added:  map[int]bool{},
		},
		tracks: newJobTracker(),
	}
	m.jobs = newJobBus(m.logger.With("component", "jobs"), timeout)
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.tracks.observe(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.tracks.observe(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case chatReplyMsg:
		return m.handleChatReply(msg)
	case planResultMsg:
		return m.handlePlanResult(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseMsg:
		if m.screen == screenChat {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.shutdown()
			return m, tea.Quit
		}
		if m.mode == modeInsert {
			return m.handleInsertKey(msg)
		}
		return m.handleNormalKey(msg)
	}
	return m, nil
}

func (m *model) handleNormalKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "tab":
		m.cycleScreen(1)
		return m, nil
	case "shift+tab":
		m.cycleScreen(-1)
		return m, nil
	case "1", "2", "3", "4":
		m.switchScreen(screenOrder[int(key.String()[0]-'1')])
		return m, nil
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "q":
		if m.screen == screenItineraries && m.trips.draft != nil {
			break
		}
		m.shutdown()
		return m, tea.Quit
	}
	switch m.screen {
	case screenNotes:
		return m.handleNotesKey(key)
	case screenItineraries:
		return m.handleItineraryKey(key)
	case screenPlanner:
		return m.handlePlannerKey(key)
	default:
		return m.handleChatKey(key)
	}
}

func (m *model) handleInsertKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenNotes:
		return m.handleNoteEditorKey(key)
	case screenItineraries:
		return m.handleItineraryFieldKey(key)
	case screenPlanner:
		return m.handlePlannerFormKey(key)
	default:
		return m.handleComposerKey(key)
	}
}

func (m *model) cycleScreen(step int) {
	idx := 0
	for i, s := range screenOrder {
		if s == m.screen {
			idx = i
		}
	}
	idx = (idx + step + len(screenOrder)) % len(screenOrder)
	m.switchScreen(screenOrder[idx])
}

func (m *model) switchScreen(target screen) {
	if target == m.screen {
		return
	}
	m.closeNoteEditor()
	m.screen = target
	m.mode = modeNormal
	m.errorMessage = ""
	m.infoMessage = ""
	if target == screenChat {
		m.chat.dirty = true
	}
	if target == screenNotes {
		m.focusActiveNote()
	}
}

func (m *model) resize(width, height int) {
	m.layout.Update(width, height)
	m.viewport.Width = m.layout.viewportWidth
	m.viewport.Height = m.layout.viewportHeight
	m.composer.Width = m.layout.viewportWidth - 4
	m.notes.title.Width = m.layout.viewportWidth - 10
	m.notes.content.SetWidth(m.layout.viewportWidth)
	m.notes.content.SetHeight(m.layout.listHeight)
	m.trips.input.Width = m.layout.viewportWidth - 20
	for i := range m.planner.inputs {
		m.planner.inputs[i].Width = m.layout.viewportWidth - 20
	}
	m.chat.dirty = true
}

func (m *model) busy() bool {
	return m.ws.Sender.Typing() || m.planner.loading
}

// shutdown flushes the open note editor so a pending auto-save is not lost.
func (m *model) shutdown() {
	m.closeNoteEditor()
}

func (m *model) setError(prefix string, err error) {
	m.logger.Warn(prefix, "err", err)
	m.errorMessage = prefix + ": " + err.Error()
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func (m *model) modeLabel() string {
	if m.mode == modeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

var (
	titleStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Underline(true)
	subtitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	sectionHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	subjectStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	noticeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffb347")).Padding(0, 1)
	youLabelStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	accentColor    = lipgloss.Color("#ff8c00")
	emberColor     = lipgloss.Color("#2b1400")
	textColor      = lipgloss.Color("#fff4d0")
	secondaryColor = lipgloss.Color("#ffb347")

	tabStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 2)
	activeTabStyle     = lipgloss.NewStyle().Bold(true).Foreground(textColor).Background(emberColor).Padding(0, 2)
	brandStyle         = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(secondaryColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	cardBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	cardSelectedStyle  = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(accentColor).Padding(0, 1)
	cardTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(textColor)
	cardCategoryStyle  = lipgloss.NewStyle().Foreground(secondaryColor)
	cardButtonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	cardAddedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")).Italic(true)
	selectionLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))
)
