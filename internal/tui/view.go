package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/tripnotes/internal/chats"
)

func (m *model) View() string {
	var body string
	switch m.screen {
	case screenNotes:
		body = m.viewNotes()
	case screenItineraries:
		body = m.viewItineraries()
	case screenPlanner:
		body = m.viewPlanner()
	default:
		body = m.viewChat()
	}
	parts := []string{m.tabsView(), body}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	parts = append(parts, m.statusBarView())
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	return joinNonEmpty(parts)
}

func (m *model) tabsView() string {
	tabs := []string{brandStyle.Render("tripnotes")}
	for i, s := range screenOrder {
		label := fmt.Sprintf("%d %s", i+1, s)
		if s == m.screen {
			tabs = append(tabs, activeTabStyle.Render(label))
			continue
		}
		tabs = append(tabs, tabStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) viewChat() string {
	m.refreshTranscriptIfDirty()
	current := m.ws.Chats.Current()
	header := subtitleStyle.Render(current.DisplayTitle())
	if m.ws.Chats.State(current.ID) == chats.StateDraft {
		header = joinInline(header, taglineStyle.Render("new chat, not saved yet"))
	} else if total := m.ws.Chats.Len(); total > 1 {
		header = joinInline(header, helperStyle.Render(fmt.Sprintf("[ ] to switch between %d chats", total)))
	}
	parts := []string{header, m.viewport.View()}
	if notice := m.chatNotice(); notice != "" {
		parts = append(parts, noticeStyle.Render(notice))
	}
	if m.ws.Sender.Typing() {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("%s Assistant is typing…", m.spinner.View())))
	}
	composer := m.composer.View()
	if m.mode != modeInsert {
		composer = helperStyle.Render("Press i to write • j/k select a card • a adds it to your note • ? for keys")
	}
	parts = append(parts, joinNonEmpty([]string{sectionHeaderStyle.Render(m.composerTitle()), composer}))
	return joinNonEmpty(parts)
}

func (m *model) composerTitle() string {
	if m.chat.purpose == composeRename && m.mode == modeInsert {
		return "Rename chat"
	}
	return "Message"
}

func joinInline(parts ...string) string {
	return strings.Join(parts, "  ")
}

func (m *model) statusBarView() string {
	stats := []string{
		fmt.Sprintf("Mode %s", m.modeLabel()),
		fmt.Sprintf("Chats %d", m.ws.Chats.Len()),
		fmt.Sprintf("Notes %d", m.ws.Notes.Len()),
	}
	if note, ok := m.ws.Notes.Active(); ok {
		stats = append(stats, fmt.Sprintf("Adding to %s", truncate(note.DisplayTitle(), 24)))
	}
	if m.ws.Client != nil {
		stats = append(stats, fmt.Sprintf("Backend %s", m.ws.Client.Name()))
	}
	stats = append(stats, m.tracks.badges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) keyHints() []keyHint {
	hints := []keyHint{
		{"Tab", "Next screen"},
		{"1-4", "Jump to screen"},
		{"?", "Toggle keys"},
		{"q", "Quit"},
	}
	switch m.screen {
	case screenNotes:
		hints = append(hints,
			keyHint{"j/k", "Pick note"},
			keyHint{"J/K", "Pick card"},
			keyHint{"Enter", "Add cards here"},
			keyHint{"u", "Close note"},
			keyHint{"c", "New note"},
			keyHint{"e", "Edit"},
			keyHint{"d", "Delete note"},
			keyHint{"x", "Remove card"},
			keyHint{"X", "Clear cards"},
			keyHint{"y", "Copy link"},
		)
	case screenItineraries:
		hints = append(hints,
			keyHint{"j/k", "Move"},
			keyHint{"n", "New"},
			keyHint{"e", "Edit"},
			keyHint{"d", "Delete"},
			keyHint{"+/-", "Add/remove day"},
			keyHint{"</>", "Reorder day"},
			keyHint{"s", "Save draft"},
			keyHint{"Esc", "Discard draft"},
		)
	case screenPlanner:
		hints = append(hints,
			keyHint{"i", "Edit form"},
			keyHint{"Enter", "Plan"},
			keyHint{"j/k", "Pick option"},
			keyHint{"a", "Add to note"},
			keyHint{"y", "Copy link"},
			keyHint{"t", "Draft itinerary"},
		)
	default:
		hints = append(hints,
			keyHint{"i", "Write"},
			keyHint{"j/k", "Pick card"},
			keyHint{"a", "Add to note"},
			keyHint{"y", "Copy link"},
			keyHint{"n", "New chat"},
			keyHint{"d", "Delete chat"},
			keyHint{"R", "Rename chat"},
			keyHint{"[/]", "Switch chat"},
			keyHint{"g/G", "Top or bottom"},
		)
	}
	return hints
}

func (m *model) keyLegendView() string {
	hints := m.keyHints()
	rows := []string{sectionHeaderStyle.Render(m.screen.String() + " keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(fmt.Sprintf(" %-16s", hint.Description))
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}
