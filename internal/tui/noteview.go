package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/notes"
)

func (m *model) handleNotesKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "j", "down":
		m.moveNoteCursor(1)
	case "k", "up":
		m.moveNoteCursor(-1)
	case "J":
		m.moveNoteCardCursor(1)
	case "K":
		m.moveNoteCardCursor(-1)
	case "enter", "o":
		note, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		if _, err := m.ws.Notes.Select(note.ID); err != nil {
			m.setError("open note failed", err)
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("New cards go to %q.", note.DisplayTitle())
	case "u":
		if err := m.ws.Notes.Deselect(); err != nil {
			m.setError("close note failed", err)
			return m, nil
		}
		m.infoMessage = "No open note. The next added card starts a new one."
	case "c":
		note, err := m.ws.Notes.Create("")
		if err != nil {
			m.setError("create note failed", err)
			if note.ID == "" {
				return m, nil
			}
		}
		m.focusNote(note.ID)
		return m, m.openNoteEditor(note.ID)
	case "e":
		note, ok := m.selectedNote()
		if !ok {
			m.infoMessage = "Press c to create a note."
			return m, nil
		}
		return m, m.openNoteEditor(note.ID)
	case "d":
		note, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		if err := m.ws.Notes.Delete(note.ID); err != nil {
			m.setError("delete note failed", err)
			return m, nil
		}
		m.clampNoteCursor()
		m.infoMessage = fmt.Sprintf("Deleted %q.", note.DisplayTitle())
	case "x":
		note, card, ok := m.selectedNoteCard()
		if !ok {
			m.infoMessage = "Select a card with J/K first."
			return m, nil
		}
		if _, err := m.ws.Notes.RemoveCard(note.ID, card.ID); err != nil {
			m.setError("remove card failed", err)
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("Removed %s.", card.Title)
		m.clampNoteCursor()
	case "X":
		note, ok := m.selectedNote()
		if !ok || len(note.Cards) == 0 {
			m.infoMessage = "Nothing to clear."
			return m, nil
		}
		if _, err := m.ws.Notes.ClearCards(note.ID); err != nil {
			m.setError("clear cards failed", err)
			return m, nil
		}
		m.notes.cardCursor = 0
		m.infoMessage = fmt.Sprintf("Cleared %d card(s) from %q.", len(note.Cards), note.DisplayTitle())
	case "y":
		if _, card, ok := m.selectedNoteCard(); ok {
			m.copyLink(card.Link)
		}
	}
	return m, nil
}

func (m *model) openNoteEditor(id string) tea.Cmd {
	m.closeNoteEditor()
	editor, err := m.ws.Notes.Edit(id, m.ws.AutosaveDelay)
	if err != nil {
		m.setError("edit note failed", err)
		return nil
	}
	m.notes.editor = editor
	m.notes.title.SetValue(editor.Title())
	m.notes.title.CursorEnd()
	m.notes.content.SetValue(editor.Content())
	m.notes.field = fieldTitle
	m.notes.content.Blur()
	m.mode = modeInsert
	m.infoMessage = "Editing. Changes save as you type; Esc closes the editor."
	return m.notes.title.Focus()
}

// closeNoteEditor flushes outstanding edits. It is safe to call with no
// editor open.
func (m *model) closeNoteEditor() {
	if m.notes.editor == nil {
		return
	}
	id := m.notes.editor.NoteID()
	if err := m.notes.editor.Close(); err != nil {
		m.setError("save note failed", err)
	}
	m.notes.editor = nil
	m.focusNote(id)
	m.notes.title.Blur()
	m.notes.content.Blur()
	if m.screen == screenNotes {
		m.mode = modeNormal
	}
}

func (m *model) handleNoteEditorKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.notes.editor == nil {
		m.mode = modeNormal
		return m, nil
	}
	switch key.Type {
	case tea.KeyEsc:
		m.closeNoteEditor()
		m.infoMessage = "Note saved."
		return m, nil
	case tea.KeyTab:
		if err := m.notes.editor.Blur(); err != nil {
			m.setError("save note failed", err)
		}
		if m.notes.field == fieldTitle {
			m.notes.field = fieldContent
			m.notes.title.Blur()
			return m, m.notes.content.Focus()
		}
		m.notes.field = fieldTitle
		m.notes.content.Blur()
		return m, m.notes.title.Focus()
	}

	var cmd tea.Cmd
	if m.notes.field == fieldTitle {
		if key.Type == tea.KeyEnter {
			m.notes.field = fieldContent
			m.notes.title.Blur()
			return m, m.notes.content.Focus()
		}
		before := m.notes.title.Value()
		m.notes.title, cmd = m.notes.title.Update(key)
		if value := m.notes.title.Value(); value != before {
			m.notes.editor.SetTitle(value)
		}
		return m, cmd
	}
	before := m.notes.content.Value()
	m.notes.content, cmd = m.notes.content.Update(key)
	if value := m.notes.content.Value(); value != before {
		m.notes.editor.SetContent(value)
	}
	return m, cmd
}

func (m *model) selectedNote() (notes.Note, bool) {
	list := m.ws.Notes.List()
	if len(list) == 0 {
		return notes.Note{}, false
	}
	m.clampNoteCursor()
	return list[m.notes.cursor], true
}

// noteCards flattens a note's cards in display order.
func noteCards(note notes.Note) []cards.Card {
	var out []cards.Card
	for _, c := range cards.Categories() {
		out = append(out, note.CardsIn(c)...)
	}
	return out
}

func (m *model) selectedNoteCard() (notes.Note, cards.Card, bool) {
	note, ok := m.selectedNote()
	if !ok {
		return notes.Note{}, cards.Card{}, false
	}
	list := noteCards(note)
	if len(list) == 0 || m.notes.cardCursor >= len(list) {
		return note, cards.Card{}, false
	}
	return note, list[m.notes.cardCursor], true
}

func (m *model) moveNoteCursor(step int) {
	m.notes.cursor += step
	m.notes.cardCursor = 0
	m.clampNoteCursor()
}

func (m *model) moveNoteCardCursor(step int) {
	note, ok := m.selectedNote()
	if !ok {
		return
	}
	total := len(note.Cards)
	if total == 0 {
		m.infoMessage = "This note has no cards."
		return
	}
	m.notes.cardCursor = (m.notes.cardCursor + step + total) % total
}

func (m *model) clampNoteCursor() {
	total := m.ws.Notes.Len()
	if m.notes.cursor >= total {
		m.notes.cursor = total - 1
	}
	if m.notes.cursor < 0 {
		m.notes.cursor = 0
	}
	if note, ok := m.noteAt(m.notes.cursor); ok && m.notes.cardCursor >= len(note.Cards) {
		m.notes.cardCursor = len(note.Cards) - 1
		if m.notes.cardCursor < 0 {
			m.notes.cardCursor = 0
		}
	}
}

func (m *model) noteAt(idx int) (notes.Note, bool) {
	list := m.ws.Notes.List()
	if idx < 0 || idx >= len(list) {
		return notes.Note{}, false
	}
	return list[idx], true
}

func (m *model) focusNote(id string) {
	for i, note := range m.ws.Notes.List() {
		if note.ID == id {
			m.notes.cursor = i
			m.notes.cardCursor = 0
			return
		}
	}
}

func (m *model) focusActiveNote() {
	if id := m.ws.Notes.ActiveID(); id != "" {
		m.focusNote(id)
	}
	m.clampNoteCursor()
}

func (m *model) viewNotes() string {
	list := m.ws.Notes.List()
	if len(list) == 0 {
		return joinNonEmpty([]string{
			sectionHeaderStyle.Render("Travel Notes"),
			helperStyle.Render("No notes yet. Press c to create one, or add a card from a chat."),
		})
	}
	m.clampNoteCursor()
	left := m.noteListView(list)
	right := m.noteDetailView(list[m.notes.cursor])
	if m.layout.windowWidth >= 110 {
		return lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	}
	return joinNonEmpty([]string{left, right})
}

func (m *model) noteListView(list []notes.Note) string {
	activeID := m.ws.Notes.ActiveID()
	rows := []string{sectionHeaderStyle.Render(fmt.Sprintf("Travel Notes (%d)", len(list)))}
	for i, note := range list {
		marker := "  "
		if note.ID == activeID {
			marker = "● "
		}
		line := fmt.Sprintf("%s%s  %s", marker, truncate(note.DisplayTitle(), 32), helperStyle.Render(countsLine(note)))
		if i == m.notes.cursor {
			line = currentLineStyle.Render(fmt.Sprintf("%s%s  %s", marker, truncate(note.DisplayTitle(), 32), countsLine(note)))
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func countsLine(note notes.Note) string {
	counts := note.Counts()
	var parts []string
	for _, c := range cards.Categories() {
		if counts[c] > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", c.Label(), counts[c]))
		}
	}
	if len(parts) == 0 {
		return "no cards"
	}
	return strings.Join(parts, " · ")
}

func (m *model) noteDetailView(note notes.Note) string {
	width := m.wrapWidth(4)
	if m.layout.windowWidth >= 110 {
		width = width / 2
	}
	parts := []string{}
	if m.notes.editor != nil && m.notes.editor.NoteID() == note.ID {
		status := "saved"
		if m.notes.editor.Pending() {
			status = "saving…"
		}
		parts = append(parts,
			subtitleStyle.Render("Title"),
			m.notes.title.View(),
			subtitleStyle.Render("Content"),
			m.notes.content.View(),
			helperStyle.Render("Tab switches field • Esc closes • "+status),
		)
	} else {
		parts = append(parts, titleStyle.Render(note.DisplayTitle()))
		if strings.TrimSpace(note.Content) != "" {
			parts = append(parts, wordwrap.String(note.Content, width))
		} else {
			parts = append(parts, helperStyle.Render("Press e to write about this trip."))
		}
	}

	selected := -1
	if _, card, ok := m.selectedNoteCard(); ok && card.ID != "" {
		selected = m.notes.cardCursor
	}
	idx := 0
	for _, c := range cards.Categories() {
		group := note.CardsIn(c)
		if len(group) == 0 {
			continue
		}
		section := []string{sectionHeaderStyle.Render(fmt.Sprintf("%s (%d)", c.Label(), len(group)))}
		for _, card := range group {
			section = append(section, renderCard(card, idx == selected, "", width))
			idx++
		}
		parts = append(parts, strings.Join(section, "\n"))
	}
	return joinNonEmpty(parts)
}

func newNoteTextarea() textarea.Model {
	area := textarea.New()
	area.Placeholder = "Plans, reminders, confirmation numbers…"
	area.ShowLineNumbers = false
	area.SetWidth(72)
	area.SetHeight(8)
	area.CharLimit = 0
	return area
}
