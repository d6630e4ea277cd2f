package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/tripnotes/internal/chats"
	"github.com/csheth/tripnotes/internal/workflow"
)

func (m *model) handleChatKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "i", "enter":
		m.startComposer(composeMessage, "")
		return m, textinput.Blink
	case "R":
		current := m.ws.Chats.Current()
		if m.ws.Chats.State(current.ID) == chats.StateDraft {
			m.infoMessage = "Send a message before renaming this chat."
			return m, nil
		}
		m.startComposer(composeRename, current.DisplayTitle())
		return m, textinput.Blink
	case "j", "down":
		m.moveCardCursor(1)
	case "k", "up":
		m.moveCardCursor(-1)
	case "a":
		m.addSelectedCard()
	case "y":
		m.copySelectedLink()
	case "n":
		m.ws.Chats.NewChat()
		m.resetChatView()
		m.infoMessage = "New chat. Press i to start typing."
	case "d":
		m.deleteCurrentChat()
	case "[":
		m.stepChat(-1)
	case "]":
		m.stepChat(1)
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}
	return m, nil
}

func (m *model) startComposer(purpose composerPurpose, value string) {
	m.chat.purpose = purpose
	m.mode = modeInsert
	m.composer.SetValue(value)
	m.composer.CursorEnd()
	if purpose == composeRename {
		m.composer.Placeholder = "Chat title"
	} else {
		m.composer.Placeholder = "Ask about flights, hotels, food or things to do"
	}
	m.composer.Focus()
}

func (m *model) stopComposer() {
	m.composer.SetValue("")
	m.composer.Blur()
	m.mode = modeNormal
	m.chat.purpose = composeMessage
}

func (m *model) handleComposerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.stopComposer()
		return m, nil
	case tea.KeyEnter:
		value := m.composer.Value()
		if m.chat.purpose == composeRename {
			m.stopComposer()
			m.renameCurrentChat(value)
			return m, nil
		}
		return m, m.submitMessage(value)
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return m, cmd
}

// submitMessage records the user message and starts the network job. The
// reply comes back as a chatReplyMsg holding the captured Pending.
func (m *model) submitMessage(text string) tea.Cmd {
	pending, err := m.ws.Sender.Begin(text)
	switch {
	case errors.Is(err, workflow.ErrEmptyMessage):
		m.infoMessage = "Type a message first."
		return nil
	case errors.Is(err, workflow.ErrSendInFlight):
		m.infoMessage = "Still waiting for the last reply in this chat."
		return nil
	case err != nil:
		m.setError("send failed", err)
		return nil
	}
	m.composer.SetValue("")
	m.errorMessage = ""
	m.chat.notice = ""
	if pending.StoreErr != nil {
		m.setError("could not save your message", pending.StoreErr)
	}
	m.chat.dirty = true
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindChat, sendJob(m.ws.Sender, pending)))
}

func (m *model) handleChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	out := m.ws.Sender.Complete(msg.pending, msg.reply, msg.err)
	switch out.Delivery {
	case workflow.DeliveredVisible:
		m.chat.dirty = true
		m.refreshTranscript()
		m.viewport.GotoBottom()
	case workflow.DeliveredBackground:
		title := "another chat"
		if chat, ok := m.ws.Chats.Get(out.ChatID); ok {
			title = fmt.Sprintf("%q", chat.DisplayTitle())
		}
		m.infoMessage = fmt.Sprintf("Reply arrived for %s.", title)
	case workflow.DeliveredSynthesized:
		m.infoMessage = "A reply arrived for a deleted chat; it was restored to your chat list."
	case workflow.DeliveryFailed:
		if out.Notice != "" {
			m.chat.notice = out.Notice
			m.chat.noticeChatID = out.ChatID
		}
	}
	if out.Fallback {
		m.logger.Debug("assistant reply used fallback text", "chat_id", out.ChatID)
	}
	if out.Err != nil && out.Delivery != workflow.DeliveryFailed {
		m.setError("could not save the reply", out.Err)
	}
	return m, nil
}

func (m *model) renameCurrentChat(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		m.infoMessage = "Title unchanged."
		return
	}
	chat, err := m.ws.Chats.Rename(m.ws.Chats.CurrentID(), title)
	if err != nil {
		m.setError("rename failed", err)
		return
	}
	m.infoMessage = fmt.Sprintf("Renamed chat to %q.", chat.DisplayTitle())
}

func (m *model) deleteCurrentChat() {
	current := m.ws.Chats.Current()
	if err := m.ws.Chats.Delete(current.ID); err != nil {
		m.setError("delete failed", err)
		return
	}
	m.resetChatView()
	m.infoMessage = fmt.Sprintf("Deleted %q.", current.DisplayTitle())
}

// stepChat moves through stored chats, most recent first.
func (m *model) stepChat(step int) {
	list := m.ws.Chats.List()
	if len(list) == 0 {
		m.infoMessage = "No saved chats yet."
		return
	}
	idx := -1
	currentID := m.ws.Chats.CurrentID()
	for i, chat := range list {
		if chat.ID == currentID {
			idx = i
		}
	}
	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = len(list) - 1
	default:
		idx = (idx + step + len(list)) % len(list)
	}
	chat, err := m.ws.Chats.Switch(list[idx].ID)
	if err != nil {
		m.setError("switch failed", err)
		return
	}
	m.resetChatView()
	m.infoMessage = fmt.Sprintf("Chat %d/%d: %s", idx+1, len(list), chat.DisplayTitle())
}

func (m *model) resetChatView() {
	m.chat.cursor = -1
	m.chat.dirty = true
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

func (m *model) moveCardCursor(step int) {
	m.refreshTranscript()
	if len(m.chat.blocks) == 0 {
		m.infoMessage = "No cards in this chat yet."
		return
	}
	next := m.chat.cursor + step
	if m.chat.cursor < 0 {
		if step > 0 {
			next = 0
		} else {
			next = len(m.chat.blocks) - 1
		}
	}
	if next < 0 {
		next = 0
	}
	if next >= len(m.chat.blocks) {
		next = len(m.chat.blocks) - 1
	}
	m.chat.cursor = next
	m.chat.dirty = true
	m.refreshTranscript()
	m.ensureCardVisible()
}

func (m *model) ensureCardVisible() {
	if m.chat.cursor < 0 || m.chat.cursor >= len(m.chat.cardLines) {
		return
	}
	line := m.chat.cardLines[m.chat.cursor]
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height-4 {
		m.viewport.SetYOffset(line)
	}
}

func (m *model) addSelectedCard() {
	m.refreshTranscript()
	if m.chat.cursor < 0 || m.chat.cursor >= len(m.chat.blocks) {
		m.infoMessage = "Select a card with j/k first."
		return
	}
	key := m.addedKey(m.ws.Chats.CurrentID(), m.chat.cursor)
	result, err := m.ws.Collector.AddBlock(m.chat.blocks[m.chat.cursor])
	if err != nil {
		m.setError("add to note failed", err)
		return
	}
	m.chat.added[key] = true
	m.chat.dirty = true
	if result.Navigate {
		m.switchScreen(screenNotes)
		m.infoMessage = fmt.Sprintf("Created %q with %s.", result.NoteTitle, result.Card.Title)
		return
	}
	m.infoMessage = fmt.Sprintf("Added %s to %q.", result.Card.Title, result.NoteTitle)
}

func (m *model) copySelectedLink() {
	m.refreshTranscript()
	if m.chat.cursor < 0 || m.chat.cursor >= len(m.chat.blocks) {
		m.infoMessage = "Select a card with j/k first."
		return
	}
	m.copyLink(blockCard(m.chat.blocks[m.chat.cursor]).Link)
}

func (m *model) copyLink(link string) {
	link = strings.TrimSpace(link)
	if link == "" {
		m.infoMessage = "This card has no link."
		return
	}
	if err := copyToClipboard(link); err != nil {
		m.setError("copy failed", err)
		return
	}
	m.infoMessage = "Link copied."
}

func (m *model) addedKey(chatID string, index int) string {
	return fmt.Sprintf("%s#%d", chatID, index)
}

func (m *model) refreshTranscriptIfDirty() {
	if m.chat.dirty {
		m.refreshTranscript()
	}
}

// refreshTranscript re-reads the open chat and rebuilds the viewport.
func (m *model) refreshTranscript() {
	view := m.buildTranscript(m.ws.Chats.Current())
	m.chat.blocks = view.blocks
	m.chat.cardLines = view.cardLines
	if m.chat.cursor >= len(m.chat.blocks) {
		m.chat.cursor = len(m.chat.blocks) - 1
	}
	m.viewport.SetContent(view.content)
	m.chat.dirty = false
}

func (m *model) chatNotice() string {
	if m.chat.notice == "" || m.chat.noticeChatID != m.ws.Chats.CurrentID() {
		return ""
	}
	return m.chat.notice
}
