package tui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/chats"
)

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	listHeight     int
	composerHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		listHeight:     10,
		composerHeight: 1,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.composerHeight = 1
	// tabs, status bar, info line and the composer header
	const chrome = 8
	usable := height - chrome - l.composerHeight
	if usable < 6 {
		usable = 6
	}
	l.viewportHeight = usable
	l.listHeight = usable / 2
	if l.listHeight < 4 {
		l.listHeight = 4
	}
}

// transcriptView is the rendered chat plus the line each card starts on.
type transcriptView struct {
	content   string
	blocks    []cards.Block
	cardLines []int
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (m *model) buildTranscript(chat chats.Chat) transcriptView {
	cb := &contentBuilder{}
	view := transcriptView{}
	if len(chat.Messages) == 0 {
		cb.WriteString(sectionHeaderStyle.Render("Where to next?"))
		cb.WriteRune('\n')
		cb.WriteString(helperStyle.Render("Press i and ask for flights, hotels, restaurants or things to do."))
		cb.WriteRune('\n')
		view.content = cb.String()
		return view
	}
	wrap := m.wrapWidth(4)
	for idx, msg := range chat.Messages {
		cb.WriteString(messageLabel(msg.Role))
		cb.WriteRune('\n')
		for _, segment := range cards.Split(msg.Content) {
			if segment.Block == nil {
				text := strings.Trim(segment.Text, "\n")
				if strings.TrimSpace(text) == "" {
					continue
				}
				cb.WriteString(indentMultiline(wordwrap.String(text, wrap), "  "))
				cb.WriteRune('\n')
				continue
			}
			if msg.Role != chats.RoleAssistant {
				cb.WriteString(indentMultiline(wordwrap.String(segment.Block.Span, wrap), "  "))
				cb.WriteRune('\n')
				continue
			}
			index := len(view.blocks)
			view.blocks = append(view.blocks, *segment.Block)
			view.cardLines = append(view.cardLines, cb.Line())
			widget := m.renderCardWidget(*segment.Block, index == m.chat.cursor, m.chat.added[m.addedKey(chat.ID, index)], wrap)
			cb.WriteString(indentMultiline(widget, "  "))
			cb.WriteRune('\n')
		}
		if idx < len(chat.Messages)-1 {
			cb.WriteRune('\n')
		}
	}
	view.content = cb.String()
	return view
}

func messageLabel(role chats.Role) string {
	if role == chats.RoleUser {
		return youLabelStyle.Render("You")
	}
	return assistantLabelStyle.Render("Assistant")
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	if limit <= 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
