package tui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/tripnotes/internal/cards"
	"github.com/csheth/tripnotes/internal/workflow"
)

const maxCardWidth = 64

var cardIcons = map[string]string{
	"plane":      "✈",
	"train":      "🚆",
	"bus":        "🚌",
	"car":        "🚗",
	"hotel":      "🏨",
	"restaurant": "🍽",
	"activity":   "🎟",
}

func blockCard(block cards.Block) cards.Card {
	return cards.Classify(block.Record())
}

func (m *model) renderCardWidget(block cards.Block, selected, added bool, width int) string {
	footer := cardButtonStyle.Render("a  Add to note")
	if added {
		footer = cardAddedStyle.Render(workflow.AddedLabel)
	}
	return renderCard(blockCard(block), selected, footer, width)
}

// renderCard draws a bordered card. footer goes under the card body and may
// be empty.
func renderCard(card cards.Card, selected bool, footer string, width int) string {
	inner := width - 4
	if inner > maxCardWidth {
		inner = maxCardWidth
	}
	if inner < 16 {
		inner = 16
	}
	heading := card.Category.Label()
	if icon, ok := cardIcons[card.CardType]; ok {
		heading = icon + " " + heading
	}
	lines := []string{
		cardCategoryStyle.Render(heading),
		cardTitleStyle.Render(wordwrap.String(card.Title, inner)),
	}
	if card.Subtitle != "" {
		lines = append(lines, subjectStyle.Render(wordwrap.String(card.Subtitle, inner)))
	}
	if card.Details != "" {
		lines = append(lines, wordwrap.String(card.Details, inner))
	}
	var meta []string
	if card.Price != "" {
		meta = append(meta, "Price "+string(card.Price))
	}
	if card.Rating != "" {
		meta = append(meta, "★ "+string(card.Rating))
	}
	if len(meta) > 0 {
		lines = append(lines, helperStyle.Render(strings.Join(meta, "  •  ")))
	}
	if card.Link != "" {
		lines = append(lines, helperStyle.Render(truncate(card.Link, inner)))
	}
	if footer != "" {
		lines = append(lines, footer)
	}
	style := cardBoxStyle
	if selected {
		style = cardSelectedStyle
	}
	return style.Width(inner).Render(strings.Join(lines, "\n"))
}
