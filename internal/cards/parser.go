package cards

import (
	"encoding/json"
	"strings"
)

const (
	// OpenTag starts a card block inside assistant text.
	OpenTag = "[CARD]"
	// CloseTag ends a card block.
	CloseTag = "[/CARD]"

	dataKey = "data"
)

// Block is one card extracted from assistant text.
type Block struct {
	// Fields holds every "key: value" line except data, verbatim after trimming.
	Fields map[string]string
	// Data is the decoded "data:" line. Nil when the block has no data line,
	// empty when the line was not a JSON object.
	Data Record
	// Span is the exact source text of the block, tags included.
	Span  string
	Start int
	End   int
}

// Segment is either a run of plain text or a card block, in source order.
type Segment struct {
	Text  string
	Block *Block
}

// Source returns the original text covered by the segment.
func (s Segment) Source() string {
	if s.Block != nil {
		return s.Block.Span
	}
	return s.Text
}

// Parse returns every well-formed card block in text, in source order.
func Parse(text string) []Block {
	var blocks []Block
	for _, segment := range Split(text) {
		if segment.Block != nil {
			blocks = append(blocks, *segment.Block)
		}
	}
	return blocks
}

// Split walks text once from left to right and cuts it into alternating text
// and card segments. Joining every segment's Source reproduces text exactly.
// An open tag without a matching close tag is left as plain text.
func Split(text string) []Segment {
	var segments []Segment
	cursor := 0
	for cursor < len(text) {
		open := strings.Index(text[cursor:], OpenTag)
		if open < 0 {
			break
		}
		start := cursor + open
		bodyStart := start + len(OpenTag)
		closeAt := strings.Index(text[bodyStart:], CloseTag)
		if closeAt < 0 {
			break
		}
		bodyEnd := bodyStart + closeAt
		end := bodyEnd + len(CloseTag)
		if start > cursor {
			segments = append(segments, Segment{Text: text[cursor:start]})
		}
		block := parseBody(text[bodyStart:bodyEnd])
		block.Span = text[start:end]
		block.Start = start
		block.End = end
		segments = append(segments, Segment{Block: &block})
		cursor = end
	}
	if cursor < len(text) {
		segments = append(segments, Segment{Text: text[cursor:]})
	}
	return segments
}

// Replace substitutes every card block in text with render(block).
func Replace(text string, render func(Block) string) string {
	var b strings.Builder
	for _, segment := range Split(text) {
		if segment.Block != nil {
			b.WriteString(render(*segment.Block))
			continue
		}
		b.WriteString(segment.Text)
	}
	return b.String()
}

// Record merges the plain fields with the data object; data keys win.
func (b Block) Record() Record {
	rec := make(Record, len(b.Fields)+len(b.Data))
	for key, value := range b.Fields {
		rec[key] = value
	}
	for key, value := range b.Data {
		rec[key] = value
	}
	return rec
}

func parseBody(body string) Block {
	block := Block{Fields: map[string]string{}}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		value := strings.TrimSpace(line[idx+1:])
		if key == dataKey {
			block.Data = parseData(value)
			continue
		}
		block.Fields[key] = value
	}
	return block
}

func parseData(raw string) Record {
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec == nil {
		return Record{}
	}
	return rec
}
