package tuitest

import (
	"regexp"
	"strings"
	"time"
)

// Recording is everything the program wrote, split into frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Frame is one full redraw of the screen.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	// Erase-display starts a new frame.
	clearScreen = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSequence = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	shiftChars  = strings.NewReplacer("\x0e", "", "\x0f", "", "\r", "")
)

func parseFrames(raw []byte) []Frame {
	text := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, chunk := range clearScreen.Split(text, -1) {
		chunk = strings.TrimPrefix(strings.Trim(chunk, "\x00"), "\x1b[H")
		plain := tidy(stripANSI(chunk))
		if plain == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: chunk, Plain: plain})
	}
	if frames == nil && text != "" {
		if plain := tidy(stripANSI(text)); plain != "" {
			frames = []Frame{{ANSI: text, Plain: plain}}
		}
	}
	return frames
}

// FinalFrame is the last redraw; ok is false before anything was drawn.
func (r *Recording) FinalFrame() (frame Frame, ok bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Contains reports whether any frame showed text.
func (r *Recording) Contains(text string) bool {
	if r == nil {
		return false
	}
	for _, frame := range r.Frames {
		if strings.Contains(frame.Plain, text) {
			return true
		}
	}
	return false
}

func stripANSI(s string) string {
	s = oscSequence.ReplaceAllString(s, "")
	s = csiSequence.ReplaceAllString(s, "")
	return shiftChars.Replace(s)
}

// tidy drops trailing spaces on each line and trailing blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
