package tuitest

import (
	"strings"
	"testing"
)

func TestParseFramesStripsEscapes(t *testing.T) {
	t.Parallel()

	raw := []byte("\x1b[2J\x1b[H\x1b[1;35mtripnotes\x1b[0m  1 Chat   \r\n\r\n" +
		"\x1b[2J\x1b[H\x1b]11;?\x07Chat keys\r\n  \r\n")
	rec := &Recording{Raw: raw, Frames: parseFrames(raw)}
	if len(rec.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(rec.Frames))
	}
	if got := rec.Frames[0].Plain; got != "tripnotes  1 Chat" {
		t.Fatalf("unexpected first frame %q", got)
	}
	last, ok := rec.FinalFrame()
	if !ok || last.Plain != "Chat keys" || last.Index != 1 {
		t.Fatalf("unexpected final frame %+v", last)
	}
	if !rec.Contains("1 Chat") || rec.Contains("\x1b") {
		t.Fatal("Contains should search the plain frames")
	}
}

func TestFinalFrameEmpty(t *testing.T) {
	t.Parallel()

	var rec *Recording
	if _, ok := rec.FinalFrame(); ok {
		t.Fatal("nil recording has no frames")
	}
}

func TestResponderAnswersSplitQueries(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	r := newTerminalResponder(&out)
	r.Process([]byte("hello \x1b]11"))
	r.Process([]byte(";?\x07 and \x1b[6n"))
	if got := out.String(); got != "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R" {
		t.Fatalf("unexpected replies %q", got)
	}
	r.Process([]byte("plain output"))
	if out.Len() != len("\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R") {
		t.Fatal("answered queries must not be replayed")
	}
}
