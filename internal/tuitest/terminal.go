package tuitest

import (
	"bytes"
	"io"
)

// terminalQueries are the capability probes termenv and bubbletea send at
// startup, paired with the replies of a dark xterm. Without a reply the
// program waits for its query timeout on every launch.
var terminalQueries = []struct {
	query, reply string
}{
	{"\x1b[6n", "\x1b[1;1R"},
	{"\x1b]10;?\x07", "\x1b]10;rgb:cccc/cccc/cccc\x07"},
	{"\x1b]10;?\x1b\\", "\x1b]10;rgb:cccc/cccc/cccc\x1b\\"},
	{"\x1b]11;?\x07", "\x1b]11;rgb:0000/0000/0000\x07"},
	{"\x1b]11;?\x1b\\", "\x1b]11;rgb:0000/0000/0000\x1b\\"},
}

// maxQueryLen bounds how much unmatched output is kept between reads.
const maxQueryLen = 16

type terminalResponder struct {
	w       io.Writer
	pending []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w}
}

// Process answers every query found in chunk, including one split across
// the previous read.
func (r *terminalResponder) Process(chunk []byte) {
	buf := append(r.pending, chunk...)
	for {
		at, reply, n := firstQuery(buf)
		if at < 0 {
			break
		}
		_, _ = io.WriteString(r.w, reply)
		buf = buf[at+n:]
	}
	if len(buf) > maxQueryLen {
		buf = buf[len(buf)-maxQueryLen:]
	}
	r.pending = append(r.pending[:0], buf...)
}

func firstQuery(buf []byte) (at int, reply string, n int) {
	at = -1
	for _, q := range terminalQueries {
		idx := bytes.Index(buf, []byte(q.query))
		if idx >= 0 && (at < 0 || idx < at) {
			at, reply, n = idx, q.reply, len(q.query)
		}
	}
	return at, reply, n
}
