// Package tuitest drives a terminal program inside a pseudo terminal so
// tests can type keys and assert on what was drawn.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth  = 100
	defaultHeight = 32
	pollInterval  = 25 * time.Millisecond
)

// ErrTimeout is returned when expected output never appears.
var ErrTimeout = errors.New("tuitest: timed out")

// Config describes the program to launch.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	Width   int
	Height  int
}

// Session is a running program attached to a pty.
type Session struct {
	cmd   *exec.Cmd
	ptmx  *os.File
	start time.Time

	mu     sync.Mutex
	output bytes.Buffer
	mark   int

	readDone chan struct{}
	waitDone chan struct{}
	waitErr  error
}

// Start launches cfg.Command with a terminal of the configured size.
func Start(ctx context.Context, cfg Config) (*Session, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = terminalEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(height), Cols: uint16(width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	s := &Session{
		cmd:      cmd,
		ptmx:     ptmx,
		start:    time.Now(),
		readDone: make(chan struct{}),
		waitDone: make(chan struct{}),
	}
	go s.read()
	go func() {
		s.waitErr = cmd.Wait()
		close(s.waitDone)
	}()
	return s, nil
}

func (s *Session) read() {
	defer close(s.readDone)
	responder := newTerminalResponder(s.ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			responder.Process(buf[:n])
			s.mu.Lock()
			s.output.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send writes raw input to the program. WaitFor only looks at output drawn
// after the most recent Send.
func (s *Session) Send(input ...[]byte) error {
	s.mu.Lock()
	s.mark = s.output.Len()
	s.mu.Unlock()
	for _, in := range input {
		if _, err := s.ptmx.Write(in); err != nil {
			return fmt.Errorf("tuitest: write input: %w", err)
		}
	}
	return nil
}

// Type sends text as if typed on the keyboard.
func (s *Session) Type(text string) error {
	return s.Send([]byte(text))
}

// Screen is the latest frame with escape sequences stripped.
func (s *Session) Screen() string {
	frame, _ := s.snapshot().FinalFrame()
	return frame.Plain
}

// drawnSinceSend is the plain text written after the last Send. The
// renderer repaints only changed lines, so this catches text a frame split
// would miss.
func (s *Session) drawnSinceSend() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stripANSI(string(s.output.Bytes()[s.mark:]))
}

// WaitFor polls the program's output until text appears.
func (s *Session) WaitFor(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if strings.Contains(s.drawnSinceSend(), text) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w waiting for %q; last screen:\n%s", ErrTimeout, text, s.Screen())
		}
		select {
		case <-s.waitDone:
			if strings.Contains(s.drawnSinceSend(), text) {
				return nil
			}
			return fmt.Errorf("tuitest: program exited before %q appeared: %v", text, s.waitErr)
		case <-time.After(pollInterval):
		}
	}
}

// Wait blocks until the program exits on its own. An interrupt from ctrl+c
// counts as a clean exit.
func (s *Session) Wait(timeout time.Duration) (*Recording, error) {
	select {
	case <-s.waitDone:
	case <-time.After(timeout):
		_ = s.cmd.Process.Kill()
		<-s.waitDone
		s.close()
		return s.snapshot(), fmt.Errorf("%w waiting for exit", ErrTimeout)
	}
	s.close()
	rec := s.snapshot()
	if s.waitErr != nil && !strings.Contains(s.waitErr.Error(), "signal: interrupt") {
		return rec, fmt.Errorf("tuitest: program exited with error: %w", s.waitErr)
	}
	return rec, nil
}

// Kill stops the program if it is still running.
func (s *Session) Kill() {
	select {
	case <-s.waitDone:
	default:
		_ = s.cmd.Process.Kill()
		<-s.waitDone
	}
	s.close()
}

func (s *Session) close() {
	_ = s.ptmx.Close()
	<-s.readDone
}

func (s *Session) snapshot() *Recording {
	s.mu.Lock()
	raw := append([]byte(nil), s.output.Bytes()...)
	s.mu.Unlock()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(s.start)}
}

func terminalEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	KeyEnter = []byte{'\r'}
	KeyTab   = []byte{'\t'}
	KeyEsc   = []byte{27}
	KeyCtrlC = []byte{3}
)
