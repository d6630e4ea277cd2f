package notes

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultAutosaveDelay is the quiet period before an edit is written.
const DefaultAutosaveDelay = time.Second

// AutoSaver debounces saves. At most one save is pending; scheduling again
// replaces it, and Flush runs it immediately.
type AutoSaver struct {
	mu     sync.Mutex
	saveMu sync.Mutex
	delay  time.Duration
	save   func() error
	timer  *time.Timer
	gen    uint64
	onErr  func(error)
}

// NewAutoSaver debounces calls to save by delay. onErr, when set, receives
// failures from timer-driven saves.
func NewAutoSaver(delay time.Duration, save func() error, onErr func(error)) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &AutoSaver{delay: delay, save: save, onErr: onErr}
}

// Schedule arms a save after the quiet period, cancelling any pending one.
func (a *AutoSaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Pending reports whether a save is armed.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

// Flush cancels any pending timer and saves now.
func (a *AutoSaver) Flush() error {
	a.cancel()
	return a.run()
}

// Stop cancels a pending save without running it.
func (a *AutoSaver) Stop() {
	a.cancel()
}

func (a *AutoSaver) cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}

func (a *AutoSaver) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()
	if err := a.run(); err != nil && a.onErr != nil {
		a.onErr(err)
	}
}

func (a *AutoSaver) run() error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	return a.save()
}

// Editor buffers edits to one note and writes them through an AutoSaver.
type Editor struct {
	mu      sync.Mutex
	store   *Store
	noteID  string
	title   string
	content string
	saver   *AutoSaver
}

// Edit opens an editor on a note. Edits are saved after delay of quiet.
func (s *Store) Edit(id string, delay time.Duration) (*Editor, error) {
	note, ok := s.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	e := &Editor{store: s, noteID: id, title: note.Title, content: note.Content}
	e.saver = NewAutoSaver(delay, e.save, func(err error) {
		s.logger.Error("autosave failed", "note_id", id, "err", err)
	})
	return e, nil
}

func (e *Editor) NoteID() string {
	return e.noteID
}

func (e *Editor) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// SetTitle records a title edit and schedules a save.
func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	e.title = title
	e.mu.Unlock()
	e.saver.Schedule()
}

// SetContent records a content edit and schedules a save.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	e.content = content
	e.mu.Unlock()
	e.saver.Schedule()
}

// Pending reports whether an edit is waiting to be saved.
func (e *Editor) Pending() bool {
	return e.saver.Pending()
}

// Blur saves immediately, collapsing any pending save.
func (e *Editor) Blur() error {
	return e.saver.Flush()
}

// Close flushes outstanding edits and releases the timer.
func (e *Editor) Close() error {
	err := e.saver.Flush()
	e.saver.Stop()
	return err
}

func (e *Editor) save() error {
	e.mu.Lock()
	title, content := e.title, e.content
	e.mu.Unlock()
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	_, err := e.store.SaveDraft(e.noteID, title, content)
	if errors.Is(err, ErrNotFound) {
		// The note was deleted while the editor was open.
		return nil
	}
	return err
}
