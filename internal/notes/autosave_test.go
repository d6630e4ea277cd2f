package notes

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/csheth/tripnotes/internal/store"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEditorDebouncesRapidEdits(t *testing.T) {
	t.Parallel()

	backend := newCountingBackend()
	s, _ := Open(backend)
	note, _ := s.Create("Kyoto")
	before := backend.count(store.KeyNotes)

	editor, err := s.Edit(note.ID, 40*time.Millisecond)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	editor.SetContent("t")
	editor.SetContent("te")
	editor.SetContent("temples")

	waitFor(t, time.Second, func() bool { return backend.count(store.KeyNotes) > before })
	time.Sleep(80 * time.Millisecond)
	if got := backend.count(store.KeyNotes) - before; got != 1 {
		t.Fatalf("expected exactly one save, got %d", got)
	}
	saved, _ := s.Get(note.ID)
	if saved.Content != "temples" {
		t.Fatalf("save should reflect the final edit, got %q", saved.Content)
	}

	// Blur after the debounce already saved writes nothing new.
	if err := editor.Blur(); err != nil {
		t.Fatalf("Blur: %v", err)
	}
	if got := backend.count(store.KeyNotes) - before; got != 1 {
		t.Fatalf("idempotent flush wrote again: %d saves", got)
	}
}

func TestBlurFlushesPendingSave(t *testing.T) {
	t.Parallel()

	backend := newCountingBackend()
	s, _ := Open(backend)
	note, _ := s.Create("Quito")
	before := backend.count(store.KeyNotes)

	editor, _ := s.Edit(note.ID, time.Hour)
	editor.SetTitle("Quito & Galapagos")
	if !editor.Pending() {
		t.Fatal("edit should arm a pending save")
	}
	if err := editor.Blur(); err != nil {
		t.Fatalf("Blur: %v", err)
	}
	if editor.Pending() {
		t.Fatal("blur should collapse the pending save")
	}
	if got := backend.count(store.KeyNotes) - before; got != 1 {
		t.Fatalf("expected one save on blur, got %d", got)
	}
	saved, _ := s.Get(note.ID)
	if saved.Title != "Quito & Galapagos" {
		t.Fatalf("unexpected title %q", saved.Title)
	}
}

func TestAutoSaverLastWriteWins(t *testing.T) {
	t.Parallel()

	var calls int32
	saver := NewAutoSaver(50*time.Millisecond, func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, nil)
	for i := 0; i < 5; i++ {
		saver.Schedule()
		time.Sleep(5 * time.Millisecond)
	}
	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&calls) > 0 })
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one save, got %d", got)
	}

	saver.Schedule()
	saver.Stop()
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("stopped save should not run, got %d", got)
	}
}

func TestEditorIgnoresDeletedNote(t *testing.T) {
	t.Parallel()

	s, _ := Open(store.NewMemoryBackend())
	note, _ := s.Create("Gone")
	editor, _ := s.Edit(note.ID, time.Hour)
	editor.SetContent("late edit")
	if err := s.Delete(note.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := editor.Close(); err != nil {
		t.Fatalf("Close after delete should not fail: %v", err)
	}
	if s.Len() != 0 {
		t.Fatal("flush must not resurrect a deleted note")
	}
}
