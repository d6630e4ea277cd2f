package chats

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/csheth/tripnotes/internal/store"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func openTestStore(t *testing.T, backend store.Backend) (*Store, *stepClock) {
	t.Helper()
	clock := &stepClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	s, err := Open(backend, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, clock
}

func TestDraftIsNeverPersisted(t *testing.T) {
	t.Parallel()

	backend := store.NewMemoryBackend()
	s, _ := openTestStore(t, backend)

	draft := s.Current()
	if s.State(draft.ID) != StateDraft {
		t.Fatalf("expected fresh store to open a draft, got %v", s.State(draft.ID))
	}
	if _, err := backend.Get(store.KeyChats); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("draft should not be written, got %v", err)
	}

	chat, err := s.AppendCurrent(UserMessage("Plan a long weekend in Lisbon with good seafood please"))
	if err != nil {
		t.Fatalf("AppendCurrent: %v", err)
	}
	if chat.ID != draft.ID || s.State(chat.ID) != StateActive {
		t.Fatalf("draft should become the active chat, got %+v", chat)
	}
	if chat.Title != "Plan a long weekend in Lisbon" {
		t.Fatalf("title should be truncated, got %q", chat.Title)
	}

	reopened, _ := openTestStore(t, backend)
	if reopened.CurrentID() != chat.ID {
		t.Fatalf("active pointer not restored: got %q want %q", reopened.CurrentID(), chat.ID)
	}
	if got := reopened.Current().Messages; len(got) != 1 || got[0].Role != RoleUser {
		t.Fatalf("unexpected transcript after reload: %+v", got)
	}
}

func TestAppendKeepsOrderAndMonotonicUpdatedAt(t *testing.T) {
	t.Parallel()

	s, clock := openTestStore(t, store.NewMemoryBackend())
	first, _ := s.AppendCurrent(UserMessage("one"))
	clock.now = clock.now.Add(-time.Hour)
	second, err := s.AppendCurrent(AssistantMessage("two"), UserMessage("three"))
	if err != nil {
		t.Fatalf("AppendCurrent: %v", err)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Fatalf("updatedAt went backwards: %v < %v", second.UpdatedAt, first.UpdatedAt)
	}
	var contents []string
	for _, msg := range second.Messages {
		contents = append(contents, msg.Content)
	}
	if strings.Join(contents, ",") != "one,two,three" {
		t.Fatalf("messages reordered: %v", contents)
	}
}

func TestAppendToBackgroundChat(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t, store.NewMemoryBackend())
	a, _ := s.AppendCurrent(UserMessage("chat a"))
	s.NewChat()
	b, _ := s.AppendCurrent(UserMessage("chat b"))

	if _, err := s.AppendTo(a.ID, AssistantMessage("reply for a")); err != nil {
		t.Fatalf("AppendTo: %v", err)
	}
	if !s.IsCurrent(b.ID) {
		t.Fatal("appending to a background chat must not switch chats")
	}
	got, _ := s.Get(a.ID)
	if len(got.Messages) != 2 || got.Messages[1].Content != "reply for a" {
		t.Fatalf("background chat not updated: %+v", got.Messages)
	}
	if s.State(a.ID) != StateArchived {
		t.Fatalf("expected archived state, got %v", s.State(a.ID))
	}
	if _, err := s.AppendTo("chat_missing", AssistantMessage("x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteActiveChatFallsBackToMostRecent(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t, store.NewMemoryBackend())
	a, _ := s.AppendCurrent(UserMessage("a"))
	s.NewChat()
	b, _ := s.AppendCurrent(UserMessage("b"))
	s.NewChat()
	c, _ := s.AppendCurrent(UserMessage("c"))

	// a becomes the most recently updated chat.
	if _, err := s.AppendTo(a.ID, AssistantMessage("late reply")); err != nil {
		t.Fatalf("AppendTo: %v", err)
	}
	if err := s.Delete(c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.CurrentID() != a.ID {
		t.Fatalf("expected fallback to %s, got %s", a.ID, s.CurrentID())
	}
	if s.State(c.ID) != StateDeleted {
		t.Fatalf("deleted chat reports %v", s.State(c.ID))
	}

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.CurrentID() != b.ID {
		t.Fatalf("expected fallback to %s, got %s", b.ID, s.CurrentID())
	}
	if err := s.Delete(b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d chats", s.Len())
	}
	if s.State(s.CurrentID()) != StateDraft {
		t.Fatal("deleting the last chat should leave a draft open")
	}
	fresh := s.NewChat()
	if s.State(fresh.ID) != StateDraft || len(fresh.Messages) != 0 {
		t.Fatalf("new chat should be an empty draft, got %+v", fresh)
	}
}

func TestOpenFallsBackWhenActivePointerDangles(t *testing.T) {
	t.Parallel()

	backend := store.NewMemoryBackend()
	s, _ := openTestStore(t, backend)
	a, _ := s.AppendCurrent(UserMessage("a"))
	if err := store.SaveString(backend, store.KeyActiveChat, "chat_gone"); err != nil {
		t.Fatalf("SaveString: %v", err)
	}
	reopened, _ := openTestStore(t, backend)
	if reopened.CurrentID() != a.ID {
		t.Fatalf("expected fallback to %s, got %s", a.ID, reopened.CurrentID())
	}
}

func TestInsertAndRename(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t, store.NewMemoryBackend())
	current := s.Current()
	inserted, err := s.Insert(Chat{
		ID:        "chat_synth",
		SessionID: "session_x",
		Messages:  []Message{UserMessage("where to eat"), AssistantMessage("try the market")},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inserted.Title != "where to eat" {
		t.Fatalf("unexpected title %q", inserted.Title)
	}
	if s.CurrentID() != current.ID {
		t.Fatal("insert must not change the open chat")
	}
	if _, err := s.Insert(Chat{ID: "chat_empty"}); err == nil {
		t.Fatal("expected error inserting a chat without messages")
	}
	renamed, err := s.Rename("chat_synth", "  Food  ")
	if err != nil || renamed.Title != "Food" {
		t.Fatalf("Rename = %+v, %v", renamed, err)
	}
	if _, err := s.Switch("chat_synth"); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if _, err := s.Switch("chat_nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list := s.List()
	if len(list) != 1 || list[0].ID != "chat_synth" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestTitleFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msgs []Message
		want string
	}{
		{name: "empty", msgs: nil, want: ""},
		{name: "skips assistant", msgs: []Message{AssistantMessage("hi"), UserMessage("Rome")}, want: "Rome"},
		{name: "collapses whitespace", msgs: []Message{UserMessage("  two\n words ")}, want: "two words"},
		{name: "counts runes", msgs: []Message{UserMessage(strings.Repeat("é", 40))}, want: strings.Repeat("é", 30)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TitleFrom(tt.msgs); got != tt.want {
				t.Fatalf("TitleFrom = %q, want %q", got, tt.want)
			}
		})
	}
}
