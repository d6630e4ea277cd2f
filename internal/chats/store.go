package chats

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/csheth/tripnotes/internal/ids"
	"github.com/csheth/tripnotes/internal/store"
)

// ErrNotFound is returned for chat ids the store does not hold.
var ErrNotFound = errors.New("chat not found")

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Store owns every persisted chat plus the chat currently open. The open
// chat may be an unsaved draft, which is never written until it receives
// its first message.
type Store struct {
	mu      sync.Mutex
	backend store.Backend
	logger  *slog.Logger
	clock   func() time.Time

	chats     []Chat
	currentID string
	draft     *Chat
}

// Open loads persisted chats and restores the active chat. A dangling
// active pointer falls back to the most recently updated chat, and an empty
// store starts on a fresh draft.
func Open(backend store.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	var loaded []Chat
	if _, err := store.LoadJSON(backend, store.KeyChats, &loaded); err != nil {
		return nil, fmt.Errorf("open chats: %w", err)
	}
	for _, chat := range loaded {
		if chat.ID == "" || len(chat.Messages) == 0 {
			continue
		}
		s.chats = append(s.chats, chat)
	}

	activeID, err := store.LoadString(backend, store.KeyActiveChat)
	if err != nil {
		return nil, fmt.Errorf("open chats: %w", err)
	}
	if s.indexOf(activeID) >= 0 {
		s.currentID = activeID
	} else {
		s.fallbackLocked()
	}
	s.logger.Debug("chats loaded", "count", len(s.chats), "active_chat_id", s.currentID)
	return s, nil
}

// Current returns a copy of the open chat.
func (s *Store) Current() Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked().clone()
}

// CurrentID returns the id of the open chat.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// IsCurrent reports whether id is the chat the user is looking at.
func (s *Store) IsCurrent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id != "" && id == s.currentID
}

// State reports the lifecycle state of id.
func (s *Store) State(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft != nil && s.draft.ID == id {
		return StateDraft
	}
	if s.indexOf(id) < 0 {
		return StateDeleted
	}
	if id == s.currentID {
		return StateActive
	}
	return StateArchived
}

// NewChat opens a fresh draft. Any previous draft is discarded.
func (s *Store) NewChat() Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newDraftLocked()
	if err := store.SaveString(s.backend, store.KeyActiveChat, ""); err != nil {
		s.logger.Error("clear active chat failed", "key", store.KeyActiveChat, "err", err)
	}
	return s.draft.clone()
}

// Switch opens a persisted chat.
func (s *Store) Switch(id string) (Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Chat{}, fmt.Errorf("switch to %s: %w", id, ErrNotFound)
	}
	s.draft = nil
	s.currentID = id
	chat := s.chats[idx].clone()
	if err := store.SaveString(s.backend, store.KeyActiveChat, id); err != nil {
		s.logger.Error("persist active chat failed", "key", store.KeyActiveChat, "err", err)
		return chat, fmt.Errorf("switch to %s: %w", id, err)
	}
	return chat, nil
}

// List returns persisted chats, most recently updated first.
func (s *Store) List() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chat, 0, len(s.chats))
	for _, chat := range s.chats {
		out = append(out, chat.clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Len reports how many chats are persisted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

// Get returns a persisted chat or the open draft.
func (s *Store) Get(id string) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft != nil && s.draft.ID == id {
		return s.draft.clone(), true
	}
	if idx := s.indexOf(id); idx >= 0 {
		return s.chats[idx].clone(), true
	}
	return Chat{}, false
}

// AppendCurrent adds messages to the open chat and persists it. A draft
// becomes a stored chat on its first append.
func (s *Store) AppendCurrent(msgs ...Message) (Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft != nil {
		chat := *s.draft
		s.draft = nil
		s.appendLocked(&chat, msgs)
		s.chats = append(s.chats, chat)
		s.logger.Info("chat created", "chat_id", chat.ID)
		err := s.persistLocked()
		if ptrErr := store.SaveString(s.backend, store.KeyActiveChat, chat.ID); ptrErr != nil && err == nil {
			err = ptrErr
		}
		return chat.clone(), err
	}
	idx := s.indexOf(s.currentID)
	if idx < 0 {
		return Chat{}, fmt.Errorf("append to current chat: %w", ErrNotFound)
	}
	s.appendLocked(&s.chats[idx], msgs)
	return s.chats[idx].clone(), s.persistLocked()
}

// AppendTo adds messages to a persisted chat whether or not it is open.
func (s *Store) AppendTo(id string, msgs ...Message) (Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Chat{}, fmt.Errorf("append to %s: %w", id, ErrNotFound)
	}
	s.appendLocked(&s.chats[idx], msgs)
	return s.chats[idx].clone(), s.persistLocked()
}

// Insert stores a complete chat record without opening it. An existing chat
// with the same id is replaced.
func (s *Store) Insert(chat Chat) (Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chat.ID == "" {
		chat.ID = ids.New("chat")
	}
	if len(chat.Messages) == 0 {
		return Chat{}, fmt.Errorf("insert %s: chat has no messages", chat.ID)
	}
	chat = chat.clone()
	now := s.clock()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	if chat.UpdatedAt.Before(now) {
		chat.UpdatedAt = now
	}
	if strings.TrimSpace(chat.Title) == "" {
		chat.Title = TitleFrom(chat.Messages)
	}
	if idx := s.indexOf(chat.ID); idx >= 0 {
		s.chats[idx] = chat
	} else {
		s.chats = append(s.chats, chat)
	}
	return chat.clone(), s.persistLocked()
}

// Delete removes a chat. Deleting the open chat falls back to the most
// recently updated remaining chat, or to a fresh draft when none remain.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft != nil && s.draft.ID == id {
		s.draft = nil
		s.fallbackLocked()
		return nil
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.chats = append(s.chats[:idx], s.chats[idx+1:]...)
	err := s.persistLocked()
	if id == s.currentID {
		s.fallbackLocked()
		ptr := ""
		if s.draft == nil {
			ptr = s.currentID
		}
		if ptrErr := store.SaveString(s.backend, store.KeyActiveChat, ptr); ptrErr != nil && err == nil {
			err = ptrErr
		}
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Rename sets an explicit title on a chat.
func (s *Store) Rename(id, title string) (Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	title = strings.TrimSpace(title)
	if s.draft != nil && s.draft.ID == id {
		s.draft.Title = title
		return s.draft.clone(), nil
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return Chat{}, fmt.Errorf("rename %s: %w", id, ErrNotFound)
	}
	s.chats[idx].Title = title
	s.touchLocked(&s.chats[idx])
	return s.chats[idx].clone(), s.persistLocked()
}

func (s *Store) currentLocked() Chat {
	if s.draft != nil {
		return *s.draft
	}
	if idx := s.indexOf(s.currentID); idx >= 0 {
		return s.chats[idx]
	}
	return Chat{}
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.chats {
		if s.chats[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) newDraftLocked() {
	now := s.clock()
	s.draft = &Chat{
		ID:        ids.New("chat"),
		SessionID: ids.New("session"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.currentID = s.draft.ID
}

func (s *Store) fallbackLocked() {
	s.draft = nil
	latest := -1
	for i := range s.chats {
		if latest < 0 || s.chats[i].UpdatedAt.After(s.chats[latest].UpdatedAt) {
			latest = i
		}
	}
	if latest < 0 {
		s.newDraftLocked()
		return
	}
	s.currentID = s.chats[latest].ID
}

func (s *Store) appendLocked(chat *Chat, msgs []Message) {
	chat.Messages = append(chat.Messages, msgs...)
	if strings.TrimSpace(chat.Title) == "" {
		chat.Title = TitleFrom(chat.Messages)
	}
	s.touchLocked(chat)
}

func (s *Store) touchLocked(chat *Chat) {
	now := s.clock()
	if now.Before(chat.UpdatedAt) {
		return
	}
	chat.UpdatedAt = now
}

func (s *Store) persistLocked() error {
	if err := store.SaveJSON(s.backend, store.KeyChats, s.chats); err != nil {
		s.logger.Error("persist chats failed", "key", store.KeyChats, "err", err)
		return err
	}
	return nil
}
