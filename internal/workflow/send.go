package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/chats"
)

// ErrorNotice is shown in the open chat when a send fails.
const ErrorNotice = "Sorry, I couldn't reach the travel assistant. Please try again."

var (
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInFlight is returned while the chat still awaits a reply.
	ErrSendInFlight = errors.New("a reply for this chat is still pending")
)

// Delivery describes where an assistant reply ended up.
type Delivery int

const (
	// DeliveryFailed means the request failed and nothing was appended.
	DeliveryFailed Delivery = iota
	// DeliveredVisible means the reply went into the chat still on screen.
	DeliveredVisible
	// DeliveredBackground means the user had moved on and the reply was
	// appended to the stored chat it belongs to.
	DeliveredBackground
	// DeliveredSynthesized means the target chat no longer existed and a new
	// record holding the captured exchange was inserted.
	DeliveredSynthesized
)

func (d Delivery) String() string {
	switch d {
	case DeliveredVisible:
		return "visible"
	case DeliveredBackground:
		return "background"
	case DeliveredSynthesized:
		return "synthesized"
	default:
		return "failed"
	}
}

// Pending is a send captured before the network call. Everything the reply
// needs for routing is copied here so completion never reads "current"
// state from before the await.
type Pending struct {
	ChatID    string
	SessionID string
	Message   chats.Message
	// StoreErr is set when the user message could not be persisted. The
	// send still goes ahead.
	StoreErr error
}

// Outcome is the reconciled result of a send.
type Outcome struct {
	ChatID   string
	Delivery Delivery
	Reply    chats.Message
	Intent   string
	Fallback bool
	// Notice is a transient message for the open chat. It is never stored.
	Notice string
	Err    error
}

// Visible reports whether the open transcript changed.
func (o Outcome) Visible() bool {
	return o.Delivery == DeliveredVisible
}

// Sender runs the send-message workflow against a chat store. It is split
// into Begin, Deliver and Complete so a UI can run Deliver off its event
// loop and hand the result back.
type Sender struct {
	mu       sync.Mutex
	chats    *chats.Store
	client   api.Client
	logger   *slog.Logger
	inFlight map[string]bool
	typing   int
}

func NewSender(store *chats.Store, client api.Client, logger *slog.Logger) *Sender {
	return &Sender{
		chats:    store,
		client:   client,
		logger:   orDiscard(logger),
		inFlight: map[string]bool{},
	}
}

// Begin appends the user message to the open chat, persists it and marks a
// reply as pending. The returned Pending identifies where the reply goes.
func (s *Sender) Begin(text string) (Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Pending{}, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.chats.Current()
	if s.inFlight[current.ID] {
		return Pending{}, ErrSendInFlight
	}
	msg := chats.UserMessage(text)
	pending := Pending{ChatID: current.ID, SessionID: current.SessionID, Message: msg}
	if _, err := s.chats.AppendCurrent(msg); err != nil {
		s.logger.Error("persist user message failed", "chat_id", current.ID, "err", err)
		pending.StoreErr = err
	}
	s.inFlight[current.ID] = true
	s.typing++
	return pending, nil
}

// Deliver performs the network call. It touches no store state.
func (s *Sender) Deliver(ctx context.Context, p Pending) (api.ChatReply, error) {
	return s.client.Chat(ctx, api.ChatRequest{Message: p.Message.Content, SessionID: p.SessionID})
}

// Complete routes a reply. If the user still has the chat open the reply
// is appended there. Otherwise it goes to the stored chat it belongs to,
// and when that chat is gone a record holding the captured pair is
// inserted. A failure only produces a notice when the chat is still open.
func (s *Sender) Complete(p Pending, reply api.ChatReply, callErr error) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, p.ChatID)
	if s.typing > 0 {
		s.typing--
	}

	out := Outcome{ChatID: p.ChatID}
	if callErr != nil {
		s.logger.Warn("chat request failed", "chat_id", p.ChatID, "err", callErr)
		out.Delivery = DeliveryFailed
		out.Err = callErr
		if s.chats.IsCurrent(p.ChatID) {
			out.Notice = ErrorNotice
		}
		return out
	}

	msg := chats.AssistantMessage(reply.Text)
	out.Reply = msg
	out.Intent = reply.Intent
	out.Fallback = reply.Fallback

	if s.chats.IsCurrent(p.ChatID) {
		out.Delivery = DeliveredVisible
		if _, err := s.chats.AppendCurrent(msg); err != nil {
			out.Err = err
		}
		return out
	}

	_, err := s.chats.AppendTo(p.ChatID, msg)
	switch {
	case err == nil:
		out.Delivery = DeliveredBackground
		s.logger.Info("reply routed to background chat", "chat_id", p.ChatID)
	case errors.Is(err, chats.ErrNotFound):
		out.Delivery = DeliveredSynthesized
		_, err = s.chats.Insert(chats.Chat{
			ID:        p.ChatID,
			SessionID: p.SessionID,
			Messages:  []chats.Message{p.Message, msg},
		})
		out.Err = err
		s.logger.Info("reply restored into new chat record", "chat_id", p.ChatID)
	default:
		out.Delivery = DeliveredBackground
		out.Err = err
	}
	return out
}

// Send runs Begin, Deliver and Complete in sequence.
func (s *Sender) Send(ctx context.Context, text string) (Outcome, error) {
	pending, err := s.Begin(text)
	if err != nil {
		return Outcome{}, err
	}
	reply, callErr := s.Deliver(ctx, pending)
	return s.Complete(pending, reply, callErr), nil
}

// Typing reports whether any reply is pending. The indicator belongs to
// the chat screen, not to a particular chat.
func (s *Sender) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing > 0
}

// InFlight reports whether chatID awaits a reply.
func (s *Sender) InFlight(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[chatID]
}
