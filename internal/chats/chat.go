package chats

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a message authored by the assistant.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Chat is a persisted transcript tied to a backend session.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// State is where a chat sits in its lifecycle.
type State int

const (
	StateDeleted State = iota
	StateDraft
	StateActive
	StateArchived
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateActive:
		return "active"
	case StateArchived:
		return "archived"
	default:
		return "deleted"
	}
}

const (
	titleLimit   = 30
	defaultTitle = "New chat"
)

// DisplayTitle falls back to a placeholder for chats without a title yet.
func (c Chat) DisplayTitle() string {
	if strings.TrimSpace(c.Title) == "" {
		return defaultTitle
	}
	return c.Title
}

// LastMessage returns the newest message, if any.
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

func (c Chat) clone() Chat {
	c.Messages = append([]Message(nil), c.Messages...)
	return c
}

// TitleFrom derives a chat title from the first user message in msgs.
func TitleFrom(msgs []Message) string {
	for _, msg := range msgs {
		if msg.Role != RoleUser {
			continue
		}
		text := strings.Join(strings.Fields(msg.Content), " ")
		if text == "" {
			continue
		}
		return truncateRunes(text, titleLimit)
	}
	return ""
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit]))
}
