package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8000"
	// The backend may spend tens of seconds on a planner search.
	defaultHTTPTimeout = 60 * time.Second

	chatPath    = "/api/chat"
	plannerPath = "/api/planner/generate"
)

// FallbackReply stands in for a chat response that carried no text.
const FallbackReply = "Thanks for your message! Tell me more about the trip you have in mind."

// ErrValidation wraps request field errors.
var ErrValidation = errors.New("invalid request")

// Config describes how to reach the travel backend.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the travel assistant backend.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatReply, error)
	GeneratePlan(ctx context.Context, req PlanRequest) (Plan, error)
	Name() string
}

// ChatRequest is one user turn sent to the assistant.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatReply is the assistant's answer. Fallback is set when the response had
// none of the known text fields and Text holds FallbackReply instead.
type ChatReply struct {
	Text     string
	Intent   string
	Fallback bool
}

// NewFromEnv builds an HTTP client, filling blanks in cfg from
// TRAVEL_API_URL and TRAVEL_API_TOKEN.
func NewFromEnv(cfg Config) (Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		if env := os.Getenv("TRAVEL_API_URL"); env != "" {
			base = env
		} else {
			base = defaultBaseURL
		}
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("TRAVEL_API_TOKEN"))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &httpClient{
		base:   strings.TrimRight(base, "/"),
		token:  token,
		client: pickHTTPClient(cfg.HTTPClient),
		logger: logger,
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}
