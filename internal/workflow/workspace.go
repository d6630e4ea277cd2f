package workflow

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/chats"
	"github.com/csheth/tripnotes/internal/itinerary"
	"github.com/csheth/tripnotes/internal/notes"
	"github.com/csheth/tripnotes/internal/store"
)

// Options tunes OpenWorkspace.
type Options struct {
	Logger        *slog.Logger
	AutosaveDelay time.Duration
	PlanCache     *api.PlanCache
}

// Workspace bundles the stores and workflows built once at startup.
type Workspace struct {
	Chats       *chats.Store
	Notes       *notes.Store
	Itineraries *itinerary.Store

	Client    api.Client
	Sender    *Sender
	Collector *Collector
	Planner   *Planner

	Logger        *slog.Logger
	AutosaveDelay time.Duration
}

// OpenWorkspace loads every store from backend and wires the workflows.
func OpenWorkspace(backend store.Backend, client api.Client, opts Options) (*Workspace, error) {
	logger := orDiscard(opts.Logger)
	chatStore, err := chats.Open(backend, chats.WithLogger(logger.With("store", "chats")))
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	noteStore, err := notes.Open(backend, notes.WithLogger(logger.With("store", "notes")))
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	itineraryStore, err := itinerary.Open(backend, itinerary.WithLogger(logger.With("store", "itineraries")))
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	delay := opts.AutosaveDelay
	if delay <= 0 {
		delay = notes.DefaultAutosaveDelay
	}
	return &Workspace{
		Chats:         chatStore,
		Notes:         noteStore,
		Itineraries:   itineraryStore,
		Client:        client,
		Sender:        NewSender(chatStore, client, logger.With("workflow", "send")),
		Collector:     NewCollector(noteStore, logger.With("workflow", "collect")),
		Planner:       NewPlanner(client, opts.PlanCache, logger.With("workflow", "planner")),
		Logger:        logger,
		AutosaveDelay: delay,
	}, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
