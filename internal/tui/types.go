package tui

import (
	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/workflow"
)

type screen int

const (
	screenChat screen = iota
	screenNotes
	screenItineraries
	screenPlanner
)

var screenOrder = []screen{screenChat, screenNotes, screenItineraries, screenPlanner}

func (s screen) String() string {
	switch s {
	case screenNotes:
		return "Notes"
	case screenItineraries:
		return "Itineraries"
	case screenPlanner:
		return "Planner"
	default:
		return "Chat"
	}
}

type interactionMode int

const (
	modeNormal interactionMode = iota
	modeInsert
)

// chatReplyMsg carries the captured send so completion routes by the chat
// that sent it, not by whatever is on screen now.
type chatReplyMsg struct {
	pending workflow.Pending
	reply   api.ChatReply
	err     error
}

type planResultMsg struct {
	seq    int
	result workflow.PlanResult
	err    error
}

type keyHint struct {
	Key         string
	Description string
}
