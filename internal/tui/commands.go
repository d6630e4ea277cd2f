package tui

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/workflow"
)

var copyToClipboard = clipboard.WriteAll

// sendJob performs only the network call. The store is updated when the
// result is handed back to Update.
func sendJob(sender *workflow.Sender, pending workflow.Pending) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		reply, err := sender.Deliver(ctx, pending)
		return chatReplyMsg{pending: pending, reply: reply, err: err}, err
	}
}

func planJob(planner *workflow.Planner, seq int, req api.PlanRequest) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := planner.Generate(ctx, req)
		return planResultMsg{seq: seq, result: result, err: err}, err
	}
}
