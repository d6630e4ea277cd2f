package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/csheth/tripnotes/internal/api"
)

var errOffline = errors.New("dial tcp: connection refused")

// fakeClient answers from functions and records what it was asked.
type fakeClient struct {
	mu       sync.Mutex
	chatFn   func(api.ChatRequest) (api.ChatReply, error)
	planFn   func(api.PlanRequest) (api.Plan, error)
	requests []api.ChatRequest
}

func (f *fakeClient) Chat(ctx context.Context, req api.ChatRequest) (api.ChatReply, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.chatFn
	f.mu.Unlock()
	if fn == nil {
		return api.ChatReply{Text: "ok"}, nil
	}
	return fn(req)
}

func (f *fakeClient) GeneratePlan(ctx context.Context, req api.PlanRequest) (api.Plan, error) {
	if f.planFn == nil {
		return api.Plan{}, errOffline
	}
	return f.planFn(req)
}

func (f *fakeClient) Name() string {
	return "fake"
}

func (f *fakeClient) sent() []api.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.ChatRequest(nil), f.requests...)
}
