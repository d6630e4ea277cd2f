package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

type jobStatus string

const (
	jobKindChat jobKind = "chat"
	jobKindPlan jobKind = "plan"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter int64
	logger  *slog.Logger
	timeout time.Duration
}

func newJobBus(logger *slog.Logger, timeout time.Duration) *jobBus {
	return &jobBus{logger: logger, timeout: timeout}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start returns a command that announces the job and then runs it. The
// runner's message comes back wrapped in a jobResultEnvelope.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		ctx := context.Background()
		if b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		b.logger.Debug("job finished", "job", id, "kind", string(kind), "status", string(snapshot.Status),
			"duration", snapshot.Duration, "err", err)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

// jobTracker keeps the snapshots of running jobs for the status bar.
type jobTracker struct {
	running map[string]jobSnapshot
	last    *jobSnapshot
}

func newJobTracker() jobTracker {
	return jobTracker{running: map[string]jobSnapshot{}}
}

func (t *jobTracker) observe(s jobSnapshot) {
	if s.Status == jobStatusRunning {
		t.running[s.ID] = s
		return
	}
	delete(t.running, s.ID)
	last := s
	t.last = &last
}

func (t *jobTracker) badges() []string {
	counts := map[jobKind]int{}
	for _, s := range t.running {
		counts[s.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		badges = append(badges, fmt.Sprintf("%s×%d", kind, counts[jobKind(kind)]))
	}
	return badges
}
