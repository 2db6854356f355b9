package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"mockmate/internal/models"
	"mockmate/internal/session"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	ch    chan struct{}
}

func (c *countingSweeper) Sweep(time.Time) int {
	c.mu.Lock()
	c.calls++
	first := c.calls == 1
	c.mu.Unlock()
	if first && c.ch != nil {
		close(c.ch)
	}
	return 0
}

type noopEvaluator struct{}

func (noopEvaluator) Evaluate(context.Context, string, string, string) models.EvaluationResult {
	return models.SuccessfulEvaluation(5, "ok")
}

func TestRunOnceExpiresIdleSessions(t *testing.T) {
	registry := session.NewRegistry(noopEvaluator{}, nil, time.Minute, nil)
	s := registry.Open(session.Key{UserID: "u", InterviewID: "iv"}, models.QuestionAnswerPair{Question: "q"})

	sweeper := NewSessionSweeper(registry, "", nil)
	if n := sweeper.RunOnce(); n != 0 {
		t.Fatalf("expected fresh session to survive, closed %d", n)
	}

	sweeper.now = func() time.Time { return time.Now().Add(time.Hour) }
	if n := sweeper.RunOnce(); n != 1 {
		t.Fatalf("expected one session closed, got %d", n)
	}
	if s.Snapshot().State != session.StateClosed {
		t.Fatalf("expected session to be closed")
	}
	if registry.Size() != 0 {
		t.Fatalf("expected registry to be empty")
	}
}

func TestStartRunsOnSchedule(t *testing.T) {
	sweeper := &countingSweeper{ch: make(chan struct{})}
	job := NewSessionSweeper(sweeper, "@every 1s", nil)
	if err := job.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer job.Stop()

	select {
	case <-sweeper.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("expected scheduled sweep to run")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	job := NewSessionSweeper(&countingSweeper{}, "not a schedule", nil)
	if err := job.Start(); err == nil {
		t.Fatal("expected schedule parse error")
	}
}
