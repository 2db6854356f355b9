package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockmate/internal/models"
)

const longAnswer = "A goroutine is a lightweight thread managed by the Go runtime"

type fakeEvaluator struct {
	mu     sync.Mutex
	calls  int
	result models.EvaluationResult
	// when set, Evaluate blocks until release is closed or ctx ends
	release chan struct{}
	started chan struct{}
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, question, reference, answer string) models.EvaluationResult {
	f.mu.Lock()
	f.calls++
	release, started := f.release, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return models.FailedEvaluation("timeout")
		}
	}
	return f.result
}

func (f *fakeEvaluator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu      sync.Mutex
	saved   map[string]*models.AnswerAttempt
	err     error
	lastKey Key
	// when set, PersistIfNew signals entered and waits for release before writing
	entered chan struct{}
	release chan struct{}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{saved: map[string]*models.AnswerAttempt{}}
}

func (f *fakeRecorder) PersistIfNew(_ context.Context, profileID, question, submitterID string, attempt *models.AnswerAttempt) (models.PersistOutcome, error) {
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if submitterID == "" {
		return "", models.ErrAuthRequired
	}
	key := submitterID + "|" + question
	if _, ok := f.saved[key]; ok {
		return models.PersistAlreadyRecorded, nil
	}
	attempt.InterviewID = profileID
	attempt.Question = question
	attempt.UserID = submitterID
	f.saved[key] = attempt
	return models.PersistSaved, nil
}

func newTestSession(eval Evaluator, rec Recorder) *Session {
	return New(
		Key{UserID: "user-1", InterviewID: "iv-1", Index: 0},
		models.QuestionAnswerPair{Question: "What is a goroutine?", Answer: "A lightweight thread"},
		eval, rec, nil,
	)
}

func finals(texts ...string) []models.Segment {
	out := make([]models.Segment, 0, len(texts))
	for _, t := range texts {
		out = append(out, models.Segment{Transcript: t, IsFinal: true})
	}
	return out
}

func recordAnswer(t *testing.T, s *Session, text string) {
	t.Helper()
	_, err := s.Start()
	require.NoError(t, err)
	_, err = s.ReceiveSegments(finals(text))
	require.NoError(t, err)
}

func TestTranscriptRecomputedFromFinalSegments(t *testing.T) {
	s := newTestSession(&fakeEvaluator{}, newFakeRecorder())
	_, err := s.Start()
	require.NoError(t, err)

	snap, err := s.ReceiveSegments(finals("Hello", "world"))
	require.NoError(t, err)
	assert.Equal(t, "Hello world", snap.Transcript)

	batch := append(finals("Hello", "world", "today"), models.Segment{Transcript: "and tomor", IsFinal: false})
	snap, err = s.ReceiveSegments(batch)
	require.NoError(t, err)
	assert.Equal(t, "Hello world today", snap.Transcript)
	assert.Equal(t, "and tomor", snap.Interim)
	assert.Equal(t, 17, snap.Characters)
}

func TestTranscriptSkipsInterimSegments(t *testing.T) {
	text, interim := Transcript([]models.Segment{
		{Transcript: "one", IsFinal: true},
		{Transcript: "partial", IsFinal: false},
		{Transcript: "two", IsFinal: true},
	})
	assert.Equal(t, "one two", text)
	assert.Equal(t, "partial", interim)

	text, interim = Transcript(nil)
	assert.Empty(t, text)
	assert.Empty(t, interim)
}

func TestStopRejectsShortAnswer(t *testing.T) {
	eval := &fakeEvaluator{result: models.SuccessfulEvaluation(7, "ok")}
	s := newTestSession(eval, newFakeRecorder())

	recordAnswer(t, s, strings.Repeat("a", models.MinAnswerLength-1))
	snap, err := s.Stop(context.Background())
	require.ErrorIs(t, err, ErrAnswerTooShort)
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, strings.Repeat("a", models.MinAnswerLength-1), snap.Transcript)
	assert.Equal(t, 0, eval.Calls())
}

func TestStopEvaluatesThirtyCharacters(t *testing.T) {
	eval := &fakeEvaluator{result: models.SuccessfulEvaluation(7, "ok")}
	s := newTestSession(eval, newFakeRecorder())

	recordAnswer(t, s, strings.Repeat("a", models.MinAnswerLength))
	snap, err := s.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateEvaluated, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 7, snap.Result.Rating)
	assert.Equal(t, 1, eval.Calls())
}

func TestFallbackResultIsTerminal(t *testing.T) {
	eval := &fakeEvaluator{result: models.FailedEvaluation("gateway_error")}
	rec := newFakeRecorder()
	s := newTestSession(eval, rec)

	recordAnswer(t, s, longAnswer)
	snap, err := s.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateEvaluated, snap.State)
	assert.Equal(t, 0, snap.Result.Rating)
	assert.Equal(t, models.FallbackFeedback, snap.Result.Feedback)
	assert.Equal(t, 1, eval.Calls())

	snap, err = s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaved, snap.State)
	assert.Equal(t, models.EvaluationFailed, rec.saved["user-1|What is a goroutine?"].EvaluationStatus)
}

func TestCancelKeepsTranscript(t *testing.T) {
	s := newTestSession(&fakeEvaluator{}, newFakeRecorder())
	recordAnswer(t, s, "partial answer")

	snap, err := s.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, "partial answer", snap.Transcript)

	_, err = s.Cancel()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSaveFlow(t *testing.T) {
	eval := &fakeEvaluator{result: models.SuccessfulEvaluation(8, "Good")}
	rec := newFakeRecorder()
	s := newTestSession(eval, rec)

	_, err := s.RequestSave()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	recordAnswer(t, s, longAnswer)
	_, err = s.Stop(context.Background())
	require.NoError(t, err)

	snap, err := s.RequestSave()
	require.NoError(t, err)
	assert.True(t, snap.ConfirmOpen)
	snap, err = s.DismissSave()
	require.NoError(t, err)
	assert.False(t, snap.ConfirmOpen)

	_, _ = s.RequestSave()
	snap, err = s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSaved, snap.State)
	assert.Equal(t, models.PersistSaved, snap.Outcome)
	assert.Empty(t, snap.Transcript)
	assert.False(t, snap.ConfirmOpen)

	saved := rec.saved["user-1|What is a goroutine?"]
	require.NotNil(t, saved)
	assert.Equal(t, longAnswer, saved.UserAnswer)
	assert.Equal(t, 8, saved.Rating)
	assert.Equal(t, "A lightweight thread", saved.ReferenceAnswer)

	_, err = s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// a saved session may record a new attempt; the store keeps the first
	_, err = s.Start()
	require.NoError(t, err)
	_, err = s.ReceiveSegments(finals(longAnswer + " again"))
	require.NoError(t, err)
	_, err = s.Stop(context.Background())
	require.NoError(t, err)
	snap, err = s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateEvaluated, snap.State)
	assert.Equal(t, models.PersistAlreadyRecorded, snap.Outcome)
	assert.Equal(t, longAnswer, rec.saved["user-1|What is a goroutine?"].UserAnswer)
}

func TestConfirmPropagatesStoreErrors(t *testing.T) {
	rec := newFakeRecorder()
	rec.err = models.ErrRemoteOperationFailed
	s := newTestSession(&fakeEvaluator{result: models.SuccessfulEvaluation(5, "ok")}, rec)
	recordAnswer(t, s, longAnswer)
	_, err := s.Stop(context.Background())
	require.NoError(t, err)

	snap, err := s.Confirm(context.Background())
	assert.ErrorIs(t, err, models.ErrRemoteOperationFailed)
	assert.Equal(t, StateEvaluated, snap.State)
	assert.Equal(t, longAnswer, snap.Transcript)
}

func TestConfirmReportsWriteAfterRecordAgain(t *testing.T) {
	rec := newFakeRecorder()
	rec.entered = make(chan struct{})
	rec.release = make(chan struct{})
	s := newTestSession(&fakeEvaluator{result: models.SuccessfulEvaluation(7, "ok")}, rec)
	recordAnswer(t, s, longAnswer)
	_, err := s.Stop(context.Background())
	require.NoError(t, err)

	type confirmResult struct {
		snap Snapshot
		err  error
	}
	done := make(chan confirmResult, 1)
	go func() {
		snap, err := s.Confirm(context.Background())
		done <- confirmResult{snap, err}
	}()
	<-rec.entered

	_, err = s.RecordAgain()
	require.NoError(t, err)
	close(rec.release)

	var res confirmResult
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("confirm did not return")
	}
	require.NoError(t, res.err)
	assert.Equal(t, models.PersistSaved, res.snap.Outcome)
	assert.Equal(t, StateRecording, res.snap.State)
	assert.Empty(t, res.snap.Transcript)
	assert.Nil(t, res.snap.Result)
	assert.Len(t, rec.saved, 1)
}

func TestConfirmWithoutUser(t *testing.T) {
	s := New(Key{InterviewID: "iv-1"}, models.QuestionAnswerPair{Question: "q"}, &fakeEvaluator{result: models.SuccessfulEvaluation(5, "ok")}, newFakeRecorder(), nil)
	recordAnswer(t, s, longAnswer)
	_, err := s.Stop(context.Background())
	require.NoError(t, err)

	_, err = s.Confirm(context.Background())
	assert.ErrorIs(t, err, models.ErrAuthRequired)
}

func TestRecordAgainFromEveryState(t *testing.T) {
	eval := &fakeEvaluator{result: models.SuccessfulEvaluation(6, "ok")}
	s := newTestSession(eval, newFakeRecorder())

	snap, err := s.RecordAgain()
	require.NoError(t, err)
	assert.Equal(t, StateRecording, snap.State)

	_, _ = s.ReceiveSegments(finals(longAnswer))
	_, err = s.Stop(context.Background())
	require.NoError(t, err)

	snap, err = s.RecordAgain()
	require.NoError(t, err)
	assert.Equal(t, StateRecording, snap.State)
	assert.Empty(t, snap.Transcript)
	assert.Nil(t, snap.Result)
}

func TestRecordAgainCancelsEvaluation(t *testing.T) {
	eval := &fakeEvaluator{
		result:  models.SuccessfulEvaluation(9, "late"),
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	s := newTestSession(eval, newFakeRecorder())
	recordAnswer(t, s, longAnswer)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Stop(context.Background())
		errCh <- err
	}()
	<-eval.started

	snap := s.Snapshot()
	assert.Equal(t, StateEvaluating, snap.State)

	// second stop while evaluating is rejected
	_, err := s.Stop(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.RecordAgain()
	require.NoError(t, err)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSessionReset)
	case <-time.After(2 * time.Second):
		t.Fatal("evaluation was not cancelled")
	}

	snap = s.Snapshot()
	assert.Equal(t, StateRecording, snap.State)
	assert.Nil(t, snap.Result)
	assert.Equal(t, 1, eval.Calls())
}

func TestCallerCancellationReturnsToIdle(t *testing.T) {
	eval := &fakeEvaluator{release: make(chan struct{}), started: make(chan struct{})}
	s := newTestSession(eval, newFakeRecorder())
	recordAnswer(t, s, longAnswer)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Stop(ctx)
		errCh <- err
	}()
	<-eval.started
	cancel()

	err := <-errCh
	assert.True(t, errors.Is(err, context.Canceled))
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, longAnswer, snap.Transcript)
}

func TestCloseCancelsEvaluation(t *testing.T) {
	eval := &fakeEvaluator{release: make(chan struct{}), started: make(chan struct{})}
	s := newTestSession(eval, newFakeRecorder())
	recordAnswer(t, s, longAnswer)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Stop(context.Background())
		errCh <- err
	}()
	<-eval.started
	s.Close()

	assert.ErrorIs(t, <-errCh, ErrSessionReset)
	assert.Equal(t, StateClosed, s.Snapshot().State)

	_, err := s.Start()
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.RecordAgain()
	assert.ErrorIs(t, err, ErrSessionClosed)
	s.Close()
}

func TestInvalidTransitions(t *testing.T) {
	s := newTestSession(&fakeEvaluator{}, newFakeRecorder())

	_, err := s.ReceiveSegments(finals("hello"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.Stop(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.Start()
	require.NoError(t, err)
	_, err = s.Start()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
