// Package session implements the per-question answer capture state machine.
//
// The browser owns speech recognition and pushes the full recognition result list
// it holds; the session recomputes the transcript from it, guards submission,
// runs the evaluation and confirms the save.
package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"mockmate/internal/models"
)

// Evaluator scores a captured answer. It does not fail; failures come back as failed results.
type Evaluator interface {
	Evaluate(ctx context.Context, question, referenceAnswer, userAnswer string) models.EvaluationResult
}

// Recorder writes an answer attempt at most once per (submitter, question).
type Recorder interface {
	PersistIfNew(ctx context.Context, profileID, question, submitterID string, attempt *models.AnswerAttempt) (models.PersistOutcome, error)
}

// Key identifies one capture session: one user on one question of one interview.
type Key struct {
	UserID      string
	InterviewID string
	Index       int
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	State       State                    `json:"state"`
	Question    string                   `json:"question"`
	Transcript  string                   `json:"transcript"`
	Interim     string                   `json:"interim,omitempty"`
	Characters  int                      `json:"characters"`
	Result      *models.EvaluationResult `json:"result,omitempty"`
	ConfirmOpen bool                     `json:"confirm_open"`
	Outcome     models.PersistOutcome    `json:"outcome,omitempty"`
}

type Session struct {
	mu sync.Mutex

	key       Key
	question  models.QuestionAnswerPair
	evaluator Evaluator
	recorder  Recorder
	logger    *zap.Logger

	state       State
	transcript  string
	interim     string
	result      *models.EvaluationResult
	confirmOpen bool
	saving      bool
	outcome     models.PersistOutcome
	lastActive  time.Time

	// bumped by record again and close so late evaluation results are dropped
	epoch      uint64
	cancelEval context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
}

func New(key Key, question models.QuestionAnswerPair, evaluator Evaluator, recorder Recorder, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		key:        key,
		question:   question,
		evaluator:  evaluator,
		recorder:   recorder,
		logger:     logger.With(zap.String("user_id", key.UserID), zap.String("interview_id", key.InterviewID), zap.Int("question_index", key.Index)),
		state:      StateIdle,
		lastActive: time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *Session) Key() Key {
	return s.key
}

func (s *Session) Question() models.QuestionAnswerPair {
	return s.question
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:       s.state,
		Question:    s.question.Question,
		Transcript:  s.transcript,
		Interim:     s.interim,
		Characters:  utf8.RuneCountInString(s.transcript),
		ConfirmOpen: s.confirmOpen,
		Outcome:     s.outcome,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// transition applies e and refreshes the activity clock; callers hold s.mu.
func (s *Session) transition(e Event) error {
	target, err := next(s.state, e)
	if err != nil {
		return err
	}
	s.state = target
	s.lastActive = time.Now()
	return nil
}

// Start begins capture. The transcript is kept until the next segment batch replaces it.
func (s *Session) Start() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventStart); err != nil {
		return s.snapshotLocked(), err
	}
	s.outcome = ""
	return s.snapshotLocked(), nil
}

// ReceiveSegments replaces the transcript with the space-joined final segments of batch.
// The last interim segment is kept for display only.
func (s *Session) ReceiveSegments(batch []models.Segment) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventSegments); err != nil {
		return s.snapshotLocked(), err
	}
	s.transcript, s.interim = Transcript(batch)
	return s.snapshotLocked(), nil
}

// Transcript joins final segments with single spaces in arrival order and returns the
// text of the last interim segment.
func Transcript(batch []models.Segment) (string, string) {
	finals := make([]string, 0, len(batch))
	interim := ""
	for _, seg := range batch {
		if seg.IsFinal {
			finals = append(finals, seg.Transcript)
			continue
		}
		interim = seg.Transcript
	}
	return strings.Join(finals, " "), interim
}

// Cancel stops capture without evaluating; the transcript stays until an explicit reset.
func (s *Session) Cancel() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventCancel); err != nil {
		return s.snapshotLocked(), err
	}
	s.interim = ""
	return s.snapshotLocked(), nil
}

// Stop ends capture and evaluates the transcript. Answers shorter than
// models.MinAnswerLength characters are rejected with ErrAnswerTooShort and the
// session returns to idle. A second Stop while evaluating fails the state check.
func (s *Session) Stop(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.state == StateRecording && utf8.RuneCountInString(s.transcript) < models.MinAnswerLength {
		err := s.transition(EventTooShort)
		s.interim = ""
		snap := s.snapshotLocked()
		s.mu.Unlock()
		if err != nil {
			return snap, err
		}
		return snap, ErrAnswerTooShort
	}
	if err := s.transition(EventStop); err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.interim = ""
	s.result = nil
	epoch := s.epoch
	answer := s.transcript
	evalCtx, cancel := context.WithCancel(s.ctx)
	s.cancelEval = cancel
	s.mu.Unlock()

	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	result := s.evaluator.Evaluate(evalCtx, s.question.Question, s.question.Answer, answer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.state != StateEvaluating {
		return s.snapshotLocked(), ErrSessionReset
	}
	s.cancelEval = nil
	if err := ctx.Err(); err != nil {
		s.transition(EventAbort)
		return s.snapshotLocked(), err
	}
	if err := s.transition(EventEvaluated); err != nil {
		return s.snapshotLocked(), err
	}
	s.result = &result
	if !result.Succeeded() {
		s.logger.Warn("evaluation degraded to fallback", zap.String("reason", result.Reason))
	}
	return s.snapshotLocked(), nil
}

// RequestSave opens the confirmation dialog.
func (s *Session) RequestSave() (Snapshot, error) {
	return s.setConfirm(true)
}

// DismissSave closes the confirmation dialog without saving.
func (s *Session) DismissSave() (Snapshot, error) {
	return s.setConfirm(false)
}

func (s *Session) setConfirm(open bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventSaveDialog); err != nil {
		return s.snapshotLocked(), err
	}
	s.confirmOpen = open
	return s.snapshotLocked(), nil
}

// Confirm persists the evaluated answer. An attempt already stored for this user and
// question leaves the session evaluated with outcome already_recorded.
func (s *Session) Confirm(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.state != StateEvaluated || s.saving || s.result == nil {
		_, err := next(s.state, EventSave)
		if err == nil {
			err = ErrInvalidTransition
		}
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.saving = true
	epoch := s.epoch
	attempt := &models.AnswerAttempt{
		ReferenceAnswer:  s.question.Answer,
		UserAnswer:       s.transcript,
		Rating:           s.result.Rating,
		Feedback:         s.result.Feedback,
		EvaluationStatus: s.result.Outcome,
	}
	s.mu.Unlock()

	outcome, err := s.recorder.PersistIfNew(ctx, s.key.InterviewID, s.question.Question, s.key.UserID, attempt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	s.confirmOpen = false
	if s.epoch != epoch {
		// the write may have landed before the restart; report it without touching the new recording
		if err != nil {
			return s.snapshotLocked(), ErrSessionReset
		}
		s.outcome = outcome
		return s.snapshotLocked(), nil
	}
	if err != nil {
		s.logger.Error("failed to save answer", zap.Error(err))
		return s.snapshotLocked(), err
	}
	s.outcome = outcome
	s.lastActive = time.Now()
	if outcome == models.PersistSaved {
		s.transition(EventSave)
		s.transcript = ""
	}
	return s.snapshotLocked(), nil
}

// RecordAgain cancels any evaluation in flight, clears transcript and result and restarts capture.
func (s *Session) RecordAgain() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventRecordAgain); err != nil {
		return s.snapshotLocked(), err
	}
	s.abortEvaluationLocked()
	s.transcript = ""
	s.interim = ""
	s.result = nil
	s.confirmOpen = false
	s.outcome = ""
	return s.snapshotLocked(), nil
}

// Close discards the session and cancels any evaluation in flight. Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.transition(EventClose)
	s.abortEvaluationLocked()
	s.cancel()
}

func (s *Session) abortEvaluationLocked() {
	s.epoch++
	if s.cancelEval != nil {
		s.cancelEval()
		s.cancelEval = nil
	}
}

// idleSince reports the last activity time and whether the session may be expired.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.state != StateEvaluating && !s.saving
}
