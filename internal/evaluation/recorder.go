package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mockmate/internal/metrics"
	"mockmate/internal/models"
	"mockmate/internal/repositories"
)

// Recorder writes answer attempts at most once per (submitter, question).
type Recorder struct {
	answers repositories.AnswerRepository
	logger  *zap.Logger
}

func NewRecorder(answers repositories.AnswerRepository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{answers: answers, logger: logger}
}

// PersistIfNew checks for an existing attempt and writes one when there is none.
// The attempt key doubles as the store's primary key, so a write racing past the
// check is rejected by the store and still reported as already recorded.
func (r *Recorder) PersistIfNew(ctx context.Context, profileID, question, submitterID string, attempt *models.AnswerAttempt) (models.PersistOutcome, error) {
	if strings.TrimSpace(submitterID) == "" {
		return "", models.ErrAuthRequired
	}
	if attempt == nil {
		return "", fmt.Errorf("%w: attempt is required", models.ErrValidationFailed)
	}

	exists, err := r.answers.ExistsForQuestion(ctx, submitterID, question)
	if err != nil {
		r.logger.Error("answer existence check failed", zap.String("user_id", submitterID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrRemoteOperationFailed, err)
	}
	if exists {
		metrics.RecordPersist(string(models.PersistAlreadyRecorded))
		return models.PersistAlreadyRecorded, nil
	}

	attempt.ID = models.AttemptKey(submitterID, question)
	attempt.InterviewID = profileID
	attempt.Question = question
	attempt.UserID = submitterID
	if attempt.EvaluationStatus == "" {
		attempt.EvaluationStatus = models.EvaluationSuccess
	}
	attempt.CreatedAt = time.Now().UTC()

	if err := r.answers.Create(ctx, attempt); err != nil {
		if errors.Is(err, repositories.ErrAlreadyRecorded) {
			metrics.RecordPersist(string(models.PersistAlreadyRecorded))
			return models.PersistAlreadyRecorded, nil
		}
		r.logger.Error("answer write failed", zap.String("user_id", submitterID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrRemoteOperationFailed, err)
	}

	metrics.RecordPersist(string(models.PersistSaved))
	return models.PersistSaved, nil
}
