package sqldb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mockmate/internal/models"
	"mockmate/internal/repositories"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func (r *AnswerRepository) ExistsForQuestion(ctx context.Context, userID, question string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.AnswerAttempt{}).
		Where("id = ?", models.AttemptKey(userID, question)).
		Count(&count).Error
	return count > 0, err
}

func (r *AnswerRepository) Create(ctx context.Context, attempt *models.AnswerAttempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	err := r.DB.WithContext(ctx).Create(attempt).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrAlreadyRecorded
	}
	if err != nil {
		// not every dialect translates constraint errors
		if exists, lookupErr := r.ExistsForQuestion(ctx, attempt.UserID, attempt.Question); lookupErr == nil && exists {
			return repositories.ErrAlreadyRecorded
		}
	}
	return err
}

func (r *AnswerRepository) ListByInterview(ctx context.Context, interviewID, userID string) ([]models.AnswerAttempt, error) {
	var answers []models.AnswerAttempt
	err := r.DB.WithContext(ctx).
		Where("interview_id = ? AND user_id = ?", interviewID, userID).
		Order("created_at ASC").
		Find(&answers).Error
	return answers, err
}
