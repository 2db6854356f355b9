package repositories

import (
	"context"
	"errors"

	"mockmate/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// the store already holds an attempt with the same key
	ErrAlreadyRecorded = errors.New("answer already recorded")
)

type InterviewRepository interface {
	Create(ctx context.Context, profile *models.InterviewProfile) error
	GetByID(ctx context.Context, id string) (*models.InterviewProfile, error)
	// newest first
	ListByUser(ctx context.Context, userID string) ([]models.InterviewProfile, error)
	Update(ctx context.Context, profile *models.InterviewProfile) error
	Delete(ctx context.Context, id string) error
}

type AnswerRepository interface {
	// reports whether an attempt exists for the (user, question) pair
	ExistsForQuestion(ctx context.Context, userID, question string) (bool, error)
	// rejects a duplicate attempt key with ErrAlreadyRecorded
	Create(ctx context.Context, attempt *models.AnswerAttempt) error
	// oldest first
	ListByInterview(ctx context.Context, interviewID, userID string) ([]models.AnswerAttempt, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Interviews InterviewRepository
	Answers    AnswerRepository
	Ping       func(ctx context.Context) error
	Close      func(ctx context.Context) error
}
