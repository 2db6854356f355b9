package interviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mockmate/internal/models"
	"mockmate/internal/repositories"
)

var ErrQuestionNotFound = fmt.Errorf("question index out of range: %w", repositories.ErrNotFound)

// Generator produces the question set for a profile.
type Generator interface {
	GenerateQuestions(ctx context.Context, profile *models.InterviewProfile) ([]models.QuestionAnswerPair, error)
}

// SessionCloser drops capture sessions bound to an interview whose questions changed.
type SessionCloser interface {
	RemoveInterview(interviewID string) int
}

// Service owns interview profiles and the feedback report built from their answers.
type Service struct {
	interviews repositories.InterviewRepository
	answers    repositories.AnswerRepository
	generator  Generator
	sessions   SessionCloser
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(interviews repositories.InterviewRepository, answers repositories.AnswerRepository,
	generator Generator, sessions SessionCloser, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		interviews: interviews,
		answers:    answers,
		generator:  generator,
		sessions:   sessions,
		logger:     logger,
		now:        time.Now,
	}
}

// Create generates questions for a validated request and stores the new profile.
func (s *Service) Create(ctx context.Context, userID string, req *models.InterviewRequest) (*models.InterviewProfile, error) {
	if userID == "" {
		return nil, models.ErrAuthRequired
	}
	now := s.now().UTC()
	profile := &models.InterviewProfile{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyRequest(profile, req)

	questions, err := s.generator.GenerateQuestions(ctx, profile)
	if err != nil {
		return nil, err
	}
	profile.Questions = questions

	if err := s.interviews.Create(ctx, profile); err != nil {
		s.logger.Error("failed to store interview", zap.String("user_id", userID), zap.Error(err))
		return nil, remote(err)
	}
	s.logger.Info("interview created",
		zap.String("user_id", userID),
		zap.String("interview_id", profile.ID),
		zap.Int("questions", len(profile.Questions)))
	return profile, nil
}

// List returns the caller's profiles, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.InterviewProfile, error) {
	if userID == "" {
		return nil, models.ErrAuthRequired
	}
	profiles, err := s.interviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, remote(err)
	}
	return profiles, nil
}

// Get returns a profile owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.InterviewProfile, error) {
	if userID == "" {
		return nil, models.ErrAuthRequired
	}
	profile, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, remote(err)
	}
	if profile.UserID != userID {
		return nil, models.ErrForbidden
	}
	return profile, nil
}

// Question returns the pair at index of an owned profile.
func (s *Service) Question(ctx context.Context, userID, id string, index int) (models.QuestionAnswerPair, error) {
	profile, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.QuestionAnswerPair{}, err
	}
	pair, ok := profile.Question(index)
	if !ok {
		return models.QuestionAnswerPair{}, ErrQuestionNotFound
	}
	return pair, nil
}

// Update applies the edited form and regenerates the question set. Open
// capture sessions of the interview are closed since their questions are gone.
func (s *Service) Update(ctx context.Context, userID, id string, req *models.InterviewRequest) (*models.InterviewProfile, error) {
	profile, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyRequest(profile, req)

	questions, err := s.generator.GenerateQuestions(ctx, profile)
	if err != nil {
		return nil, err
	}
	profile.Questions = questions
	profile.UpdatedAt = s.now().UTC()

	if err := s.interviews.Update(ctx, profile); err != nil {
		s.logger.Error("failed to update interview", zap.String("interview_id", id), zap.Error(err))
		return nil, remote(err)
	}
	if s.sessions != nil {
		if n := s.sessions.RemoveInterview(id); n > 0 {
			s.logger.Info("closed capture sessions of edited interview",
				zap.String("interview_id", id), zap.Int("sessions", n))
		}
	}
	return profile, nil
}

// Delete removes an owned profile. Recorded answers are kept.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.interviews.Delete(ctx, id); err != nil {
		return remote(err)
	}
	if s.sessions != nil {
		s.sessions.RemoveInterview(id)
	}
	s.logger.Info("interview deleted", zap.String("user_id", userID), zap.String("interview_id", id))
	return nil
}

// Report collects the caller's answers for an interview with the overall rating.
func (s *Service) Report(ctx context.Context, userID, id string) (*models.FeedbackReport, error) {
	profile, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByInterview(ctx, id, userID)
	if err != nil {
		s.logger.Error("failed to list answers", zap.String("interview_id", id), zap.Error(err))
		return nil, remote(err)
	}

	failed := 0
	for _, a := range answers {
		if a.EvaluationStatus == models.EvaluationFailed {
			failed++
		}
	}
	return &models.FeedbackReport{
		Interview:         profile,
		Answers:           answers,
		OverallRating:     models.OverallRating(answers),
		FailedEvaluations: failed,
	}, nil
}

func applyRequest(profile *models.InterviewProfile, req *models.InterviewRequest) {
	profile.Position = req.Position
	profile.Description = req.Description
	profile.Experience = req.Experience
	profile.TechStack = req.TechStack
	profile.QuestionTypes = req.QuestionTypes
}

// remote keeps ErrNotFound visible and classifies any other store failure.
func remote(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrRemoteOperationFailed, err)
}
