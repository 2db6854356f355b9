package testhelpers

import (
	"context"
	"sort"
	"sync"

	"mockmate/internal/models"
	"mockmate/internal/repositories"
)

// MemoryAnswers is an in-memory AnswerRepository keyed like the real stores.
type MemoryAnswers struct {
	mu      sync.Mutex
	rows    map[string]models.AnswerAttempt
	Writes  int
	ErrNext error
}

func NewMemoryAnswers() *MemoryAnswers {
	return &MemoryAnswers{rows: make(map[string]models.AnswerAttempt)}
}

func (m *MemoryAnswers) ExistsForQuestion(_ context.Context, userID, question string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return false, err
	}
	_, ok := m.rows[models.AttemptKey(userID, question)]
	return ok, nil
}

func (m *MemoryAnswers) Create(_ context.Context, attempt *models.AnswerAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return err
	}
	if _, ok := m.rows[attempt.ID]; ok {
		return repositories.ErrAlreadyRecorded
	}
	m.rows[attempt.ID] = *attempt
	m.Writes++
	return nil
}

func (m *MemoryAnswers) ListByInterview(_ context.Context, interviewID, userID string) ([]models.AnswerAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AnswerAttempt{}
	for _, a := range m.rows {
		if a.InterviewID == interviewID && a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Count returns the number of stored attempts.
func (m *MemoryAnswers) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MemoryAnswers) takeErr() error {
	err := m.ErrNext
	m.ErrNext = nil
	return err
}

// MemoryInterviews is an in-memory InterviewRepository.
type MemoryInterviews struct {
	mu   sync.Mutex
	rows map[string]models.InterviewProfile
}

func NewMemoryInterviews() *MemoryInterviews {
	return &MemoryInterviews{rows: make(map[string]models.InterviewProfile)}
}

func (m *MemoryInterviews) Create(_ context.Context, profile *models.InterviewProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[profile.ID] = *profile
	return nil
}

func (m *MemoryInterviews) GetByID(_ context.Context, id string) (*models.InterviewProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryInterviews) ListByUser(_ context.Context, userID string) ([]models.InterviewProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.InterviewProfile{}
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryInterviews) Update(_ context.Context, profile *models.InterviewProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[profile.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.rows[profile.ID] = *profile
	return nil
}

func (m *MemoryInterviews) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
