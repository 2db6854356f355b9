package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"mockmate/internal/metrics"
	"mockmate/internal/models"
)

const DefaultTTL = 30 * time.Minute

// Registry holds open capture sessions in memory and expires abandoned ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	ttl      time.Duration

	evaluator Evaluator
	recorder  Recorder
	logger    *zap.Logger
}

func NewRegistry(evaluator Evaluator, recorder Recorder, ttl time.Duration, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:  make(map[Key]*Session),
		ttl:       ttl,
		evaluator: evaluator,
		recorder:  recorder,
		logger:    logger,
	}
}

// Open returns the session for key, creating it when missing. A session opened for
// a different question text (the interview was regenerated) is replaced.
func (r *Registry) Open(key Key, question models.QuestionAnswerPair) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		if s.Question() == question && s.Snapshot().State != StateClosed {
			return s
		}
		s.Close()
	}
	s := New(key, question, r.evaluator, r.recorder, r.logger)
	r.sessions[key] = s
	metrics.SetActiveSessions(len(r.sessions))
	return s
}

func (r *Registry) Get(key Key) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Remove closes and forgets the session; it reports whether one existed.
func (r *Registry) Remove(key Key) bool {
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	metrics.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// RemoveInterview closes every session of an interview, used when it is deleted or regenerated.
func (r *Registry) RemoveInterview(interviewID string) int {
	r.mu.Lock()
	var closing []*Session
	for key, s := range r.sessions {
		if key.InterviewID == interviewID {
			closing = append(closing, s)
			delete(r.sessions, key)
		}
	}
	metrics.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	for _, s := range closing {
		s.Close()
	}
	return len(closing)
}

// Sweep closes sessions idle for longer than the TTL. Sessions with an evaluation or
// save in flight are left alone.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*Session
	for key, s := range r.sessions {
		last, expirable := s.idleSince()
		if expirable && now.Sub(last) > r.ttl {
			expired = append(expired, s)
			delete(r.sessions, key)
		}
	}
	metrics.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.logger.Info("expired capture sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// CloseAll closes every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[Key]*Session)
	metrics.SetActiveSessions(0)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

// Size returns the number of open sessions
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
