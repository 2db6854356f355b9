// Package evaluation turns prompts and raw AI replies into typed results:
// question sets for a profile and ratings for a captured answer.
package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mockmate/internal/llm"
	"mockmate/internal/metrics"
	"mockmate/internal/models"
	"mockmate/internal/prompts"
	"mockmate/internal/sanitizer"
)

const (
	DefaultEvaluationTimeout = 60 * time.Second
	DefaultGenerationTimeout = 90 * time.Second
)

// reasons attached to failed evaluation results
const (
	ReasonPrompt    = "prompt_error"
	ReasonGateway   = "gateway_error"
	ReasonTimeout   = "timeout"
	ReasonMalformed = "malformed_response"
	ReasonFields    = "missing_fields"
	ReasonRange     = "rating_out_of_range"
)

type Pipeline struct {
	provider          llm.Provider
	prompts           prompts.PromptProvider
	logger            *zap.Logger
	evaluationTimeout time.Duration
	generationTimeout time.Duration
}

type Option func(*Pipeline)

func WithEvaluationTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.evaluationTimeout = d
		}
	}
}

func WithGenerationTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.generationTimeout = d
		}
	}
}

func NewPipeline(provider llm.Provider, pm prompts.PromptProvider, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		provider:          provider,
		prompts:           pm,
		logger:            logger,
		evaluationTimeout: DefaultEvaluationTimeout,
		generationTimeout: DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// shape requested by the evaluation prompt
type evaluationReply struct {
	Ratings  json.RawMessage `json:"ratings"`
	Feedback *string         `json:"feedback"`
}

// Evaluate scores userAnswer against referenceAnswer. It never returns an error:
// every failure becomes a failed result carrying rating 0 and the fallback feedback.
func (p *Pipeline) Evaluate(ctx context.Context, question, referenceAnswer, userAnswer string) models.EvaluationResult {
	result := p.evaluate(ctx, question, referenceAnswer, userAnswer)
	metrics.RecordEvaluation(string(result.Outcome))
	return result
}

func (p *Pipeline) evaluate(ctx context.Context, question, referenceAnswer, userAnswer string) models.EvaluationResult {
	prompt, err := p.prompts.BuildEvaluationPrompt(question, referenceAnswer, userAnswer)
	if err != nil {
		p.logger.Error("failed to build evaluation prompt", zap.Error(err))
		return models.FailedEvaluation(ReasonPrompt)
	}

	ctx, cancel := context.WithTimeout(ctx, p.evaluationTimeout)
	defer cancel()

	raw, err := p.provider.SendPrompt(ctx, prompt)
	if err != nil {
		reason := ReasonGateway
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			reason = ReasonTimeout
		}
		p.logger.Warn("evaluation request failed",
			zap.String("provider", p.provider.GetProviderName()),
			zap.String("reason", reason),
			zap.Error(err))
		return models.FailedEvaluation(reason)
	}

	var reply evaluationReply
	if err := sanitizer.ParseObject(raw, &reply); err != nil {
		p.logger.Warn("evaluation reply could not be parsed", zap.Error(err))
		return models.FailedEvaluation(ReasonMalformed)
	}
	if len(reply.Ratings) == 0 || reply.Feedback == nil {
		p.logger.Warn("evaluation reply is missing fields", zap.String("reply", raw))
		return models.FailedEvaluation(ReasonFields)
	}
	rating, ok := parseRating(reply.Ratings)
	if !ok {
		p.logger.Warn("evaluation rating is invalid", zap.ByteString("ratings", reply.Ratings))
		return models.FailedEvaluation(ReasonRange)
	}
	return models.SuccessfulEvaluation(rating, strings.TrimSpace(*reply.Feedback))
}

// accepts a JSON number or numeric string, rounded to the nearest integer in [1, 10]
func parseRating(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		n = f
	}
	rating := int(math.Round(n))
	if rating < 1 || rating > 10 {
		return 0, false
	}
	return rating, true
}

// GenerateQuestions asks the gateway for the profile's question set.
// At most QuestionsPerInterview pairs are kept; every pair must carry a question.
func (p *Pipeline) GenerateQuestions(ctx context.Context, profile *models.InterviewProfile) ([]models.QuestionAnswerPair, error) {
	pairs, err := p.generate(ctx, profile)
	result := "success"
	switch {
	case errors.Is(err, sanitizer.ErrMalformedAIResponse):
		result = "malformed"
	case err != nil:
		result = "error"
	}
	metrics.RecordGeneration(result)
	return pairs, err
}

func (p *Pipeline) generate(ctx context.Context, profile *models.InterviewProfile) ([]models.QuestionAnswerPair, error) {
	prompt, err := p.prompts.BuildGenerationPrompt(profile)
	if err != nil {
		return nil, fmt.Errorf("build generation prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.generationTimeout)
	defer cancel()

	raw, err := p.provider.SendPrompt(ctx, prompt)
	if err != nil {
		p.logger.Error("question generation failed",
			zap.String("provider", p.provider.GetProviderName()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrRemoteOperationFailed, err)
	}

	var pairs []models.QuestionAnswerPair
	if err := sanitizer.ExtractArray(raw, &pairs); err != nil {
		p.logger.Warn("generation reply could not be parsed", zap.Error(err))
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: empty question list", sanitizer.ErrMalformedAIResponse)
	}
	for i := range pairs {
		pairs[i].Question = strings.TrimSpace(pairs[i].Question)
		pairs[i].Answer = strings.TrimSpace(pairs[i].Answer)
		if pairs[i].Question == "" {
			return nil, fmt.Errorf("%w: item %d has no question", sanitizer.ErrMalformedAIResponse, i)
		}
	}
	if len(pairs) > models.QuestionsPerInterview {
		pairs = pairs[:models.QuestionsPerInterview]
	}
	return pairs, nil
}
