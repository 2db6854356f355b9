package models

import (
	"errors"
	"fmt"
)

const (
	CodeValidationFailed = "validation_failed"
	CodeAuthRequired     = "auth_required"
)

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// validation responses match ErrValidationFailed under errors.Is
func (e *ErrorResponse) Is(target error) bool {
	return target == ErrValidationFailed && e.Code == CodeValidationFailed
}

var _ error = (*ErrorResponse)(nil)

type InterviewsResponse struct {
	Total int                `json:"total"`
	Items []InterviewProfile `json:"items"`
}

// FeedbackReport aggregates one user's answers for one interview.
type FeedbackReport struct {
	Interview         *InterviewProfile `json:"interview"`
	Answers           []AnswerAttempt   `json:"answers"`
	OverallRating     string            `json:"overall_rating"`
	FailedEvaluations int               `json:"failed_evaluations"`
}

// OverallRating averages ratings to one decimal place; "0.0" when there are none.
func OverallRating(answers []AnswerAttempt) string {
	if len(answers) == 0 {
		return "0.0"
	}
	total := 0
	for _, a := range answers {
		total += a.Rating
	}
	return fmt.Sprintf("%.1f", float64(total)/float64(len(answers)))
}

type PersistResponse struct {
	Outcome PersistOutcome `json:"outcome"`
}

type ThemeResponse struct {
	Theme Theme `json:"theme"`
}

// IsValidationError reports whether err should be shown to the user as a form problem.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}
