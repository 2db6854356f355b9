package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// AnswerAttempt is one user's recorded and evaluated response to one interview question.
// ID is derived from (UserID, Question) so the store rejects a second attempt for the same pair.
type AnswerAttempt struct {
	ID               string           `gorm:"primaryKey;type:varchar(64)" bson:"_id" json:"id"`
	InterviewID      string           `gorm:"index;not null" bson:"mockIdRef" json:"interview_id"`
	Question         string           `gorm:"type:text;not null" bson:"question" json:"question"`
	ReferenceAnswer  string           `gorm:"type:text" bson:"correct_ans" json:"reference_answer"`
	UserAnswer       string           `gorm:"type:text" bson:"user_ans" json:"user_answer"`
	Rating           int              `gorm:"not null" bson:"rating" json:"rating"`
	Feedback         string           `gorm:"type:text" bson:"feedback" json:"feedback"`
	EvaluationStatus EvaluationStatus `gorm:"not null;default:'success'" bson:"evaluationStatus" json:"evaluation_status"`
	UserID           string           `gorm:"index;not null" bson:"userId" json:"user_id"`
	CreatedAt        time.Time        `bson:"createdAt" json:"created_at"`
}

func (AnswerAttempt) TableName() string {
	return "user_answers"
}

// AttemptKey builds the deterministic identifier of an answer attempt.
// Question text is trimmed, lowercased and whitespace-collapsed first.
func AttemptKey(userID, question string) string {
	sum := sha256.Sum256([]byte(userID + "\n" + NormalizeQuestion(question)))
	return hex.EncodeToString(sum[:])
}

func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.Join(strings.Fields(question), " "))
}

// EvaluationResult is the tagged outcome of the evaluation pipeline.
// A failed result keeps Rating 0 and the fallback feedback; Outcome and Reason tell it apart
// from a genuine low score.
type EvaluationResult struct {
	Outcome  EvaluationStatus `json:"outcome"`
	Rating   int              `json:"rating"`
	Feedback string           `json:"feedback"`
	Reason   string           `json:"reason,omitempty"`
}

func SuccessfulEvaluation(rating int, feedback string) EvaluationResult {
	return EvaluationResult{Outcome: EvaluationSuccess, Rating: rating, Feedback: feedback}
}

func FailedEvaluation(reason string) EvaluationResult {
	return EvaluationResult{Outcome: EvaluationFailed, Rating: 0, Feedback: FallbackFeedback, Reason: reason}
}

func (r EvaluationResult) Succeeded() bool {
	return r.Outcome == EvaluationSuccess
}
