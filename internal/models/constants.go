package models

// QuestionType is a category of generated interview question.
type QuestionType string

const (
	QuestionTypeTheory QuestionType = "theory"
	QuestionTypeDSA    QuestionType = "dsa"
)

// contains all valid question categories (in lowercase)
var ValidQuestionTypes = map[QuestionType]bool{
	QuestionTypeTheory: true,
	QuestionTypeDSA:    true,
}

// canonical order used when rendering prompts
func QuestionTypesList() []QuestionType {
	return []QuestionType{QuestionTypeTheory, QuestionTypeDSA}
}

// EvaluationStatus tells a scored answer apart from a fallback result.
type EvaluationStatus string

const (
	EvaluationSuccess EvaluationStatus = "success"
	EvaluationFailed  EvaluationStatus = "failed"
)

// PersistOutcome is the result of an idempotent answer write.
type PersistOutcome string

const (
	PersistSaved           PersistOutcome = "saved"
	PersistAlreadyRecorded PersistOutcome = "already_recorded"
)

const (
	// number of question/answer pairs requested per interview
	QuestionsPerInterview = 5

	// minimum transcript length (in characters) accepted for evaluation
	MinAnswerLength = 30

	MinDescriptionLength = 10

	// returned in place of AI feedback whenever evaluation cannot complete
	FallbackFeedback = "Unable to generate feedback"
)
