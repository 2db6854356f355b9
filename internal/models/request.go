package models

import (
	"strings"
	"unicode/utf8"
)

// InterviewRequest is the body of the create/update interview form.
type InterviewRequest struct {
	Position      string         `json:"position"`
	Description   string         `json:"description"`
	Experience    int            `json:"experience"`
	TechStack     string         `json:"tech_stack"`
	QuestionTypes []QuestionType `json:"question_types"`
}

// implements the Validator interface
func (r *InterviewRequest) Validate() error {
	r.Position = strings.TrimSpace(r.Position)
	r.Description = strings.TrimSpace(r.Description)
	r.TechStack = strings.TrimSpace(r.TechStack)

	var details []ValidationErrorDetail
	if r.Position == "" {
		details = append(details, ValidationErrorDetail{Field: "position", Reason: "Position is required"})
	}
	if utf8.RuneCountInString(r.Description) < MinDescriptionLength {
		details = append(details, ValidationErrorDetail{Field: "description", Reason: "Description must be at least 10 characters"})
	}
	if r.Experience < 0 {
		details = append(details, ValidationErrorDetail{Field: "experience", Reason: "Experience must be 0 or greater"})
	}
	if r.TechStack == "" {
		details = append(details, ValidationErrorDetail{Field: "tech_stack", Reason: "Tech stack is required"})
	}

	types, ok := normalizeQuestionTypes(r.QuestionTypes)
	switch {
	case !ok:
		details = append(details, ValidationErrorDetail{Field: "question_types", Reason: "Question types must be theory or dsa"})
	case len(types) == 0:
		details = append(details, ValidationErrorDetail{Field: "question_types", Reason: "Select at least one question type"})
	}
	r.QuestionTypes = types

	if len(details) > 0 {
		return &ErrorResponse{
			Code:    CodeValidationFailed,
			Message: "Interview form is invalid",
			Details: details,
		}
	}
	return nil
}

// UpdateInterviewRequest is InterviewRequest with the edit-form default:
// omitted question types reset to every category.
type UpdateInterviewRequest struct {
	InterviewRequest
}

func (r *UpdateInterviewRequest) Validate() error {
	if len(r.QuestionTypes) == 0 {
		r.QuestionTypes = QuestionTypesList()
	}
	return r.InterviewRequest.Validate()
}

// lowercases, drops duplicates and orders categories canonically
func normalizeQuestionTypes(in []QuestionType) ([]QuestionType, bool) {
	seen := make(map[QuestionType]bool, len(in))
	for _, qt := range in {
		qt = QuestionType(strings.ToLower(strings.TrimSpace(string(qt))))
		if !ValidQuestionTypes[qt] {
			return nil, false
		}
		seen[qt] = true
	}
	out := make([]QuestionType, 0, len(seen))
	for _, qt := range QuestionTypesList() {
		if seen[qt] {
			out = append(out, qt)
		}
	}
	return out, true
}

// Segment is one speech-recognition result pushed by the browser.
type Segment struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"is_final"`
}

// SegmentsRequest carries the full recognition result list received so far.
type SegmentsRequest struct {
	Segments []Segment `json:"segments"`
}

func (r *SegmentsRequest) Validate() error {
	if r.Segments == nil {
		return &ErrorResponse{Code: "missing_segments", Message: "segments field is required"}
	}
	return nil
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

func (r *ThemeRequest) Validate() error {
	theme, ok := ParseTheme(r.Theme)
	if !ok {
		return &ErrorResponse{Code: CodeValidationFailed, Message: "Theme must be one of: light, dark"}
	}
	r.Theme = string(theme)
	return nil
}
