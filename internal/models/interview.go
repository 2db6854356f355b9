package models

import "time"

// QuestionAnswerPair is one generated question with its reference answer.
// Pairs are embedded in their interview and never addressed on their own.
type QuestionAnswerPair struct {
	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`
}

// InterviewProfile is a user-defined interview configuration plus its generated question set.
type InterviewProfile struct {
	ID            string               `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	UserID        string               `gorm:"index;not null" bson:"userId" json:"user_id"`
	Position      string               `gorm:"not null" bson:"position" json:"position"`
	Description   string               `gorm:"type:text;not null" bson:"description" json:"description"`
	Experience    int                  `gorm:"not null" bson:"experience" json:"experience"`
	TechStack     string               `gorm:"not null" bson:"techStack" json:"tech_stack"`
	QuestionTypes []QuestionType       `gorm:"serializer:json" bson:"questionTypes" json:"question_types"`
	Questions     []QuestionAnswerPair `gorm:"serializer:json" bson:"questions" json:"questions"`
	CreatedAt     time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updated_at"`
}

func (InterviewProfile) TableName() string {
	return "interviews"
}

// HasQuestionType reports whether the profile asked for the given category.
func (p *InterviewProfile) HasQuestionType(qt QuestionType) bool {
	for _, t := range p.QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// Question returns the pair at index, or false when out of range.
func (p *InterviewProfile) Question(index int) (QuestionAnswerPair, bool) {
	if index < 0 || index >= len(p.Questions) {
		return QuestionAnswerPair{}, false
	}
	return p.Questions[index], true
}
