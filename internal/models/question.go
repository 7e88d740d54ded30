package models

import (
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillInBlank    QuestionType = "fill_in_blank"
)

// Question is immutable once referenced by a published test. CorrectAnswer and
// the options' IsCorrect flags are the answer key; they are excluded from JSON
// and must never reach a student-facing payload.
type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Text string       `json:"text" gorm:"not null;type:text" validate:"required,min=1,max=2000"`
	Type QuestionType `json:"type" gorm:"not null;size:30;index" validate:"required,question_type"`

	// Answer key for fill_in_blank questions. Compared case-insensitively with
	// surrounding whitespace trimmed.
	CorrectAnswer *string `json:"-" gorm:"type:text"`

	Marks int `json:"marks" gorm:"not null;default:1" validate:"required,min=1,max=100"`

	CreatedBy string    `json:"created_by" gorm:"not null;size:64;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

// QuestionOption is one selectable choice. Position preserves authoring order;
// selected-option indexes in answers refer to this ordering.
type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Position   int    `json:"position" gorm:"not null"`
	Text       string `json:"text" gorm:"not null;type:text" validate:"required,min=1,max=500"`
	IsCorrect  bool   `json:"-" gorm:"not null;default:false"`
}

func (Question) TableName() string {
	return "questions"
}

func (QuestionOption) TableName() string {
	return "question_options"
}

func (t QuestionType) IsValid() bool {
	switch t {
	case MultipleChoice, TrueFalse, FillInBlank:
		return true
	}
	return false
}

// IsChoiceBased reports whether answers are given as an option index.
func (t QuestionType) IsChoiceBased() bool {
	return t == MultipleChoice || t == TrueFalse
}
