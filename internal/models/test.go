package models

import (
	"time"
)

type TestStatus string

const (
	TestStatusDraft  TestStatus = "draft"
	TestStatusActive TestStatus = "active"
)

// Test is an ordered collection of question references with a duration.
// Publishing (draft -> active) makes it visible and attemptable by students;
// re-drafting is not supported.
type Test struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Duration    int        `json:"duration" gorm:"not null" validate:"required,min=1,max=300"` // minutes
	Status      TestStatus `json:"status" gorm:"not null;default:draft;index" validate:"omitempty,test_status"`

	CreatedBy string    `json:"created_by" gorm:"not null;size:64;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []TestQuestion `json:"questions" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
	Attempts  []Attempt      `json:"-" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
}

// TestQuestion links a question into a test at a position. Duplicate question
// references are tolerated as a degenerate case.
type TestQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	TestID     uint `json:"test_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`
	Position   int  `json:"position" gorm:"not null"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (Test) TableName() string {
	return "tests"
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

func (s TestStatus) IsValid() bool {
	return s == TestStatusDraft || s == TestStatusActive
}
