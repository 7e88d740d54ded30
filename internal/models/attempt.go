package models

import (
	"time"
)

// Attempt is the ledger entry for one student's single interaction with a
// test. The (test_id, student_id) uniqueness constraint enforces the
// one-attempt rule at the storage layer so concurrent starts cannot create
// two rows. SubmittedAt doubles as the lifecycle marker: nil means in
// progress, non-nil means finalized and immutable.
type Attempt struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TestID    uint   `json:"test_id" gorm:"not null;uniqueIndex:idx_attempts_test_student"`
	StudentID string `json:"student_id" gorm:"not null;size:64;uniqueIndex:idx_attempts_test_student"`

	// TotalMarks is frozen at creation from the test's question set at that
	// moment. Later edits to the test must not change it; it is the only valid
	// percentage denominator for this attempt.
	TotalMarks int `json:"total_marks" gorm:"not null"`

	StartedAt time.Time `json:"started_at" gorm:"not null"`

	Score         int        `json:"score" gorm:"not null;default:0"`
	Percentage    float64    `json:"percentage" gorm:"not null;default:0"`
	TimeTaken     int        `json:"time_taken" gorm:"not null;default:0"` // seconds
	AutoSubmitted bool       `json:"auto_submitted" gorm:"not null;default:false"`
	SubmittedAt   *time.Time `json:"submitted_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Test    Test            `json:"-" gorm:"foreignKey:TestID"`
	Student User            `json:"-" gorm:"foreignKey:StudentID"`
	Answers []AttemptAnswer `json:"answers" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

// AttemptAnswer is the per-question sub-record. One empty slot per test
// question is seeded at start; the graded values are attached at submission.
type AttemptAnswer struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AttemptID uint `json:"attempt_id" gorm:"not null;index"`

	QuestionID uint `json:"question_id" gorm:"not null;index"`
	Position   int  `json:"position" gorm:"not null"`

	SelectedOption *int    `json:"selected_option"`
	TextAnswer     *string `json:"text_answer" gorm:"type:text"`
	IsCorrect      bool    `json:"is_correct" gorm:"not null;default:false"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}

// IsSubmitted reports whether the attempt has been finalized.
func (a *Attempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}
