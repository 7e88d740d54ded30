package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateQuestionOptionRequest struct {
	Text      string `json:"text" validate:"required,min=1,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

type CreateQuestionRequest struct {
	Text          string                        `json:"text" validate:"required,min=1,max=2000"`
	Type          models.QuestionType           `json:"type" validate:"required,question_type"`
	Options       []CreateQuestionOptionRequest `json:"options" validate:"omitempty,max=10,dive"`
	CorrectAnswer *string                       `json:"correct_answer"`
	Marks         int                           `json:"marks" validate:"required,min=1,max=100"`
}

type CreateTestRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Duration    int     `json:"duration" validate:"required,min=1,max=300"` // minutes
	QuestionIDs []uint  `json:"question_ids" validate:"required,min=1"`
}

type UpdateTestRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Duration    *int    `json:"duration" validate:"omitempty,min=1,max=300"`
	QuestionIDs []uint  `json:"question_ids" validate:"omitempty,min=1"`
}

// StartAttemptResponse is the start payload. It never carries answer keys.
// StartTime is always the attempt's original creation time, also on resume.
type StartAttemptResponse struct {
	AttemptID        uint      `json:"attempt_id"`
	TestID           uint      `json:"test_id"`
	DurationMinutes  int       `json:"duration_minutes"`
	QuestionCount    int       `json:"question_count"`
	TotalMarks       int       `json:"total_marks"`
	StartTime        time.Time `json:"start_time"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Resumed          bool      `json:"resumed"`
}

// SubmittedAnswer is the tagged answer variant: choice questions carry
// SelectedOption, fill-in-blank carries TextAnswer. Dispatch is always by the
// question's declared type, never by which field happens to be set.
type SubmittedAnswer struct {
	QuestionID     uint    `json:"question_id" validate:"required"`
	SelectedOption *int    `json:"selected_option"`
	TextAnswer     *string `json:"text_answer"`
}

type SubmitAttemptRequest struct {
	Answers          []SubmittedAnswer `json:"answers" validate:"dive"`
	TimeTakenSeconds int               `json:"time_taken_seconds" validate:"min=0"`
	AutoSubmitted    bool              `json:"auto_submitted"`
}

type SubmissionReceipt struct {
	Message       string  `json:"message"`
	Score         int     `json:"score"`
	TotalMarks    int     `json:"total_marks"`
	Percentage    float64 `json:"percentage"`
	AutoSubmitted bool    `json:"auto_submitted"`
}

type ReportProctoringEventRequest struct {
	Type       models.ProctoringEventType `json:"type" validate:"required,oneof=tab_switch window_blur"`
	TimeOffset int                        `json:"time_offset" validate:"min=0"`
	Data       map[string]interface{}     `json:"data"`
}

// ===== STUDENT-FACING VIEWS (answer key stripped) =====

type OptionView struct {
	Text string `json:"text"`
}

type QuestionView struct {
	ID      uint                `json:"id"`
	Text    string              `json:"text"`
	Type    models.QuestionType `json:"type"`
	Marks   int                 `json:"marks"`
	Options []OptionView        `json:"options"`
}

type TestView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Duration    int            `json:"duration"`
	Questions   []QuestionView `json:"questions"`
}

type TestSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Duration    int       `json:"duration"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentResult is the student's own result view, stripped of scoring detail
// to match what the teacher-facing views reserve for teachers.
type StudentResult struct {
	AttemptID     uint       `json:"attempt_id"`
	TestID        uint       `json:"test_id"`
	TestTitle     string     `json:"test_title"`
	TimeTaken     int        `json:"time_taken"`
	AutoSubmitted bool       `json:"auto_submitted"`
	SubmittedAt   *time.Time `json:"submitted_at"`
}

// ===== SERVICE INTERFACES =====

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Question, error)
	ListByCreator(ctx context.Context, creatorID string, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	Delete(ctx context.Context, id uint, userID string) error
}

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*models.Test, error)
	Update(ctx context.Context, id uint, req *UpdateTestRequest, userID string) (*models.Test, error)
	Delete(ctx context.Context, id uint, userID string) error
	Publish(ctx context.Context, id uint, userID string) error
	GetForOwner(ctx context.Context, id uint, userID string) (*models.Test, error)
	// GetForStudent returns the sanitized view of a published test.
	GetForStudent(ctx context.Context, id uint) (*TestView, error)
	ListByCreator(ctx context.Context, creatorID string, filters repositories.TestFilters) ([]*models.Test, int64, error)
	ListActive(ctx context.Context, filters repositories.TestFilters) ([]TestSummary, int64, error)
}

type AttemptService interface {
	Start(ctx context.Context, testID uint, studentID string) (*StartAttemptResponse, error)
	Submit(ctx context.Context, testID uint, studentID string, req *SubmitAttemptRequest) (*SubmissionReceipt, error)
	ReportProctoringEvent(ctx context.Context, testID uint, studentID string, req *ReportProctoringEventRequest) error
}

type ResultService interface {
	ListByTest(ctx context.Context, testID uint, userID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error)
	ListOwn(ctx context.Context, studentID string, filters repositories.AttemptFilters) ([]StudentResult, int64, error)
	GetDetail(ctx context.Context, attemptID uint, userID string) (*models.Attempt, error)
	ProctoringLog(ctx context.Context, attemptID uint, userID string) ([]*models.ProctoringEvent, error)
}

type ExportService interface {
	// ExportTestResults renders a test's finalized attempts as an xlsx workbook.
	ExportTestResults(ctx context.Context, testID uint, userID string) ([]byte, error)
}

// ServiceManager bundles the services for handler wiring.
type ServiceManager interface {
	Question() QuestionService
	Test() TestService
	Attempt() AttemptService
	Result() ResultService
	Export() ExportService
}
