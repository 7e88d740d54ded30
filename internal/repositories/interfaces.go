package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
)

// Repository aggregates all entity repositories behind one handle.
// WithTransaction runs fn against a transactional view of the same set.
type Repository interface {
	Question() QuestionRepository
	Test() TestRepository
	Attempt() AttemptRepository
	Proctoring() ProctoringRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// QuestionRepository covers the immutable question catalog.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	// GetByIDs returns the questions that exist among ids, answer key included.
	// Missing ids are omitted, not an error.
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	GetByCreator(ctx context.Context, creatorID string, filters QuestionFilters) ([]*models.Question, int64, error)
	// CountTestReferences reports how many tests reference the question.
	CountTestReferences(ctx context.Context, id uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// TestRepository covers the test catalog.
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	// GetByIDWithQuestions preloads the ordered question references and their
	// question rows (answer key included; sanitization happens in services).
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	// Delete removes the test and cascades to its attempts.
	Delete(ctx context.Context, id uint) error
	UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error
	GetByCreator(ctx context.Context, creatorID string, filters TestFilters) ([]*models.Test, int64, error)
	GetActive(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
}

// AttemptRepository covers the attempt ledger. Create relies on the
// (test_id, student_id) unique index; callers must map duplicate-key errors
// into the resume path.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	GetByTestAndStudent(ctx context.Context, testID uint, studentID string) (*models.Attempt, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.Attempt, error)
	// Finalize atomically attaches graded answers and terminal fields. It must
	// only succeed while submitted_at is still NULL; a lost race returns
	// ErrAlreadyFinalized.
	Finalize(ctx context.Context, attemptID uint, result FinalizeAttempt) error
	GetByTest(ctx context.Context, testID uint, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetByStudent(ctx context.Context, studentID string, filters AttemptFilters) ([]*models.Attempt, int64, error)
}

// ProctoringRepository stores advisory client-side integrity events.
type ProctoringRepository interface {
	Create(ctx context.Context, event *models.ProctoringEvent) error
	GetByAttempt(ctx context.Context, attemptID uint) ([]*models.ProctoringEvent, error)
}

// UserRepository syncs identity-provider users into the local mirror.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Type      *models.QuestionType `json:"type"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`
	SortOrder string               `json:"sort_order"`
}

type TestFilters struct {
	Status    *models.TestStatus `json:"status"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	Submitted *bool  `json:"submitted"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// FinalizeAttempt carries the terminal fields written in one atomic update.
type FinalizeAttempt struct {
	Answers       []models.AttemptAnswer
	Score         int
	Percentage    float64
	TimeTaken     int
	AutoSubmitted bool
	SubmittedAt   time.Time
}
