package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
)

type resultService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewResultService(repo repositories.Repository, logger utils.Logger) ResultService {
	return &resultService{
		repo:   repo,
		logger: logger,
	}
}

func (s *resultService) ListByTest(ctx context.Context, testID uint, userID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrTestNotFound
		}
		return nil, 0, fmt.Errorf("failed to get test: %w", err)
	}
	if test.CreatedBy != userID {
		return nil, 0, NewPermissionError(userID, testID, "test", "read results", "not the creator")
	}

	attempts, total, err := s.repo.Attempt().GetByTest(ctx, testID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, total, nil
}

func (s *resultService) ListOwn(ctx context.Context, studentID string, filters repositories.AttemptFilters) ([]StudentResult, int64, error) {
	// Students only see finalized attempts of their own.
	submitted := true
	filters.Submitted = &submitted

	attempts, total, err := s.repo.Attempt().GetByStudent(ctx, studentID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}

	results := make([]StudentResult, len(attempts))
	for i, attempt := range attempts {
		results[i] = StudentResult{
			AttemptID:     attempt.ID,
			TestID:        attempt.TestID,
			TestTitle:     attempt.Test.Title,
			TimeTaken:     attempt.TimeTaken,
			AutoSubmitted: attempt.AutoSubmitted,
			SubmittedAt:   attempt.SubmittedAt,
		}
	}
	return results, total, nil
}

// GetDetail returns an attempt with answers. Only the test's creator may see
// the full graded record.
func (s *resultService) GetDetail(ctx context.Context, attemptID uint, userID string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if err := s.checkTestOwnership(ctx, attempt.TestID, attemptID, userID, "read"); err != nil {
		return nil, err
	}

	return attempt, nil
}

func (s *resultService) ProctoringLog(ctx context.Context, attemptID uint, userID string) ([]*models.ProctoringEvent, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if err := s.checkTestOwnership(ctx, attempt.TestID, attemptID, userID, "read proctoring log"); err != nil {
		return nil, err
	}

	log, err := s.repo.Proctoring().GetByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get proctoring events: %w", err)
	}
	return log, nil
}

func (s *resultService) checkTestOwnership(ctx context.Context, testID, attemptID uint, userID, action string) error {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}
	if test.CreatedBy != userID {
		return NewPermissionError(userID, attemptID, "attempt", action, "not the test creator")
	}
	return nil
}
