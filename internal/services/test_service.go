package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-portal-service/internal/cache"
	"github.com/SAP-F-2025/exam-portal-service/internal/events"
	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/SAP-F-2025/exam-portal-service/internal/validator"
)

// testViewCacheTTL bounds staleness of the student-facing view. Published
// tests are immutable, so invalidation only matters on delete.
const testViewCacheTTL = 10 * time.Minute

func testViewCacheKey(testID uint) string {
	return fmt.Sprintf("test:view:%d", testID)
}

type testService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	cache     cache.CacheService
	publisher events.EventPublisher
}

func NewTestService(repo repositories.Repository, logger utils.Logger, validator *validator.Validator, cacheService cache.CacheService, publisher events.EventPublisher) TestService {
	return &testService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheService,
		publisher: publisher,
	}
}

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.checkQuestionOwnership(ctx, req.QuestionIDs, creatorID); err != nil {
		return nil, err
	}

	test := &models.Test{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Status:      models.TestStatusDraft,
		CreatedBy:   creatorID,
		Questions:   buildQuestionRefs(req.QuestionIDs),
	}

	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created",
		"test_id", test.ID,
		"title", test.Title,
		"question_count", len(test.Questions),
		"creator_id", creatorID)

	return test, nil
}

func (s *testService) Update(ctx context.Context, id uint, req *UpdateTestRequest, userID string) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test, err := s.getOwned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}
	// Published tests are frozen; attempts price their total marks off the
	// question set at start and must not drift.
	if test.Status == models.TestStatusActive {
		return nil, ErrTestNotEditable
	}

	if req.Title != nil {
		test.Title = *req.Title
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.Duration != nil {
		test.Duration = *req.Duration
	}
	if req.QuestionIDs != nil {
		if err := s.checkQuestionOwnership(ctx, req.QuestionIDs, userID); err != nil {
			return nil, err
		}
		test.Questions = buildQuestionRefs(req.QuestionIDs)
	}

	if err := s.repo.Test().Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.logger.Info("Test updated", "test_id", id, "user_id", userID)
	return test, nil
}

func (s *testService) Delete(ctx context.Context, id uint, userID string) error {
	if _, err := s.getOwned(ctx, id, userID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Test().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}

	if err := s.cache.Delete(ctx, testViewCacheKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate test view cache", "test_id", id, "error", err)
	}

	s.logger.Info("Test deleted", "test_id", id, "user_id", userID)
	return nil
}

func (s *testService) Publish(ctx context.Context, id uint, userID string) error {
	test, err := s.getOwned(ctx, id, userID, "publish")
	if err != nil {
		return err
	}
	if test.Status == models.TestStatusActive {
		return ErrTestAlreadyActive
	}
	if len(test.Questions) == 0 {
		return ErrTestHasNoQuestions
	}

	if err := s.repo.Test().UpdateStatus(ctx, id, models.TestStatusActive); err != nil {
		return fmt.Errorf("failed to publish test: %w", err)
	}

	s.logger.Info("Test published", "test_id", id, "title", test.Title, "user_id", userID)

	if s.publisher != nil {
		event := events.NewTestPublishedEvent(id, test.Title, userID, time.Now().UTC())
		go func() {
			if err := s.publisher.Publish(context.Background(), event); err != nil {
				s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
			}
		}()
	}

	return nil
}

func (s *testService) GetForOwner(ctx context.Context, id uint, userID string) (*models.Test, error) {
	return s.getOwned(ctx, id, userID, "read")
}

// GetForStudent returns the sanitized view of a published test, cached since
// active tests never change.
func (s *testService) GetForStudent(ctx context.Context, id uint) (*TestView, error) {
	var view TestView
	err := s.cache.Get(ctx, testViewCacheKey(id), &view)
	if err == nil {
		return &view, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Test view cache lookup failed", "test_id", id, "error", err)
	}

	test, err := s.repo.Test().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.Status != models.TestStatusActive {
		return nil, ErrTestNotActive
	}

	built := sanitizeTest(test)
	if err := s.cache.Set(ctx, testViewCacheKey(id), built, testViewCacheTTL); err != nil {
		s.logger.Warn("Failed to cache test view", "test_id", id, "error", err)
	}

	return built, nil
}

func (s *testService) ListByCreator(ctx context.Context, creatorID string, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	tests, total, err := s.repo.Test().GetByCreator(ctx, creatorID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, total, nil
}

func (s *testService) ListActive(ctx context.Context, filters repositories.TestFilters) ([]TestSummary, int64, error) {
	tests, total, err := s.repo.Test().GetActive(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list active tests: %w", err)
	}

	summaries := make([]TestSummary, len(tests))
	for i, test := range tests {
		summaries[i] = TestSummary{
			ID:          test.ID,
			Title:       test.Title,
			Description: test.Description,
			Duration:    test.Duration,
			CreatedAt:   test.CreatedAt,
		}
	}
	return summaries, total, nil
}

// ===== HELPERS =====

func (s *testService) getOwned(ctx context.Context, id uint, userID, action string) (*models.Test, error) {
	test, err := s.repo.Test().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "test", action, "not the creator")
	}
	return test, nil
}

func (s *testService) checkQuestionOwnership(ctx context.Context, questionIDs []uint, creatorID string) error {
	questions, err := s.repo.Question().GetByIDs(ctx, questionIDs)
	if err != nil {
		return fmt.Errorf("failed to resolve questions: %w", err)
	}

	found := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		found[q.ID] = q
	}
	for _, id := range questionIDs {
		question, ok := found[id]
		if !ok {
			return ErrQuestionNotFound
		}
		if question.CreatedBy != creatorID {
			return NewPermissionError(creatorID, id, "question", "reference", "not the creator")
		}
	}
	return nil
}

func buildQuestionRefs(questionIDs []uint) []models.TestQuestion {
	refs := make([]models.TestQuestion, len(questionIDs))
	for i, id := range questionIDs {
		refs[i] = models.TestQuestion{QuestionID: id, Position: i}
	}
	return refs
}

// sanitizeTest strips the answer key from a test for student delivery:
// CorrectAnswer and per-option IsCorrect never leave the server.
func sanitizeTest(test *models.Test) *TestView {
	questions := make([]QuestionView, len(test.Questions))
	for i, tq := range test.Questions {
		options := make([]OptionView, len(tq.Question.Options))
		for j, opt := range tq.Question.Options {
			options[j] = OptionView{Text: opt.Text}
		}
		questions[i] = QuestionView{
			ID:      tq.Question.ID,
			Text:    tq.Question.Text,
			Type:    tq.Question.Type,
			Marks:   tq.Question.Marks,
			Options: options,
		}
	}

	return &TestView{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		Duration:    test.Duration,
		Questions:   questions,
	}
}
