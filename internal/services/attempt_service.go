package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-portal-service/internal/events"
	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/SAP-F-2025/exam-portal-service/internal/validator"
)

// timeTakenTolerance bounds how far the client-reported duration may deviate
// from the server-derived one before the server figure wins.
const timeTakenTolerance = 60 * time.Second

type attemptService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewAttemptService(repo repositories.Repository, logger utils.Logger, validator *validator.Validator, publisher events.EventPublisher) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== START / RESUME =====

func (s *attemptService) Start(ctx context.Context, testID uint, studentID string) (*StartAttemptResponse, error) {
	s.logger.Info("Starting attempt", "test_id", testID, "student_id", studentID)

	test, err := s.repo.Test().GetByIDWithQuestions(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.Status != models.TestStatusActive {
		return nil, ErrTestNotActive
	}

	// One attempt per (test, student): a submitted attempt is terminal, an
	// unsubmitted one resumes with its original clock.
	existing, err := s.repo.Attempt().GetByTestAndStudent(ctx, testID, studentID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up attempt: %w", err)
	}
	if existing != nil {
		return s.resume(test, existing)
	}

	attempt := &models.Attempt{
		TestID:     testID,
		StudentID:  studentID,
		TotalMarks: totalMarks(test.Questions),
		StartedAt:  time.Now().UTC(),
		Answers:    seedAnswers(test.Questions),
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		// The unique index decides races between simultaneous starts. The
		// loser falls through to the resume path instead of erroring.
		if repositories.IsDuplicateKeyError(err) {
			winner, lookupErr := s.repo.Attempt().GetByTestAndStudent(ctx, testID, studentID)
			if lookupErr != nil {
				return nil, fmt.Errorf("failed to load racing attempt: %w", lookupErr)
			}
			return s.resume(test, winner)
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"test_id", testID,
		"student_id", studentID,
		"total_marks", attempt.TotalMarks)

	s.publishAsync(events.NewAttemptStartedEvent(attempt.ID, testID, test.Title, studentID, attempt.StartedAt, test.Duration))

	return s.buildStartResponse(test, attempt, false), nil
}

func (s *attemptService) resume(test *models.Test, attempt *models.Attempt) (*StartAttemptResponse, error) {
	if attempt.IsSubmitted() {
		return nil, ErrAttemptAlreadyAttempted
	}

	s.logger.Info("Resuming attempt",
		"attempt_id", attempt.ID,
		"test_id", test.ID,
		"student_id", attempt.StudentID)

	return s.buildStartResponse(test, attempt, true), nil
}

func (s *attemptService) buildStartResponse(test *models.Test, attempt *models.Attempt, resumed bool) *StartAttemptResponse {
	// Remaining time always counts from the original start; resuming never
	// resets the clock.
	remaining := test.Duration*60 - int(time.Since(attempt.StartedAt).Seconds())
	if remaining < 0 {
		remaining = 0
	}

	return &StartAttemptResponse{
		AttemptID:        attempt.ID,
		TestID:           test.ID,
		DurationMinutes:  test.Duration,
		QuestionCount:    len(test.Questions),
		TotalMarks:       attempt.TotalMarks,
		StartTime:        attempt.StartedAt,
		RemainingSeconds: remaining,
		Resumed:          resumed,
	}
}

func seedAnswers(questions []models.TestQuestion) []models.AttemptAnswer {
	answers := make([]models.AttemptAnswer, len(questions))
	for i, tq := range questions {
		answers[i] = models.AttemptAnswer{
			QuestionID: tq.QuestionID,
			Position:   i,
		}
	}
	return answers
}

// ===== SUBMIT =====

func (s *attemptService) Submit(ctx context.Context, testID uint, studentID string, req *SubmitAttemptRequest) (*SubmissionReceipt, error) {
	s.logger.Info("Submitting attempt",
		"test_id", testID,
		"student_id", studentID,
		"answers_count", len(req.Answers),
		"auto_submitted", req.AutoSubmitted)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByTestAndStudent(ctx, testID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotStarted
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.IsSubmitted() {
		return nil, ErrAttemptAlreadySubmitted
	}

	answers, score, err := s.gradeSubmission(ctx, req.Answers)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := repositories.FinalizeAttempt{
		Answers:       answers,
		Score:         score,
		Percentage:    percentage(score, attempt.TotalMarks),
		TimeTaken:     s.effectiveTimeTaken(attempt, req.TimeTakenSeconds, now),
		AutoSubmitted: req.AutoSubmitted,
		SubmittedAt:   now,
	}

	// Finalization is a compare-and-set on submitted_at; whichever of the
	// manual, timer, or proctoring triggers lands second sees the conflict.
	if err := s.repo.Attempt().Finalize(ctx, attempt.ID, result); err != nil {
		if err == repositories.ErrAlreadyFinalized {
			return nil, ErrAttemptAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"score", score,
		"total_marks", attempt.TotalMarks,
		"auto_submitted", req.AutoSubmitted)

	s.publishAsync(events.NewAttemptSubmittedEvent(attempt.ID, testID, studentID, now, score, attempt.TotalMarks, req.AutoSubmitted))

	return &SubmissionReceipt{
		Message:       "Test submitted successfully",
		Score:         score,
		TotalMarks:    attempt.TotalMarks,
		Percentage:    result.Percentage,
		AutoSubmitted: req.AutoSubmitted,
	}, nil
}

// gradeSubmission resolves each submitted answer against the question store
// and derives its correctness flag. Answers whose question id no longer
// resolves are dropped; a single dangling reference must not abort grading.
func (s *attemptService) gradeSubmission(ctx context.Context, submitted []SubmittedAnswer) ([]models.AttemptAnswer, int, error) {
	ids := make([]uint, 0, len(submitted))
	for _, ans := range submitted {
		ids = append(ids, ans.QuestionID)
	}

	questions, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve questions: %w", err)
	}
	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var graded []models.AttemptAnswer
	score := 0
	for _, ans := range submitted {
		question, ok := byID[ans.QuestionID]
		if !ok {
			s.logger.Warn("Dropping answer for unknown question", "question_id", ans.QuestionID)
			continue
		}

		correct := gradeAnswer(question, ans)
		if correct {
			score += question.Marks
		}

		graded = append(graded, models.AttemptAnswer{
			QuestionID:     ans.QuestionID,
			Position:       len(graded),
			SelectedOption: ans.SelectedOption,
			TextAnswer:     ans.TextAnswer,
			IsCorrect:      correct,
		})
	}

	return graded, score, nil
}

// effectiveTimeTaken recomputes the duration server-side and only keeps the
// client figure when it is within tolerance of the authoritative one.
func (s *attemptService) effectiveTimeTaken(attempt *models.Attempt, clientSeconds int, now time.Time) int {
	serverSeconds := int(now.Sub(attempt.StartedAt).Seconds())
	if serverSeconds < 0 {
		serverSeconds = 0
	}

	deviation := time.Duration(clientSeconds-serverSeconds) * time.Second
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation > timeTakenTolerance {
		s.logger.Warn("Client-reported time taken deviates from server clock",
			"attempt_id", attempt.ID,
			"client_seconds", clientSeconds,
			"server_seconds", serverSeconds)
		return serverSeconds
	}
	return clientSeconds
}

// ===== PROCTORING =====

func (s *attemptService) ReportProctoringEvent(ctx context.Context, testID uint, studentID string, req *ReportProctoringEventRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	attempt, err := s.repo.Attempt().GetByTestAndStudent(ctx, testID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotStarted
		}
		return fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.IsSubmitted() {
		return ErrAttemptAlreadySubmitted
	}

	event := &models.ProctoringEvent{
		AttemptID:  attempt.ID,
		Type:       req.Type,
		TimeOffset: req.TimeOffset,
	}
	if req.Data != nil {
		data, err := json.Marshal(req.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}
		event.Data = data
	}

	if err := s.repo.Proctoring().Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record proctoring event: %w", err)
	}

	s.logger.Info("Proctoring event recorded",
		"attempt_id", attempt.ID,
		"type", req.Type,
		"time_offset", req.TimeOffset)

	return nil
}

// ===== HELPERS =====

func (s *attemptService) publishAsync(event *events.Event) {
	if s.publisher == nil {
		return
	}
	go func() {
		if err := s.publisher.Publish(context.Background(), event); err != nil {
			s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
		}
	}()
}
