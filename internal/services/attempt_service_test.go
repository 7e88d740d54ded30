package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-portal-service/internal/events"
	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/SAP-F-2025/exam-portal-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func quietLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newAttemptServiceForTest(repo *MockRepository) AttemptService {
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewAttemptService(repo, quietLogger(), validator.New(), publisher)
}

// geographyTest builds an active three-question test worth 3 marks.
func geographyTest() *models.Test {
	return &models.Test{
		ID:       10,
		Title:    "Geography Basics",
		Duration: 30,
		Status:   models.TestStatusActive,
		Questions: []models.TestQuestion{
			{QuestionID: 1, Position: 0, Question: models.Question{
				ID: 1, Type: models.MultipleChoice, Marks: 1,
				Options: []models.QuestionOption{
					{Position: 0, Text: "London"},
					{Position: 1, Text: "Paris", IsCorrect: true},
					{Position: 2, Text: "Berlin"},
				},
			}},
			{QuestionID: 2, Position: 1, Question: models.Question{
				ID: 2, Type: models.TrueFalse, Marks: 1,
				Options: []models.QuestionOption{
					{Position: 0, Text: "True", IsCorrect: true},
					{Position: 1, Text: "False"},
				},
			}},
			{QuestionID: 3, Position: 2, Question: models.Question{
				ID: 3, Type: models.FillInBlank, Marks: 1,
				CorrectAnswer: strPtr("Nile"),
			}},
		},
	}
}

func questionsOf(test *models.Test) []*models.Question {
	questions := make([]*models.Question, len(test.Questions))
	for i := range test.Questions {
		q := test.Questions[i].Question
		questions[i] = &q
	}
	return questions
}

// ===== START =====

func TestAttemptService_Start_NewAttempt(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(10)).Return(test, nil)
	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(nil, gorm.ErrRecordNotFound)
	repo.attempt.On("Create", mock.Anything, mock.AnythingOfType("*models.Attempt")).
		Run(func(args mock.Arguments) {
			attempt := args.Get(1).(*models.Attempt)
			attempt.ID = 77
			assert.Equal(t, 3, attempt.TotalMarks)
			assert.Len(t, attempt.Answers, 3)
			assert.Equal(t, uint(1), attempt.Answers[0].QuestionID)
		}).
		Return(nil)

	resp, err := svc.Start(context.Background(), 10, "student-1")
	require.NoError(t, err)

	assert.Equal(t, uint(77), resp.AttemptID)
	assert.Equal(t, uint(10), resp.TestID)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, 3, resp.QuestionCount)
	assert.Equal(t, 3, resp.TotalMarks)
	assert.False(t, resp.Resumed)
	assert.InDelta(t, 30*60, resp.RemainingSeconds, 2)
}

func TestAttemptService_Start_ResumeKeepsOriginalClock(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()

	existing := &models.Attempt{
		ID:         5,
		TestID:     10,
		StudentID:  "student-1",
		TotalMarks: 3,
		StartedAt:  time.Now().UTC().Add(-10 * time.Minute),
	}

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(10)).Return(test, nil)
	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(existing, nil)

	resp, err := svc.Start(context.Background(), 10, "student-1")
	require.NoError(t, err)

	assert.True(t, resp.Resumed)
	assert.Equal(t, uint(5), resp.AttemptID)
	assert.InDelta(t, 20*60, resp.RemainingSeconds, 2)
	repo.attempt.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAttemptService_Start_ExpiredResumeClampsToZero(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()

	existing := &models.Attempt{
		ID:        5,
		TestID:    10,
		StudentID: "student-1",
		StartedAt: time.Now().UTC().Add(-2 * time.Hour),
	}

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(10)).Return(test, nil)
	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(existing, nil)

	resp, err := svc.Start(context.Background(), 10, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RemainingSeconds)
}

func TestAttemptService_Start_AlreadySubmitted(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()

	submittedAt := time.Now().UTC().Add(-time.Hour)
	existing := &models.Attempt{
		ID:          5,
		TestID:      10,
		StudentID:   "student-1",
		StartedAt:   submittedAt.Add(-30 * time.Minute),
		SubmittedAt: &submittedAt,
	}

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(10)).Return(test, nil)
	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(existing, nil)

	_, err := svc.Start(context.Background(), 10, "student-1")
	assert.ErrorIs(t, err, ErrAttemptAlreadyAttempted)
}

func TestAttemptService_Start_DraftTestRejected(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()
	test.Status = models.TestStatusDraft

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(10)).Return(test, nil)

	_, err := svc.Start(context.Background(), 10, "student-1")
	assert.ErrorIs(t, err, ErrTestNotActive)
}

func TestAttemptService_Start_TestNotFound(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(10)).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Start(context.Background(), 10, "student-1")
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestAttemptService_Start_DuplicateRaceResumesWinner(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()

	winner := &models.Attempt{
		ID:         42,
		TestID:     10,
		StudentID:  "student-1",
		TotalMarks: 3,
		StartedAt:  time.Now().UTC(),
	}

	repo.test.On("GetByIDWithQuestions", mock.Anything, uint(10)).Return(test, nil)
	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(nil, gorm.ErrRecordNotFound).Once()
	repo.attempt.On("Create", mock.Anything, mock.AnythingOfType("*models.Attempt")).
		Return(gorm.ErrDuplicatedKey)
	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(winner, nil).Once()

	resp, err := svc.Start(context.Background(), 10, "student-1")
	require.NoError(t, err)
	assert.True(t, resp.Resumed)
	assert.Equal(t, uint(42), resp.AttemptID)
}

// ===== SUBMIT =====

func inProgressAttempt() *models.Attempt {
	return &models.Attempt{
		ID:         77,
		TestID:     10,
		StudentID:  "student-1",
		TotalMarks: 3,
		StartedAt:  time.Now().UTC().Add(-5 * time.Minute),
	}
}

func TestAttemptService_Submit_AllCorrect(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()
	attempt := inProgressAttempt()

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)
	repo.question.On("GetByIDs", mock.Anything, []uint{1, 2, 3}).
		Return(questionsOf(test), nil)

	var finalized repositories.FinalizeAttempt
	repo.attempt.On("Finalize", mock.Anything, uint(77), mock.AnythingOfType("repositories.FinalizeAttempt")).
		Run(func(args mock.Arguments) {
			finalized = args.Get(2).(repositories.FinalizeAttempt)
		}).
		Return(nil)

	receipt, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: 1, SelectedOption: intPtr(1)},
			{QuestionID: 2, SelectedOption: intPtr(0)},
			{QuestionID: 3, TextAnswer: strPtr(" nile ")},
		},
		TimeTakenSeconds: 290,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, receipt.Score)
	assert.Equal(t, 3, receipt.TotalMarks)
	assert.Equal(t, 100.0, receipt.Percentage)
	assert.False(t, receipt.AutoSubmitted)

	require.Len(t, finalized.Answers, 3)
	assert.True(t, finalized.Answers[0].IsCorrect)
	assert.True(t, finalized.Answers[2].IsCorrect)
	assert.Equal(t, 290, finalized.TimeTaken)
}

func TestAttemptService_Submit_UnansweredScoresZero(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()
	attempt := inProgressAttempt()

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)
	repo.question.On("GetByIDs", mock.Anything, []uint{1, 3}).
		Return([]*models.Question{questionsOf(test)[0], questionsOf(test)[2]}, nil)
	repo.attempt.On("Finalize", mock.Anything, uint(77), mock.Anything).Return(nil)

	receipt, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: 1, SelectedOption: intPtr(1)},
			{QuestionID: 3, TextAnswer: strPtr("Amazon")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, receipt.Score)
	assert.InDelta(t, 33.33, receipt.Percentage, 0.01)
}

func TestAttemptService_Submit_UnknownQuestionDropped(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	test := geographyTest()
	attempt := inProgressAttempt()

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)
	repo.question.On("GetByIDs", mock.Anything, []uint{1, 999}).
		Return([]*models.Question{questionsOf(test)[0]}, nil)

	var finalized repositories.FinalizeAttempt
	repo.attempt.On("Finalize", mock.Anything, uint(77), mock.Anything).
		Run(func(args mock.Arguments) {
			finalized = args.Get(2).(repositories.FinalizeAttempt)
		}).
		Return(nil)

	receipt, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: 1, SelectedOption: intPtr(1)},
			{QuestionID: 999, SelectedOption: intPtr(0)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, receipt.Score)
	require.Len(t, finalized.Answers, 1)
	assert.Equal(t, uint(1), finalized.Answers[0].QuestionID)
}

func TestAttemptService_Submit_NotStarted(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrAttemptNotStarted)
}

func TestAttemptService_Submit_AlreadySubmitted(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	attempt := inProgressAttempt()
	now := time.Now().UTC()
	attempt.SubmittedAt = &now

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)

	_, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
}

func TestAttemptService_Submit_LostFinalizeRace(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	attempt := inProgressAttempt()

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)
	repo.question.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*models.Question{}, nil)
	repo.attempt.On("Finalize", mock.Anything, uint(77), mock.Anything).
		Return(repositories.ErrAlreadyFinalized)

	_, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{
		AutoSubmitted: true,
	})
	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
}

func TestAttemptService_Submit_ZeroTotalMarks(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	attempt := inProgressAttempt()
	attempt.TotalMarks = 0

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)
	repo.question.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*models.Question{}, nil)

	var finalized repositories.FinalizeAttempt
	repo.attempt.On("Finalize", mock.Anything, uint(77), mock.Anything).
		Run(func(args mock.Arguments) {
			finalized = args.Get(2).(repositories.FinalizeAttempt)
		}).
		Return(nil)

	receipt, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, receipt.Percentage)
	assert.Equal(t, 0.0, finalized.Percentage)
}

func TestAttemptService_Submit_ServerClockOverridesWildTimeTaken(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	attempt := inProgressAttempt() // started 5 minutes ago

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)
	repo.question.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*models.Question{}, nil)

	var finalized repositories.FinalizeAttempt
	repo.attempt.On("Finalize", mock.Anything, uint(77), mock.Anything).
		Run(func(args mock.Arguments) {
			finalized = args.Get(2).(repositories.FinalizeAttempt)
		}).
		Return(nil)

	_, err := svc.Submit(context.Background(), 10, "student-1", &SubmitAttemptRequest{
		TimeTakenSeconds: 4000,
	})
	require.NoError(t, err)

	// 4000s deviates far beyond tolerance; the server-derived ~300s wins.
	assert.InDelta(t, 300, finalized.TimeTaken, 5)
}

// ===== PROCTORING =====

func TestAttemptService_ReportProctoringEvent(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	attempt := inProgressAttempt()

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)
	repo.proctoring.On("Create", mock.Anything, mock.AnythingOfType("*models.ProctoringEvent")).
		Run(func(args mock.Arguments) {
			event := args.Get(1).(*models.ProctoringEvent)
			assert.Equal(t, uint(77), event.AttemptID)
			assert.Equal(t, models.EventTabSwitch, event.Type)
		}).
		Return(nil)

	err := svc.ReportProctoringEvent(context.Background(), 10, "student-1", &ReportProctoringEventRequest{
		Type:       models.EventTabSwitch,
		TimeOffset: 120,
	})
	assert.NoError(t, err)
}

func TestAttemptService_ReportProctoringEvent_SubmittedAttemptRejected(t *testing.T) {
	repo := NewMockRepository()
	svc := newAttemptServiceForTest(repo)
	attempt := inProgressAttempt()
	now := time.Now().UTC()
	attempt.SubmittedAt = &now

	repo.attempt.On("GetByTestAndStudent", mock.Anything, uint(10), "student-1").
		Return(attempt, nil)

	err := svc.ReportProctoringEvent(context.Background(), 10, "student-1", &ReportProctoringEventRequest{
		Type: models.EventWindowBlur,
	})
	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
}
