package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuestionServiceForTest(repo *MockRepository) QuestionService {
	return NewQuestionService(repo, quietLogger(), validator.New())
}

func TestQuestionService_Create(t *testing.T) {
	repo := NewMockRepository()
	svc := newQuestionServiceForTest(repo)

	repo.question.On("Create", mock.Anything, mock.AnythingOfType("*models.Question")).
		Run(func(args mock.Arguments) {
			question := args.Get(1).(*models.Question)
			question.ID = 1
			assert.Equal(t, "teacher-1", question.CreatedBy)
			require.Len(t, question.Options, 2)
			assert.Equal(t, 0, question.Options[0].Position)
			assert.True(t, question.Options[1].IsCorrect)
		}).
		Return(nil)

	question, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Text:  "Is water wet?",
		Type:  models.TrueFalse,
		Marks: 1,
		Options: []CreateQuestionOptionRequest{
			{Text: "False"},
			{Text: "True", IsCorrect: true},
		},
	}, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), question.ID)
}

func TestQuestionService_Create_IncoherentContentRejected(t *testing.T) {
	repo := NewMockRepository()
	svc := newQuestionServiceForTest(repo)

	// Choice question without a correct option never reaches the store.
	_, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Text:  "Capital of France?",
		Type:  models.MultipleChoice,
		Marks: 1,
		Options: []CreateQuestionOptionRequest{
			{Text: "Paris"},
			{Text: "London"},
		},
	}, "teacher-1")

	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)
	repo.question.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuestionService_Create_FillInBlankNeedsKey(t *testing.T) {
	repo := NewMockRepository()
	svc := newQuestionServiceForTest(repo)

	_, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Text:  "Longest river?",
		Type:  models.FillInBlank,
		Marks: 1,
	}, "teacher-1")

	var ve ValidationErrors
	assert.ErrorAs(t, err, &ve)
}

func TestQuestionService_Delete_ReferencedQuestionKept(t *testing.T) {
	repo := NewMockRepository()
	svc := newQuestionServiceForTest(repo)

	repo.question.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Question{ID: 1, CreatedBy: "teacher-1"}, nil)
	repo.question.On("CountTestReferences", mock.Anything, uint(1)).
		Return(int64(2), nil)

	err := svc.Delete(context.Background(), 1, "teacher-1")
	assert.ErrorIs(t, err, ErrQuestionInUse)
	repo.question.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestQuestionService_Delete(t *testing.T) {
	repo := NewMockRepository()
	svc := newQuestionServiceForTest(repo)

	repo.question.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Question{ID: 1, CreatedBy: "teacher-1"}, nil)
	repo.question.On("CountTestReferences", mock.Anything, uint(1)).
		Return(int64(0), nil)
	repo.question.On("Delete", mock.Anything, uint(1)).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), 1, "teacher-1"))
	repo.question.AssertExpectations(t)
}

func TestQuestionService_Delete_NotCreator(t *testing.T) {
	repo := NewMockRepository()
	svc := newQuestionServiceForTest(repo)

	repo.question.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Question{ID: 1, CreatedBy: "teacher-1"}, nil)

	err := svc.Delete(context.Background(), 1, "teacher-2")
	var pe *PermissionError
	assert.ErrorAs(t, err, &pe)
}

func TestQuestionService_GetByID_NotFound(t *testing.T) {
	repo := NewMockRepository()
	svc := newQuestionServiceForTest(repo)

	repo.question.On("GetByID", mock.Anything, uint(9)).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByID(context.Background(), 9, "teacher-1")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}
