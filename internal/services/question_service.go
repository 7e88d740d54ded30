package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/SAP-F-2025/exam-portal-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger utils.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	options := make([]validator.OptionInput, len(req.Options))
	for i, opt := range req.Options {
		options[i] = validator.OptionInput{Text: opt.Text, IsCorrect: opt.IsCorrect}
	}
	if errs := s.validator.Question().ValidateContent(req.Type, options, req.CorrectAnswer); len(errs) > 0 {
		return nil, errs
	}

	question := &models.Question{
		Text:          req.Text,
		Type:          req.Type,
		CorrectAnswer: req.CorrectAnswer,
		Marks:         req.Marks,
		CreatedBy:     creatorID,
		Options:       make([]models.QuestionOption, len(req.Options)),
	}
	for i, opt := range req.Options {
		question.Options[i] = models.QuestionOption{
			Position:  i,
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
		}
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"type", question.Type,
		"creator_id", creatorID)

	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, userID string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if question.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "question", "read", "not the creator")
	}

	return question, nil
}

func (s *questionService) ListByCreator(ctx context.Context, creatorID string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	questions, total, err := s.repo.Question().GetByCreator(ctx, creatorID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

func (s *questionService) Delete(ctx context.Context, id uint, userID string) error {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if question.CreatedBy != userID {
		return NewPermissionError(userID, id, "question", "delete", "not the creator")
	}

	refs, err := s.repo.Question().CountTestReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count question references: %w", err)
	}
	if refs > 0 {
		return ErrQuestionInUse
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id, "user_id", userID)
	return nil
}
