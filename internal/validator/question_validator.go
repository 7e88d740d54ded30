package validator

import (
	"strings"

	apperrors "github.com/SAP-F-2025/exam-portal-service/internal/errors"
	"github.com/SAP-F-2025/exam-portal-service/internal/models"
)

// OptionInput is the option shape checked by the question validator,
// decoupled from request structs.
type OptionInput struct {
	Text      string
	IsCorrect bool
}

// QuestionValidator checks that a question's content is coherent with its
// declared type: choice questions need options and exactly the right key
// shape, fill-in-blank needs a non-blank answer key and no options.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

func (qv *QuestionValidator) ValidateContent(qType models.QuestionType, options []OptionInput, correctAnswer *string) apperrors.ValidationErrors {
	switch qType {
	case models.MultipleChoice:
		return qv.validateChoice(options, correctAnswer, 2, 10)
	case models.TrueFalse:
		return qv.validateChoice(options, correctAnswer, 2, 2)
	case models.FillInBlank:
		return qv.validateFillInBlank(options, correctAnswer)
	default:
		return apperrors.ValidationErrors{
			{Field: "type", Message: "must be a valid question type", Value: string(qType)},
		}
	}
}

func (qv *QuestionValidator) validateChoice(options []OptionInput, correctAnswer *string, minOptions, maxOptions int) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(options) < minOptions || len(options) > maxOptions {
		errs = append(errs, apperrors.ValidationError{
			Field:   "options",
			Message: "has wrong option count for question type",
			Value:   len(options),
		})
	}

	correct := 0
	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			errs = append(errs, apperrors.ValidationError{
				Field:   "options",
				Message: "option text cannot be blank",
				Value:   i,
			})
		}
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		errs = append(errs, apperrors.ValidationError{
			Field:   "options",
			Message: "exactly one option must be marked correct",
			Value:   correct,
		})
	}

	if correctAnswer != nil {
		errs = append(errs, apperrors.ValidationError{
			Field:   "correct_answer",
			Message: "is only valid for fill_in_blank questions",
		})
	}

	return errs
}

func (qv *QuestionValidator) validateFillInBlank(options []OptionInput, correctAnswer *string) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(options) > 0 {
		errs = append(errs, apperrors.ValidationError{
			Field:   "options",
			Message: "fill_in_blank questions cannot have options",
			Value:   len(options),
		})
	}
	if correctAnswer == nil || strings.TrimSpace(*correctAnswer) == "" {
		errs = append(errs, apperrors.ValidationError{
			Field:   "correct_answer",
			Message: "is required for fill_in_blank questions",
		})
	}

	return errs
}
