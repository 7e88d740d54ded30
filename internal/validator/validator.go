package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/exam-portal-service/internal/errors"
	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with domain rules.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only.
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// Validate is the entry point used by services.
func (v *Validator) Validate(s interface{}) error {
	return v.ValidateStruct(s)
}

// Question returns the question content validator.
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("test_status", validateTestStatus)
	validate.RegisterValidation("user_role", validateUserRole)

	// Report json field names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateTestStatus(fl validator.FieldLevel) bool {
	return models.TestStatus(fl.Field().String()).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).IsValid()
}
