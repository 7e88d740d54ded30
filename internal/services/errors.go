package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exam-portal-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Test specific errors
	ErrTestNotFound        = errors.New("test not found")
	ErrTestNotActive       = errors.New("test is not active")
	ErrTestAccessDenied    = errors.New("access denied to test")
	ErrTestAlreadyActive   = errors.New("test is already published")
	ErrTestHasNoQuestions  = errors.New("test has no questions")
	ErrTestNotEditable     = errors.New("test cannot be edited after publication")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionAccessDenied   = errors.New("access denied to question")
	ErrQuestionInvalidContent = errors.New("invalid question content for type")
	ErrQuestionInUse          = errors.New("question cannot be deleted - referenced by tests")

	// Attempt specific errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptNotStarted       = errors.New("test not started")
	ErrAttemptAlreadyAttempted = errors.New("test already attempted")
	ErrAttemptAlreadySubmitted = errors.New("test already submitted")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrTestAccessDenied) ||
		errors.Is(err, ErrQuestionAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a lifecycle state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptAlreadyAttempted) ||
		errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrTestAlreadyActive) ||
		errors.Is(err, ErrQuestionInUse)
}
