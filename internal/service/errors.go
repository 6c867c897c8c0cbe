package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
)

var (
	// ErrUnauthenticated indicates the request carries no resolved identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUnauthorized indicates the identity lacks the capability for the action.
	ErrUnauthorized = errors.New("insufficient permissions")
	// ErrInvalidTransition indicates a review or delete was attempted on a non-pending activity.
	ErrInvalidTransition = errors.New("activity is no longer pending")
	// ErrActivityNotFound indicates the referenced activity does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrUpload indicates the blob store failed to persist a proof file.
	ErrUpload = errors.New("proof upload failed")
	// ErrNotificationNotFound indicates the notification does not exist for the caller.
	ErrNotificationNotFound = errors.New("notification not found")
)

// ValidationError names the input field that failed a constraint.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError reports the status an activity was found in when a transition was refused.
type TransitionError struct {
	ActivityID string
	Current    models.ActivityStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("activity %s is %s and cannot change status", e.ActivityID, e.Current)
}

// Is lets callers match the error against ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// asValidationError converts the first validator failure into a ValidationError.
func asValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	fieldErr := validationErrors[0]
	return newValidationError(fieldErr.Field(), describeRule(fieldErr))
}

func describeRule(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fieldErr.Param()
	case "datetime":
		return "must be a date formatted as " + fieldErr.Param()
	case "max":
		return "must be at most " + fieldErr.Param() + " characters"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fieldErr.Tag() + " validation"
	}
}
