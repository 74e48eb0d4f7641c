package types

import (
	"errors"
	"fmt"
)

var (
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrExternalService     = errors.New("external service error")
	ErrMalformedExtraction = errors.New("malformed findings extraction")
)

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
