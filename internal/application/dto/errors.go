// Package dto provides Data Transfer Objects for the application layer.
package dto

// Validation errors for DTOs

var (
	// ErrEmptyCommand is returned when a request has an empty command line.
	ErrEmptyCommand = NewValidationError("command cannot be empty")

	// ErrCommandHasNUL is returned when a command line contains a NUL byte,
	// which no shell would pass through unchanged.
	ErrCommandHasNUL = NewValidationError("command cannot contain NUL bytes")
)

// ValidationError represents a validation error in the application layer.
type ValidationError struct {
	Message string // The validation error message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}
