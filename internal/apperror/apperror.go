package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel kind (and wrapped cause, for Internal)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s: %s", resource, message),
	}
}

// Internal wraps a storage or infrastructure failure. The cause stays on the
// error chain for logs; the Message is all a client ever sees, so no driver
// error text leaks past this layer.
func Internal(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
		Message: "something went wrong while processing your request, please try again",
	}
}
