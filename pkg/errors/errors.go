package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// BadRequest creates a 400 error
func BadRequest(message string, err error) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest, Err: err}
}

// NotFound creates a 404 error
func NotFound(message string, err error) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound, Err: err}
}

// Conflict creates a 409 error
func Conflict(message string, err error) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusConflict, Err: err}
}

// UnprocessableEntity creates a 422 error
func UnprocessableEntity(message string, err error) *AppError {
	return &AppError{Code: "UNPROCESSABLE", Message: message, Status: http.StatusUnprocessableEntity, Err: err}
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError, Err: err}
}

// Ride lifecycle errors surfaced to API clients

var (
	ErrRideNotFound       = NotFound("Ride not found", nil)
	ErrRideAlreadyTaken   = Conflict("Ride has already been claimed by another driver", nil)
	ErrDriverBusy         = Conflict("Driver already has an active ride", nil)
	ErrInvalidTransition  = Conflict("Ride is not in a state that allows this action", nil)
	ErrNotNearPickup      = UnprocessableEntity("Driver is too far from the pickup location", nil)
	ErrNotNearDropoff     = UnprocessableEntity("Driver is too far from the destination", nil)
	ErrNotAssignedDriver  = Conflict("Ride is assigned to a different driver", nil)
	ErrInvalidCoordinates = BadRequest("Invalid coordinates", nil)
)

// GetAppError converts any error to an AppError, defaulting to 500
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
