package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrConflict             = New("CONFLICT", http.StatusConflict, "conflict")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusPreconditionRequired, "explicit confirmation required")
	ErrPersistence          = New("PERSISTENCE_FAILURE", http.StatusBadGateway, "durable store rejected the write")

	// Commit validation rejections. Each one carries enough context for the
	// caller to pick a different candidate.
	ErrAbsentIsCandidate   = New("ABSENT_IS_CANDIDATE", http.StatusConflict, "candidate is the absent teacher")
	ErrIneligibleWing      = New("INELIGIBLE_WING", http.StatusConflict, "candidate not eligible for section wing")
	ErrSlotConflict        = New("SLOT_CONFLICT", http.StatusConflict, "candidate occupied at requested slot")
	ErrWorkloadCapExceeded = New("WORKLOAD_CAP_EXCEEDED", http.StatusConflict, "assignment would exceed weekly workload cap")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsRejection reports whether err is one of the commit validation rejections.
func IsRejection(err error) bool {
	e := FromError(err)
	if e == nil {
		return false
	}
	switch e.Code {
	case ErrAbsentIsCandidate.Code, ErrIneligibleWing.Code, ErrSlotConflict.Code, ErrWorkloadCapExceeded.Code:
		return true
	default:
		return false
	}
}
