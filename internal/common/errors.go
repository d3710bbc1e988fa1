package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string // user-facing
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrValidation covers bad user input: file type/size, missing review
	// fields. Reported inline, never aborts anything.
	ErrValidation = errors.New("validation failed")

	// ErrExtraction and ErrOcr cover local text acquisition failures.
	ErrExtraction = errors.New("pdf extraction failed")
	ErrOcr        = errors.New("image recognition failed")

	// Remote field-extraction failures, distinguished only by the
	// user-facing message.
	ErrExtractionFormat   = errors.New("extraction response malformed")
	ErrExtractionService  = errors.New("extraction service error")
	ErrRateLimited        = errors.New("extraction service rate limited")
	ErrInvalidCredentials = errors.New("extraction credentials rejected")

	// ErrMirrorSync never aborts or reverts the local mutation that
	// triggered it.
	ErrMirrorSync = errors.New("remote mirror sync failed")

	ErrNotFound = errors.New("resource not found")
	ErrInternal = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ValidationError(message string) *AppError {
	return NewAppError("VALIDATION", message, ErrValidation)
}

func ExtractionError(message string, cause error) *AppError {
	return NewAppError("EXTRACTION", message, errors.Join(ErrExtraction, cause))
}

func OcrError(message string, cause error) *AppError {
	return NewAppError("OCR", message, errors.Join(ErrOcr, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage returns the message suitable for a toast. Unknown errors get a
// generic message so internals never leak to the client.
func UserMessage(err error) string {
	var app *AppError
	if errors.As(err, &app) {
		return app.Message
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "AI key rejected. Check your key or server setup."
	case errors.Is(err, ErrRateLimited):
		return "AI service is busy. Wait a moment and retry."
	case errors.Is(err, ErrExtractionFormat):
		return "Could not read the AI response. Try scanning again."
	case errors.Is(err, ErrExtraction):
		return "Could not read this PDF. Try a clearer copy."
	case errors.Is(err, ErrOcr):
		return "Could not read this image. Try a clearer photo."
	case errors.Is(err, ErrExtractionService):
		return "Bill scanning failed. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
