package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorWrapping(t *testing.T) {
	err := ValidationError("customer name is required")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError does not unwrap to ErrValidation")
	}

	err = ExtractionError("could not parse", errors.New("bad xref"))
	if !errors.Is(err, ErrExtraction) {
		t.Error("ExtractionError does not unwrap to ErrExtraction")
	}

	err = OcrError("engine missing", errors.New("not found"))
	if !errors.Is(err, ErrOcr) {
		t.Error("OcrError does not unwrap to ErrOcr")
	}

	wrapped := fmt.Errorf("outer: %w", NewAppError("X", "msg", ErrRateLimited))
	var app *AppError
	if !errors.As(wrapped, &app) || app.Code != "X" {
		t.Errorf("errors.As through wrapping failed: %v", wrapped)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"app error message wins", ValidationError("select a vendor before saving"), "select a vendor before saving"},
		{"invalid credentials", ErrInvalidCredentials, "AI key rejected. Check your key or server setup."},
		{"rate limited", ErrRateLimited, "AI service is busy. Wait a moment and retry."},
		{"format error", fmt.Errorf("x: %w", ErrExtractionFormat), "Could not read the AI response. Try scanning again."},
		{"pdf error", fmt.Errorf("x: %w", ErrExtraction), "Could not read this PDF. Try a clearer copy."},
		{"ocr error", fmt.Errorf("x: %w", ErrOcr), "Could not read this image. Try a clearer photo."},
		{"unknown error stays generic", errors.New("sql: connection refused"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) != nil")
	}
}
