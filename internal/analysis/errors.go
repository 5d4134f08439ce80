package analysis

import (
	"errors"
	"strings"
)

// BackendUnavailableError means a required credential is missing or was rejected.
type BackendUnavailableError struct {
	Message string
	Cause   error
}

func (e *BackendUnavailableError) Error() string { return e.Message }
func (e *BackendUnavailableError) Unwrap() error { return e.Cause }

// InsufficientDataError covers empty input and failed request validation.
type InsufficientDataError struct {
	Message string
}

func (e *InsufficientDataError) Error() string { return e.Message }

type UpstreamNotFoundError struct {
	Message string
}

func (e *UpstreamNotFoundError) Error() string { return e.Message }

type UpstreamFetchError struct {
	Message string
	Cause   error
}

func (e *UpstreamFetchError) Error() string { return e.Message }
func (e *UpstreamFetchError) Unwrap() error { return e.Cause }

type QuotaExceededError struct {
	Message string
	Cause   error
}

func (e *QuotaExceededError) Error() string { return e.Message }
func (e *QuotaExceededError) Unwrap() error { return e.Cause }

type ModelUnavailableError struct {
	Message string
	Cause   error
}

func (e *ModelUnavailableError) Error() string { return e.Message }
func (e *ModelUnavailableError) Unwrap() error { return e.Cause }

type EmptyReportError struct {
	Message string
}

func (e *EmptyReportError) Error() string { return e.Message }

// MalformedReportError means a structured response was not a JSON object.
type MalformedReportError struct {
	Message string
	Cause   error
}

func (e *MalformedReportError) Error() string { return e.Message }
func (e *MalformedReportError) Unwrap() error { return e.Cause }

// ClassifyLLMError maps a provider failure to an error kind. Errors that already carry
// a kind are returned as is.
func ClassifyLLMError(err error) error {
	if err == nil {
		return nil
	}

	var (
		unavailable *BackendUnavailableError
		quota       *QuotaExceededError
		model       *ModelUnavailableError
	)
	if errors.As(err, &unavailable) || errors.As(err, &quota) || errors.As(err, &model) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429"):
		return &QuotaExceededError{Message: "AI usage quota exceeded, try again later", Cause: err}
	case strings.Contains(lower, "api key") || strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "PERMISSION_DENIED"):
		return &BackendUnavailableError{Message: "AI service credential is invalid", Cause: err}
	case strings.Contains(lower, "model"):
		return &ModelUnavailableError{Message: "AI model is not reachable", Cause: err}
	}
	return err
}
