package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrMissingConfig          = errors.New("missing_config")
	ErrInvalidSignature       = errors.New("invalid_signature")
	ErrMissingEmail           = errors.New("missing_email")
	ErrExternalServiceFailure = errors.New("external_service_failure")
	ErrCollectorNotConfigured = errors.New("collector_not_configured")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ConfigError is what every handler returns when a required secret is absent.
func ConfigError(err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrCodeConfiguration,
		Message:    "Server configuration error",
		Err:        err,
	}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Err)
		return
	}
	if errors.Is(err, ErrMissingConfig) {
		appErr = ConfigError(err)
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, err)
		return
	}
	// Fallback for unexpected error types
	RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", err)
}
