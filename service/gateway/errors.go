package gateway

import (
	"errors"
	"fmt"
)

// ErrRegistration is wrapped by every capability registration failure.
var ErrRegistration = errors.New("capability registration failed")

// RegistrationError describes a rejected capability registration.
type RegistrationError struct {
	Block      string
	StatusCode int
	Code       int
	Message    string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register block %q: status=%d code=%d message=%s", e.Block, e.StatusCode, e.Code, e.Message)
}

func (e *RegistrationError) Unwrap() error {
	return ErrRegistration
}

// StatusError is returned when the orchestrator answers with HTTP >= 400.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: http error status=%d body=%s", e.Method, e.URL, e.StatusCode, e.Body)
}
