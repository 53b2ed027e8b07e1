package ai

import (
	"errors"
	"fmt"
	"time"
)

// Runtimes map provider failures onto the types below so the CLI can tell
// a bad key from a busy provider without parsing messages.

// AuthError is a rejected or missing provider key (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError is a 429. RetryAfter is zero when the provider sent no hint.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter <= 0 {
		return fmt.Sprintf("rate limited: %s", e.APIError.Error())
	}
	return fmt.Sprintf("rate limited (retry in %ds): %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
}

// ModelNotFoundError means the configured default_model is unknown to the provider.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.APIError.Error())
}

// BadRequestError is any other 4xx, usually a prompt or parameter the provider refused.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// QuotaExceededError is a billing or credit failure on the provider account.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("provider quota exceeded: %s", e.APIError.Error())
}

// ServerError is a 5xx from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("provider error: %s", e.APIError.Error()) }

// UnreachableError is a transport failure before any response arrived.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host == "" {
		return fmt.Sprintf("endpoint unreachable: %v", e.Err)
	}
	return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Retryable reports whether the same request may succeed later unchanged.
func Retryable(err error) bool {
	var (
		rl *RateLimitError
		se *ServerError
		ue *UnreachableError
	)
	return errors.As(err, &rl) || errors.As(err, &se) || errors.As(err, &ue)
}

// Hint returns a one-line fix for err, or "" when there is nothing to suggest.
func Hint(err error) string {
	var (
		auth  *AuthError
		model *ModelNotFoundError
		quota *QuotaExceededError
		ue    *UnreachableError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &auth):
		return "Set the provider key with 'tabloom config set api_key <key>' (or gemini_api_key)"
	case errors.As(err, &model):
		return "Pick a listed model with 'tabloom models show' and 'tabloom config set default_model <name>'"
	case errors.As(err, &quota):
		return "Check the provider account's credits, or switch with 'tabloom config set ai_provider ollama'"
	case errors.As(err, &ue):
		return "Check the network or ollama_host; for a local model run 'ollama serve'"
	case Retryable(err):
		return "The service may be busy; try again shortly"
	}
	return ""
}
