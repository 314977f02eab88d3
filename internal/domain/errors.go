package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies a provider failure. The retryable kinds form a
// closed allow-list; anything else never triggers the fallback path.
type FailureKind string

const (
	FailureRateLimited     FailureKind = "rate_limited"
	FailureRequestTooLarge FailureKind = "request_too_large"
	FailureAuth            FailureKind = "auth_failed"
	FailureProvider        FailureKind = "provider_failed"
	FailureInvalidInput    FailureKind = "invalid_input"
	FailureUnknown         FailureKind = "unknown"
)

// ProviderError wraps a transport, quota or auth failure from an AI backend
// with enough classification for the fallback orchestrator to act on.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError classifies err from an HTTP status code and message text.
// Status 0 means no HTTP response was seen (network-level failure).
func NewProviderError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: classify(status, err), Err: err}
}

func classify(status int, err error) FailureKind {
	switch status {
	case 401, 403:
		return FailureAuth
	case 413:
		return FailureRequestTooLarge
	case 429:
		return FailureRateLimited
	case 400, 404, 422:
		// The provider understood us and said no; retrying elsewhere will
		// not help unless the message says the prompt was too big.
		if looksTooLarge(err) {
			return FailureRequestTooLarge
		}
		return FailureInvalidInput
	}
	if status >= 500 {
		return FailureProvider
	}
	switch {
	case looksTooLarge(err):
		return FailureRequestTooLarge
	case containsAny(err, "rate limit", "rate_limit", "too many requests", "quota"):
		return FailureRateLimited
	case containsAny(err, "api key", "unauthorized", "authentication"):
		return FailureAuth
	case status == 0 && err != nil:
		return FailureProvider
	}
	return FailureUnknown
}

func looksTooLarge(err error) bool {
	return containsAny(err,
		"context_length_exceeded", "maximum context length",
		"request too large", "prompt is too long", "input is too long")
}

func containsAny(err error, needles ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

// Retryable reports whether err carries one of the failure signatures that
// permit a fallback attempt.
func Retryable(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Kind {
	case FailureRateLimited, FailureRequestTooLarge, FailureAuth, FailureProvider:
		return true
	}
	return false
}

// KindOf extracts the failure kind from err, or FailureUnknown when err is
// not a classified provider error.
func KindOf(err error) FailureKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureUnknown
}

// ErrNothingToAnalyze is the terminal "no data" condition for an insight run.
var ErrNothingToAnalyze = errors.New("no documents or conversations to analyze")
