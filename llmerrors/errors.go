// Package llmerrors defines the provider-agnostic error kinds used across
// the transformer, executor, and orchestrator layers (spec §7).
package llmerrors

import (
	"errors"
	"fmt"
)

// Kind is a closed set of provider-agnostic error categories.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindAuthentication     Kind = "authentication_error"
	KindNotFound           Kind = "not_found"
	KindRateLimit          Kind = "rate_limit_error"
	KindQuotaExceeded      Kind = "quota_exceeded_error"
	KindTimeout            Kind = "timeout_error"
	KindAPIError           Kind = "api_error"
	KindParseError         Kind = "parse_error"
	KindJSONError          Kind = "json_error"
	KindUnsupportedOp      Kind = "unsupported_operation"
	KindNetworkError       Kind = "network_error"
)

// AnthropicOverloadCode is the HTTP status Anthropic answers with for its
// overloaded_error, matching Vercel-AI-SDK parity noted in the
// original implementation (`map_anthropic_error`). It is always retryable.
const AnthropicOverloadCode = 529

// Error is the single error type returned by this module. Kind selects the
// category; Code/Details are only meaningful for KindAPIError.
type Error struct {
	Kind    Kind
	Message string
	Code    int
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the error kind should be retried by an
// executor's retry policy (spec §4.3, §7).
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindTimeout, KindNetworkError:
		return true
	case KindAPIError:
		switch e.Code {
		case 408, 429, 500, 502, 503, 504, AnthropicOverloadCode:
			return true
		}
		return false
	case KindAuthentication:
		// Retryable only when the executor has a refreshable token
		// provider; that decision lives in the executor, not here.
		return true
	default:
		return false
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewAPIError(code int, message string, details map[string]any) *Error {
	return &Error{Kind: KindAPIError, Code: code, Message: message, Details: details}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err (or any error it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsInvalidInput(err error) bool   { return Is(err, KindInvalidInput) }
func IsAuthentication(err error) bool { return Is(err, KindAuthentication) }
func IsNotFound(err error) bool       { return Is(err, KindNotFound) }
func IsRateLimit(err error) bool      { return Is(err, KindRateLimit) }
func IsQuotaExceeded(err error) bool  { return Is(err, KindQuotaExceeded) }
func IsTimeout(err error) bool        { return Is(err, KindTimeout) }
func IsAPIError(err error) bool       { return Is(err, KindAPIError) }
func IsParseError(err error) bool     { return Is(err, KindParseError) }
func IsJSONError(err error) bool      { return Is(err, KindJSONError) }
func IsUnsupportedOp(err error) bool  { return Is(err, KindUnsupportedOp) }
func IsNetworkError(err error) bool   { return Is(err, KindNetworkError) }

// IsRetryable reports whether err should be retried per the policy
// described in spec §4.3/§7.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}
