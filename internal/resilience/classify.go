package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind identifies a class of provider failure.
type Kind string

const (
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindInvalidCredential Kind = "invalid_credential"
	KindModelUnavailable  Kind = "model_unavailable"
	KindNetworkError      Kind = "network_error"
	KindTimeout           Kind = "timeout"
	KindServerUnavailable Kind = "server_unavailable"
	KindUnknown           Kind = "unknown"
)

// Stable user-facing messages, one per kind.
const (
	MessageQuotaExceeded     = "API quota exceeded. Please wait a few minutes or try again later."
	MessageInvalidCredential = "Invalid API key. Please check your configuration."
	MessageModelUnavailable  = "Model not found. The API may be temporarily unavailable."
	MessageTimeout           = "Request timed out. Please try again."
	MessageNetworkError      = "Network error. Please check your connection."
	MessageServerUnavailable = "Server temporarily unavailable. Retrying..."
	MessageUnknown           = "An unexpected error occurred."
)

// Error is a classified provider failure.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool

	// Cause is the raw failure. It is kept for logs only and never shown to users.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "provider error"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Classifier maps a raw failure to a classified Error. Classify(nil) returns nil.
type Classifier interface {
	Classify(err error) *Error
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(err error) *Error

func (f ClassifierFunc) Classify(err error) *Error {
	return f(err)
}

// DefaultClassifier applies the substring rules in Classify.
var DefaultClassifier Classifier = ClassifierFunc(Classify)

// Classify maps err to a Kind. Rules are evaluated in order and the first match wins;
// text matches are case-insensitive and run against the full error chain message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) && classified != nil {
		return classified
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "429", "quota", "resource_exhausted"):
		return newError(KindQuotaExceeded, err)
	case containsAny(msg, "401", "403", "api key"):
		return newError(KindInvalidCredential, err)
	case containsAny(msg, "404", "not found"):
		return newError(KindModelUnavailable, err)
	case isTimeout(err):
		return newError(KindTimeout, err)
	case containsAny(msg, "fetch", "network", "enotfound") || isNetError(err):
		return newError(KindNetworkError, err)
	case containsAny(msg, "500", "503"):
		return newError(KindServerUnavailable, err)
	default:
		return newError(KindUnknown, err)
	}
}

// NewError builds a classified error of the given kind with its stable message.
func NewError(kind Kind, cause error) *Error {
	return newError(kind, cause)
}

func newError(kind Kind, cause error) *Error {
	return &Error{
		Kind:      kind,
		Message:   MessageFor(kind),
		Retryable: retryable(kind),
		Cause:     cause,
	}
}

// MessageFor returns the stable user-facing message for kind.
func MessageFor(kind Kind) string {
	switch kind {
	case KindQuotaExceeded:
		return MessageQuotaExceeded
	case KindInvalidCredential:
		return MessageInvalidCredential
	case KindModelUnavailable:
		return MessageModelUnavailable
	case KindTimeout:
		return MessageTimeout
	case KindNetworkError:
		return MessageNetworkError
	case KindServerUnavailable:
		return MessageServerUnavailable
	default:
		return MessageUnknown
	}
}

func retryable(kind Kind) bool {
	switch kind {
	case KindQuotaExceeded, KindInvalidCredential:
		return false
	default:
		return true
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return err.Error() == timeoutSentinel
}

func isNetError(err error) bool {
	var ne net.Error
	return errors.As(err, &ne)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
