package client

import (
	"errors"
	"fmt"

	"procurepay/internal/session"
)

// Kind classifies an API call failure. Auth is deliberately its own kind so
// callers can trigger re-authentication instead of showing a generic toast.
type Kind int

const (
	// KindTransport: the request never produced a response.
	KindTransport Kind = iota + 1
	// KindHTTP: the server answered with a non-2xx status.
	KindHTTP
	// KindDecode: the response body did not match the expected shape.
	KindDecode
	// KindAuth: missing, expired or rejected credentials.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindAuth:
		return "auth"
	}
	return "unknown"
}

// Error is the single error type every Client method returns on failure.
type Error struct {
	Kind       Kind
	Op         string // e.g. "approve request"
	StatusCode int    // set for KindHTTP and KindAuth responses
	Detail     string // server-provided detail message, when present
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsAuth reports whether err means the session needs re-authentication.
func IsAuth(err error) bool {
	if errors.Is(err, session.ErrNotAuthenticated) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// KindOf extracts the failure kind, or 0 when err is not a client error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}
