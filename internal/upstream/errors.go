package upstream

import (
	"errors"
	"fmt"
)

// ServerErrorPrefix marks messages built from 5xx upstream responses.
const ServerErrorPrefix = "Server exception caught : "

// Kind enumerates the failure classes a remote call can end in.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindClientError
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// Error is the classified outcome of a non-2xx upstream response.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
}

// NewError constructs a classified upstream error.
func NewError(kind Kind, message string, statusCode int) *Error {
	return &Error{Kind: kind, Message: message, StatusCode: statusCode}
}

// Error returns the message unchanged so callers can surface it verbatim.
func (e *Error) Error() string {
	return e.Message
}

// KindOf reports the Kind of err when it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var upErr *Error
	if errors.As(err, &upErr) {
		return upErr.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err is a NotFound classification.
func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotFound
}

// IsClientError reports whether err is a non-404 4xx classification.
func IsClientError(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindClientError
}

// IsServerError reports whether err is a ServerError classification. It is the
// retry predicate shared by every upstream client.
func IsServerError(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindServerError
}

// DecodeError signals a 2xx response whose body does not match the expected
// payload. It is a contract violation and is never retried.
type DecodeError struct {
	Upstream   string
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response (status %d): %v", e.Upstream, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
