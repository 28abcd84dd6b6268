package zeroex

import "fmt"

// ErrorKind classifies every failure the swap flow can surface. The set is
// closed: callers switch on it to decide whether an action is retryable by
// the user.
type ErrorKind string

const (
	KindInput      ErrorKind = "input"      // required parameter missing
	KindConfig     ErrorKind = "config"     // server credential unconfigured
	KindUpstream   ErrorKind = "upstream"   // upstream returned a non-success status
	KindTimeout    ErrorKind = "timeout"    // bounded wait elapsed; worth retrying
	KindValidation ErrorKind = "validation" // upstream accepted the call but rejected the trade
	KindTransport  ErrorKind = "transport"  // network failure or unknown error
)

// Error is a classified swap-flow failure
type Error struct {
	Kind    ErrorKind
	Message string
	// Status is the HTTP status carried by upstream errors, zero otherwise.
	Status int
}

func (e *Error) Error() string {
	return e.Message
}

// Retryable reports whether an identical request may succeed if the user
// simply tries again.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindTransport
}

// NewError builds a classified error
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
