// Package apierr defines the error taxonomy shared by the validator,
// continuation codec and HTTP handlers: a small set of kinds, each surfaced as a fixed
// HTTP status, so the handler boundary never has to guess how to respond.
package apierr

import (
	"errors"
	"fmt"
)

// Kind identifies how an error should be surfaced over HTTP.
type Kind int

const (
	// Unexpected covers any condition not otherwise classified; it is
	// logged server-side and surfaced as a bare 500.
	Unexpected Kind = iota
	// Validation covers bad request parameters or a malformed token.
	Validation
	// NotFound covers a missing file, a traversal attempt, a non-GET
	// method, or an empty path.
	NotFound
)

// Error wraps a message with the Kind that determines its HTTP status.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validationf builds a Validation-kind error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundErr builds the fixed NotFound-kind error LogServ always returns
// for missing files, traversal, and wrong-method requests.
func NotFoundErr() *Error {
	return &Error{Kind: NotFound, Message: "Not Found"}
}

// Wrap builds an Unexpected-kind error around a lower-level cause.
func Wrap(cause error) *Error {
	return &Error{Kind: Unexpected, Message: "Internal Server Error", cause: cause}
}

// As reports whether err is (or wraps) an *Error, returning it if so.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
