// Package domainerrors defines the typed error taxonomy shared by the persistence
// framework and its consumers. Import it as dErrors.
//
// Errors carry a Code that survives wrapping; HasCode inspects the whole chain so
// an error can satisfy more than one code (for example an unknown relation is also
// an invalid argument).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and for transport mapping.
type Code string

const (
	CodeArgumentMissing     Code = "argument_missing"
	CodeArgumentInvalid     Code = "argument_invalid"
	CodeContextMissing      Code = "context_missing"
	CodeTransactionOverride Code = "transaction_override"
	CodeNotFound            Code = "not_found"
	CodeUnknownRelation     Code = "unknown_relation"
	CodeUnknownOperation    Code = "unknown_operation"
	CodeConflict            Code = "conflict"
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeBadRequest          Code = "bad_request"
	CodeInternal            Code = "internal_error"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return string(e.Code)
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. A nil err yields a plain coded error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the chain
// carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is reports whether err matches target, re-exported for callers that only import
// this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
