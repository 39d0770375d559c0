// Package domainerrors defines the coded error type shared by the
// repository and its callers. Handlers translate codes into HTTP statuses;
// services match on codes instead of error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeBackingStore wraps any failure from the relational engine.
	CodeBackingStore Code = "backing_store_error"
	// CodeNotFound means the addressed record does not exist.
	CodeNotFound Code = "not_found"
	// CodeCreationFailed means the insert succeeded but the canonical
	// re-read did not return the row.
	CodeCreationFailed Code = "creation_failed"
	// CodeUpdateFailed means the update affected zero rows.
	CodeUpdateFailed Code = "update_failed"
	// CodeInvalidIdentifier means a malformed identifier string.
	CodeInvalidIdentifier Code = "invalid_identifier"
	// CodeParse means a stored value could not be decoded into its
	// semantic type.
	CodeParse Code = "parse_error"
	// CodeCache classifies cache-layer failures. These are never surfaced
	// to repository callers; the code exists for logging and tests.
	CodeCache Code = "cache_error"
	// CodeBadRequest covers caller contract violations (bad pagination,
	// missing required fields).
	CodeBadRequest Code = "bad_request"
	// CodeInternal is the fallback for unclassified failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded error with an optional structured cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause so errors.Is/As see through the wrapper.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
// A nil cause yields nil so call sites can wrap unconditionally.
func Wrap(cause error, code Code, message string) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// HasCode reports whether err or anything in its chain carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Cause
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
