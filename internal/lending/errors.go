package lending

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind groups error codes by who can correct them
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindBusinessRule Kind = "business_rule"
	KindStorage      Kind = "storage"
)

// Code identifies the exact reason an operation failed
type Code string

const (
	CodeInvalidTitle    Code = "InvalidTitle"
	CodeInvalidAuthor   Code = "InvalidAuthor"
	CodeInvalidISBN     Code = "InvalidISBN"
	CodeInvalidCopies   Code = "InvalidCopies"
	CodeInvalidPatronID Code = "InvalidPatronID"
	CodeBookNotFound    Code = "BookNotFound"
	CodeNotBorrowed     Code = "NotBorrowed"
	CodeUnavailable     Code = "Unavailable"
	CodeLimitReached    Code = "LimitReached"
	CodeDuplicateISBN   Code = "DuplicateISBN"
	CodeStorage         Code = "StorageError"
)

var codeKinds = map[Code]Kind{
	CodeInvalidTitle:    KindValidation,
	CodeInvalidAuthor:   KindValidation,
	CodeInvalidISBN:     KindValidation,
	CodeInvalidCopies:   KindValidation,
	CodeInvalidPatronID: KindValidation,
	CodeBookNotFound:    KindNotFound,
	CodeNotBorrowed:     KindNotFound,
	CodeUnavailable:     KindBusinessRule,
	CodeLimitReached:    KindBusinessRule,
	CodeDuplicateISBN:   KindBusinessRule,
	CodeStorage:         KindStorage,
}

// Error is the failure result of every lending operation.
// Message is meant for display only; callers branch on Code or Kind.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the storage cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns the category of the error code
func (e *Error) Kind() Kind {
	return codeKinds[e.Code]
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// storageError wraps a collaborator failure. The cause keeps the
// context of the failed step for logs.
func storageError(message string, cause error) *Error {
	return &Error{Code: CodeStorage, Message: message, Err: errors.Wrap(cause, message)}
}

// CodeOf extracts the Code from err, or "" when err is not a lending error
func CodeOf(err error) Code {
	var lendingErr *Error
	if errors.As(err, &lendingErr) {
		return lendingErr.Code
	}
	return ""
}

// KindOf extracts the Kind from err, or "" when err is not a lending error
func KindOf(err error) Kind {
	var lendingErr *Error
	if errors.As(err, &lendingErr) {
		return lendingErr.Kind()
	}
	return ""
}

// MessageOf returns the display message of a lending error, or err.Error()
func MessageOf(err error) string {
	var lendingErr *Error
	if errors.As(err, &lendingErr) {
		return lendingErr.Message
	}
	return err.Error()
}
