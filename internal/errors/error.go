package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryUsage      Category = "usage"
	CategoryInvariant  Category = "invariant"
	CategoryRender     Category = "render"
	CategoryListener   Category = "listener"
	CategoryDefinition Category = "definition"
	CategoryRuntime    Category = "runtime"
	CategoryConfig     Category = "config"
	CategoryProtocol   Category = "protocol"
)

// DNAError is a structured error with a stable code, suggestions and documentation.
type DNAError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (usage, render, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Subject names the thing the error is about (property, tag, selector).
	Subject string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DNAError) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Subject)
	}
	if e.Wrapped != nil {
		msg = msg + ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return e.Code + ": " + msg
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DNAError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a DNAError with the same code.
func (e *DNAError) Is(target error) bool {
	t, ok := target.(*DNAError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// Fatal reports whether the error signals a broken runtime invariant.
// Fatal errors must never be swallowed or retried.
func (e *DNAError) Fatal() bool {
	return e.Category == CategoryInvariant
}

// WithSubject records what the error is about.
func (e *DNAError) WithSubject(s string) *DNAError {
	e.Subject = s
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DNAError) WithSuggestion(s string) *DNAError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *DNAError) WithDetail(d string) *DNAError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *DNAError) Wrap(err error) *DNAError {
	e.Wrapped = err
	return e
}

// New creates a DNAError from a registered error code.
func New(code string) *DNAError {
	template, ok := registry[code]
	if !ok {
		return &DNAError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DNAError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new DNAError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *DNAError {
	return &DNAError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a DNAError.
// Errors that already carry a DNAError are returned as-is.
func FromError(err error, code string) *DNAError {
	if err == nil {
		return nil
	}
	var de *DNAError
	if stderrors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}

// IsCode reports whether any error in err's chain is a DNAError with code.
func IsCode(err error, code string) bool {
	return stderrors.Is(err, &DNAError{Code: code})
}

// IsFatal reports whether any error in err's chain is a fatal DNAError.
func IsFatal(err error) bool {
	var de *DNAError
	for err != nil {
		if stderrors.As(err, &de) {
			if de.Fatal() {
				return true
			}
			err = de.Wrapped
			continue
		}
		return false
	}
	return false
}

// CategoryOf returns the category of the first DNAError in err's chain.
func CategoryOf(err error) Category {
	var de *DNAError
	if stderrors.As(err, &de) {
		return de.Category
	}
	return ""
}

// CodeOf returns the code of the first DNAError in err's chain.
func CodeOf(err error) string {
	var de *DNAError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}
