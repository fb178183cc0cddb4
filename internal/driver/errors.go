package driver

import (
	"context"
	"strings"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
)

// Code identifies a failure kind in the facade's own vocabulary. Callers
// match on codes instead of on the underlying rod/CDP error types.
type Code string

const (
	CodeInvalidQuery    Code = "invalid_query"
	CodeInvalidBrowser  Code = "invalid_browser"
	CodeInvalidProfile  Code = "invalid_profile"
	CodeElementNotFound Code = "element_not_found"
	CodeTimeout         Code = "timeout"
	CodeCancelled       Code = "cancelled"
	CodeNavigation      Code = "navigation_failed"
	CodeSessionClosed   Code = "session_closed"
	CodeSessionNotFound Code = "session_not_found"
	CodeLaunch          Code = "launch_failed"
	CodeDriver          Code = "driver_error"
)

type CodedError interface {
	error
	Code() Code
}

type Error struct {
	code Code
	err  error
}

func NewError(code Code, err error) *Error {
	return &Error{code: code, err: err}
}

func (e *Error) Code() Code {
	return e.code
}

func (e *Error) Error() string {
	return string(e.code) + ": " + e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func InvalidQueryError(err error) *Error {
	return NewError(CodeInvalidQuery, err)
}

func ElementNotFoundError(err error) *Error {
	return NewError(CodeElementNotFound, err)
}

func SessionClosedError() *Error {
	return NewError(CodeSessionClosed, errors.New("browser session is closed"))
}

func SessionNotFoundError(id string) *Error {
	return NewError(CodeSessionNotFound, errors.Errorf("no session with id %s", id))
}

func LaunchError(err error) *Error {
	return NewError(CodeLaunch, err)
}

// CodeOf extracts the vocabulary code from err, unwrapping as needed.
func CodeOf(err error) (Code, bool) {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.Code(), true
	}
	return "", false
}

// Translate maps an underlying driver error into the facade vocabulary.
// Already-translated errors pass through unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var ce CodedError
	if errors.As(err, &ce) {
		return err
	}

	var notFound *rod.ElementNotFoundError
	if errors.As(err, &notFound) {
		return ElementNotFoundError(err)
	}

	var nav *rod.NavigationError
	if errors.As(err, &nav) {
		return NewError(CodeNavigation, err)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(CodeTimeout, err)
	case errors.Is(err, context.Canceled):
		return NewError(CodeCancelled, err)
	case strings.Contains(err.Error(), "net::ERR"):
		return NewError(CodeNavigation, err)
	}

	return NewError(CodeDriver, err)
}

// TranslateWrap translates err and prefixes it with msg.
func TranslateWrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(Translate(err), msg)
}
