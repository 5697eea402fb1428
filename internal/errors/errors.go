package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrFetch   = "FETCH"
	ErrStorage = "STORAGE"
	ErrUI      = "UI"
)

// Request identifies the telemetry request an error came from.
type Request struct {
	URL string
	// StatusCode is zero when no response arrived.
	StatusCode int
}

// String renders the request as "GET <url>" followed by the HTTP status.
func (r Request) String() string {
	if r.StatusCode == 0 {
		return fmt.Sprintf("GET %s (no response)", r.URL)
	}
	return fmt.Sprintf("GET %s → %d %s", r.URL, r.StatusCode, http.StatusText(r.StatusCode))
}

// failedRequest is implemented by transport errors that know their request.
type failedRequest interface {
	FailedRequest() (url string, statusCode int)
}

// RequestOf returns the request err failed on, if any error in its chain
// records one.
func RequestOf(err error) (Request, bool) {
	var fr failedRequest
	if err == nil || !errors.As(err, &fr) {
		return Request{}, false
	}
	url, code := fr.FailedRequest()
	return Request{URL: url, StatusCode: code}, true
}

// Error is a user-facing error. It renders as:
//
//	✗ <What failed>
//
//	  GET <url> → <status>      (when a telemetry request failed)
//	  <cause>
//
//	  <How to fix it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
	// Request is filled from Cause by WrapWithCode when the cause is a
	// failed telemetry request.
	Request *Request
}

// New creates an error without a cause.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps err with a code, message and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	e := &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
	if req, ok := RequestOf(err); ok {
		e.Request = &req
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %s\n", e.Message)

	var details []string
	if e.Request != nil {
		details = append(details, e.Request.String())
	}
	if e.Cause != nil {
		details = append(details, e.Cause.Error())
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", strings.Join(details, "\n  "))
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Suggestion)
	}
	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err's chain holds an *Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return err != nil && errors.As(err, &e) && e.Code == code
}
