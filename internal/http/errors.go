package http

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxErrorBodyBytes caps how much of a non-2xx body is kept for error messages.
const maxErrorBodyBytes = 512

// NetworkError describes a request that never produced a response:
// connection failures, timeouts and canceled contexts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError describes a response with a non-2xx status code.
type HTTPError struct {
	StatusCode int
	Body       string // leading portion of the response body, trimmed
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}

	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// ParseError describes a response body that could not be decoded into the expected shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewHTTPError builds an HTTPError from the status code and the body of the response.
// The body is read up to a small limit; read failures are ignored.
func NewHTTPError(statusCode int, body io.Reader) *HTTPError {
	httpErr := &HTTPError{StatusCode: statusCode}
	if body == nil {
		return httpErr
	}

	snippet, _ := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	httpErr.Body = strings.TrimSpace(string(snippet))

	return httpErr
}

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300 //nolint:mnd
}

// IsTransient reports whether the error is a network or server-side failure
// that a retry of the same request may resolve.
func IsTransient(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == 429 //nolint:mnd
	}

	return false
}
