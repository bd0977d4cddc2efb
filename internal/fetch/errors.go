package fetch

import (
	"errors"
	"fmt"
)

// Error represents a non-retryable failure while fetching a URL,
// such as an invalid URL or a 4xx response.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TransientNetworkError represents a timeout, connection reset, or a
// throttling/server-side status (429, 5xx). These are retried.
type TransientNetworkError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *TransientNetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient error for %s: HTTP status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("transient error for %s: %v", e.URL, e.Cause)
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Cause
}

// ParseError represents a response whose shape could not be parsed. Not retried.
type ParseError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: parse error: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: parse error: %s", e.Source, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// SourceUnavailableError is returned once every retry attempt against a source has failed.
type SourceUnavailableError struct {
	Source   string
	URL      string
	Attempts int
	Cause    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable after %d attempts: %v", e.Source, e.Attempts, e.Cause)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var transient *TransientNetworkError
	return errors.As(err, &transient)
}
