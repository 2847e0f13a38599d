package linkedin

import "fmt"

// TransportError indicates a network failure or an unexpected HTTP status
// while talking to the job board. Transport failures are retryable.
type TransportError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error for %s: %v", e.URL, e.Cause)
	}

	return fmt.Sprintf("transport error for %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ParseError indicates a response body that could not be understood as HTML.
// Parse failures are not retryable.
type ParseError struct {
	URL   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// visitError marks an error returned by the caller's visit function so it can
// be told apart from the fetcher's own failures and passed through untouched.
type visitError struct {
	err error
}

func (e *visitError) Error() string { return e.err.Error() }

func (e *visitError) Unwrap() error { return e.err }
