package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FetchFailedMessage is shown to the player when a scene could not be produced.
const FetchFailedMessage = "Failed to generate the next scene."

// RetryableServiceError is a rate-limit or quota failure of the content source.
type RetryableServiceError struct {
	Err error
}

func (e *RetryableServiceError) Error() string { return "content source rate limited: " + e.Err.Error() }
func (e *RetryableServiceError) Unwrap() error { return e.Err }

// FatalServiceError is any other content source failure, including responses
// that cannot be decoded into a valid scene.
type FatalServiceError struct {
	Err error
}

func (e *FatalServiceError) Error() string { return "content source failed: " + e.Err.Error() }
func (e *FatalServiceError) Unwrap() error { return e.Err }

// FetchError is returned by Fetcher once the attempt budget is spent or a
// fatal error stopped it early.
type FetchError struct {
	Message  string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string { return e.Message + ": " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// IsRetryable reports whether err should be retried by the fetcher.
func IsRetryable(err error) bool {
	var r *RetryableServiceError
	return errors.As(err, &r)
}

// classify wraps a raw client error into one of the two service error kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isRateLimit(err) {
		return &RetryableServiceError{Err: err}
	}
	return &FatalServiceError{Err: err}
}

func isRateLimit(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	var httpErr interface{ HTTPCode() int }
	if errors.As(err, &httpErr) && httpErr.HTTPCode() == http.StatusTooManyRequests {
		return true
	}
	if status.Code(err) == codes.ResourceExhausted {
		return true
	}
	if code, ok := genaiStatusCode(err); ok && code == http.StatusTooManyRequests {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
