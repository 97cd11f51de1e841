package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested item does not exist locally.
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned when the triggering action still has a call in flight.
	ErrBusy = errors.New("action already in progress")
	// ErrStale marks a response that arrived after its view moved on.
	ErrStale = errors.New("stale response")
	// ErrMalformedResponse is returned when a success body cannot be used.
	ErrMalformedResponse = errors.New("malformed server response")
)

// Validation errors are caught before any network call.
var (
	ErrEmptyCredentials = &ValidationError{Message: "Email and password are required."}
	ErrPasswordMismatch = &ValidationError{Message: "Passwords do not match."}
	ErrEmptyPrompt      = &ValidationError{Message: "Please enter a prompt."}
	ErrNoFileSelected   = &ValidationError{Message: "Please select a file first."}
	ErrNotLoggedIn      = &ValidationError{Message: "You must be logged in to delete images."}
	ErrLoginRequired    = &ValidationError{Message: "You need to be logged in to view your gallery."}
)

// ValidationError is a user input problem detected locally.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConnectivityError means the request could not complete.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: failed to reach server: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx answer from the backend. Detail is nil when the
// response carried no usable message.
type APIError struct {
	Op         string
	StatusCode int
	Detail     *string
}

func (e *APIError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, *e.Detail)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
}

// Fallback holds call-site messages for errors that carry none of their own.
type Fallback struct {
	// Rejected is shown for a backend rejection without detail.
	Rejected string
	// Unreachable is shown when the server could not be reached or answered
	// with something unusable.
	Unreachable string
}

// DefaultUnreachable is the generic connectivity message.
const DefaultUnreachable = "Failed to connect to the server. Check that it is running."

// UserMessage turns err into the text shown to the user.
func UserMessage(err error, fb Fallback) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != nil && *apiErr.Detail != "" {
			return *apiErr.Detail
		}
		return fb.Rejected
	}

	if errors.Is(err, ErrBusy) {
		return "Please wait, the previous request is still running."
	}

	if fb.Unreachable != "" {
		return fb.Unreachable
	}
	return DefaultUnreachable
}
