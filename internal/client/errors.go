package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is wrapped by APIError on HTTP 401
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is wrapped by APIError on HTTP 404
	ErrNotFound = errors.New("not found")
	// ErrNoRestaurant is returned when the logged-in user owns no restaurant
	ErrNoRestaurant = errors.New("no restaurant found for this user")
)

// APIError is a failed call the API answered: a non-2xx status or success=false
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// ServiceMessage returns the text the API sent, verbatim
func (e *APIError) ServiceMessage() string {
	return e.Message
}

// Unwrap maps well-known statuses to sentinels
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// countsAgainstBreaker reports whether err says the API itself is unhealthy.
// Client-side mistakes (4xx, success=false) must not trip the breaker.
func countsAgainstBreaker(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return err != nil
}
