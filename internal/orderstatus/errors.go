package orderstatus

import (
	"errors"
	"fmt"

	"github.com/ashendes/restaurant-admin/internal/models"
)

var (
	// ErrInvalidTransition matches every TransitionError of kind InvalidTransition
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrServiceFailure matches every TransitionError of kind ServiceFailure
	ErrServiceFailure = errors.New("order service failure")
)

// DefaultFailureMessage is used when the service gives no message
const DefaultFailureMessage = "Failed to update order status"

// ErrorKind classifies a TransitionError
type ErrorKind int

const (
	// InvalidTransition is a local validation failure; no request was sent
	InvalidTransition ErrorKind = iota + 1
	// ServiceFailure means the request failed or the service answered success=false
	ServiceFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidTransition:
		return "invalid_transition"
	case ServiceFailure:
		return "service_failure"
	default:
		return "unknown"
	}
}

// TransitionError is returned by RequestTransition
type TransitionError struct {
	Kind    ErrorKind
	OrderID string
	Current models.OrderStatus
	Target  models.OrderStatus
	Message string
	Err     error
}

func (e *TransitionError) Error() string {
	switch e.Kind {
	case InvalidTransition:
		return fmt.Sprintf("cannot change order %s from %q to %q: %s", e.OrderID, e.Current, e.Target, e.Message)
	default:
		return e.Message
	}
}

// Unwrap exposes the underlying service error
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind
func (e *TransitionError) Is(target error) bool {
	switch target {
	case ErrInvalidTransition:
		return e.Kind == InvalidTransition
	case ErrServiceFailure:
		return e.Kind == ServiceFailure
	}
	return false
}
