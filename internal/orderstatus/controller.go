// Package orderstatus owns the order status transition table and performs
// validated status changes against the order service.
//
// The Controller keeps no state between calls. Callers own the order
// snapshot and must not issue two transitions for the same order at once.
package orderstatus

import (
	"context"
	"errors"

	"github.com/ashendes/restaurant-admin/internal/metrics"
	"github.com/ashendes/restaurant-admin/internal/models"
	log "github.com/sirupsen/logrus"
)

// OrderService is the remote collaborator that applies a status change
type OrderService interface {
	UpdateStatus(ctx context.Context, orderID string, req models.UpdateStatusRequest) (*models.Order, error)
}

// Notifier receives the success message after a status change
type Notifier interface {
	Notify(order *models.Order, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(order *models.Order, message string)

// Notify calls f
func (f NotifierFunc) Notify(order *models.Order, message string) { f(order, message) }

// TransitionRequest is built by the caller for a single status change.
// Allowed, when non-empty, restricts the choices in place of the table.
type TransitionRequest struct {
	Status  models.OrderStatus
	Note    string
	Allowed []models.OrderStatus
}

// Controller validates and performs order status changes
type Controller struct {
	orders   OrderService
	notifier Notifier
	logger   log.FieldLogger
}

// Option configures a Controller
type Option func(*Controller)

// WithNotifier sets the success notifier
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the logger
func WithLogger(l log.FieldLogger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a controller backed by orders
func NewController(orders OrderService, opts ...Option) *Controller {
	c := &Controller{
		orders: orders,
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllowedTransitions is the method form of the package function
func (c *Controller) AllowedTransitions(current models.OrderStatus, override ...models.OrderStatus) []models.OrderStatus {
	return AllowedTransitions(current, override...)
}

// RequestTransition validates req against order's current status and asks
// the order service to apply it. On success the server's order is returned
// and replaces the caller's snapshot; order itself is never modified.
// Failed requests are not retried.
func (c *Controller) RequestTransition(ctx context.Context, order *models.Order, req TransitionRequest) (*models.Order, error) {
	if order == nil || order.ID == "" {
		return nil, &TransitionError{
			Kind:    InvalidTransition,
			Target:  req.Status,
			Message: "no order selected",
		}
	}

	from := order.Status
	fields := log.Fields{
		"order_id": order.ID,
		"from":     from,
		"to":       req.Status,
	}

	if !CanTransition(from, req.Status, req.Allowed...) {
		metrics.StatusTransitions.WithLabelValues(string(from), string(req.Status), "invalid").Inc()
		c.logger.WithFields(fields).Warn("Rejected order status transition")
		return nil, &TransitionError{
			Kind:    InvalidTransition,
			OrderID: order.ID,
			Current: from,
			Target:  req.Status,
			Message: "status not allowed from current status",
		}
	}

	updated, err := c.orders.UpdateStatus(ctx, order.ID, models.UpdateStatusRequest{
		Status: req.Status,
		Note:   req.Note,
	})
	if err != nil || updated == nil {
		metrics.StatusTransitions.WithLabelValues(string(from), string(req.Status), "failed").Inc()
		c.logger.WithFields(fields).WithError(err).Error("Order status update failed")
		return nil, &TransitionError{
			Kind:    ServiceFailure,
			OrderID: order.ID,
			Current: from,
			Target:  req.Status,
			Message: failureMessage(err),
			Err:     err,
		}
	}

	metrics.StatusTransitions.WithLabelValues(string(from), string(req.Status), "ok").Inc()
	c.logger.WithFields(fields).Info("Order status updated")

	if c.notifier != nil {
		c.notifier.Notify(updated, SuccessMessage(req.Status))
	}

	return updated, nil
}

// serviceMessager is implemented by errors that carry the service's own text
type serviceMessager interface {
	ServiceMessage() string
}

func failureMessage(err error) string {
	if err == nil {
		return DefaultFailureMessage
	}
	var sm serviceMessager
	if errors.As(err, &sm) {
		if msg := sm.ServiceMessage(); msg != "" {
			return msg
		}
		return DefaultFailureMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultFailureMessage
}
