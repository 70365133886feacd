package dashboard

import (
	"sync"
	"time"

	"github.com/ashendes/restaurant-admin/internal/models"
	log "github.com/sirupsen/logrus"
)

// Alert is a user-facing notification
type Alert struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	OrderID string    `json:"orderId,omitempty"`
	At      time.Time `json:"at"`
}

// Alerts keeps the most recent notifications for the presentation layer.
// It satisfies orderstatus.Notifier.
type Alerts struct {
	mu     sync.Mutex
	items  []Alert
	limit  int
	logger log.FieldLogger
}

// NewAlerts keeps at most limit alerts
func NewAlerts(limit int, logger log.FieldLogger) *Alerts {
	if limit <= 0 {
		limit = 20
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Alerts{limit: limit, logger: logger}
}

// Notify records a success alert for an order
func (a *Alerts) Notify(order *models.Order, message string) {
	alert := Alert{Level: "success", Message: message, At: time.Now()}
	if order != nil {
		alert.OrderID = order.ID
	}
	a.add(alert)
}

// Error records an error alert
func (a *Alerts) Error(message string) {
	a.add(Alert{Level: "error", Message: message, At: time.Now()})
}

func (a *Alerts) add(alert Alert) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, alert)
	if len(a.items) > a.limit {
		a.items = a.items[len(a.items)-a.limit:]
	}
	a.logger.WithFields(log.Fields{
		"alert_level": alert.Level,
		"order_id":    alert.OrderID,
	}).Info(alert.Message)
}

// Drain returns all pending alerts, oldest first, and clears them
func (a *Alerts) Drain() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.items
	a.items = nil
	if out == nil {
		out = []Alert{}
	}
	return out
}
