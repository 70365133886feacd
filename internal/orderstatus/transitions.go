package orderstatus

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ashendes/restaurant-admin/internal/models"
)

// Successor sets per status. assigned_to_rider is set by rider dispatch on the
// backend and has no entry, so the dashboard offers nothing from it.
var statusFlows = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:        {models.OrderStatusAccepted, models.OrderStatusCancelled},
	models.OrderStatusAccepted:       {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:      {models.OrderStatusReadyForPickup, models.OrderStatusCancelled},
	models.OrderStatusReadyForPickup: {models.OrderStatusPickedUp, models.OrderStatusCancelled},
	models.OrderStatusPickedUp:       {models.OrderStatusOnTheWay, models.OrderStatusCancelled},
	models.OrderStatusOnTheWay:       {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:      {},
	models.OrderStatusCancelled:      {},
}

// AllowedTransitions returns the statuses an order in current may move to.
// A non-empty override replaces the table lookup. The result never contains
// current itself and is a fresh slice the caller may modify.
func AllowedTransitions(current models.OrderStatus, override ...models.OrderStatus) []models.OrderStatus {
	source := statusFlows[current]
	if len(override) > 0 {
		source = override
	}

	next := make([]models.OrderStatus, 0, len(source))
	for _, s := range source {
		if s == current || containsStatus(next, s) {
			continue
		}
		next = append(next, s)
	}
	return next
}

// CanTransition checks if from->to is allowed
func CanTransition(from, to models.OrderStatus, override ...models.OrderStatus) bool {
	return containsStatus(AllowedTransitions(from, override...), to)
}

// IsTerminal reports whether no transition leaves s
func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}

// FormatStatusLabel renders a status for display: "ready_for_pickup" -> "Ready For Pickup"
func FormatStatusLabel(s models.OrderStatus) string {
	words := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// SuccessMessage is the notification text shown after a status change
func SuccessMessage(s models.OrderStatus) string {
	return "Order status updated to " + strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// RequiresConfirmation reports whether the caller must show CancellationWarning first
func RequiresConfirmation(target models.OrderStatus) bool {
	return target == models.OrderStatusCancelled
}

// CancellationWarning is shown before confirming any cancellation; the
// backend decides whether a refund applies.
const CancellationWarning = "Warning: Cancelling an order cannot be undone! " +
	"If the order has online payment, the system will attempt to process a refund automatically."

func containsStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
