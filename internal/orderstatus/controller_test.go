package orderstatus

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ashendes/restaurant-admin/internal/models"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	calls  []models.UpdateStatusRequest
	result *models.Order
	err    error
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, orderID string, req models.UpdateStatusRequest) (*models.Order, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.Order{
		ID:     orderID,
		Status: req.Status,
		StatusHistory: []models.StatusHistoryEntry{
			{Status: models.OrderStatusPending, Timestamp: time.Now().Add(-time.Minute)},
			{Status: req.Status, Timestamp: time.Now(), Note: req.Note},
		},
	}, nil
}

type messageError struct{ msg string }

func (e *messageError) Error() string          { return "api: " + e.msg }
func (e *messageError) ServiceMessage() string { return e.msg }

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestController(svc OrderService, opts ...Option) *Controller {
	return NewController(svc, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, s := range []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled} {
		assert.Empty(t, AllowedTransitions(s), s)
		assert.True(t, IsTerminal(s), s)
	}
}

func TestCancelReachableFromEveryNonTerminalStatus(t *testing.T) {
	for s := range statusFlows {
		if IsTerminal(s) {
			continue
		}
		assert.Contains(t, AllowedTransitions(s), models.OrderStatusCancelled, s)
	}
}

func TestNoSelfTransitions(t *testing.T) {
	for _, s := range models.AllOrderStatuses {
		assert.NotContains(t, AllowedTransitions(s), s, s)
		assert.NotContains(t, AllowedTransitions(s, s, models.OrderStatusCancelled), s, s)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		want []models.OrderStatus
	}{
		{models.OrderStatusPending, []models.OrderStatus{models.OrderStatusAccepted, models.OrderStatusCancelled}},
		{models.OrderStatusAccepted, []models.OrderStatus{models.OrderStatusPreparing, models.OrderStatusCancelled}},
		{models.OrderStatusPreparing, []models.OrderStatus{models.OrderStatusReadyForPickup, models.OrderStatusCancelled}},
		{models.OrderStatusReadyForPickup, []models.OrderStatus{models.OrderStatusPickedUp, models.OrderStatusCancelled}},
		{models.OrderStatusPickedUp, []models.OrderStatus{models.OrderStatusOnTheWay, models.OrderStatusCancelled}},
		{models.OrderStatusOnTheWay, []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled}},
		{models.OrderStatusAssignedToRider, []models.OrderStatus{}},
		{models.OrderStatus("unknown"), []models.OrderStatus{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedTransitions(tt.from))
		})
	}
}

func TestGraphIsAcyclicWithPendingAsOnlyRoot(t *testing.T) {
	incoming := map[models.OrderStatus]int{}
	for from, next := range statusFlows {
		assert.LessOrEqual(t, len(next), 2, from)
		for _, to := range next {
			incoming[to]++
		}
	}
	assert.Zero(t, incoming[models.OrderStatusPending])

	// walk every path from pending; a revisit on the current path is a cycle
	var walk func(s models.OrderStatus, path map[models.OrderStatus]bool)
	walk = func(s models.OrderStatus, path map[models.OrderStatus]bool) {
		require.False(t, path[s], "cycle through %s", s)
		path[s] = true
		for _, n := range statusFlows[s] {
			walk(n, path)
		}
		delete(path, s)
	}
	walk(models.OrderStatusPending, map[models.OrderStatus]bool{})
}

func TestOverrideReplacesTable(t *testing.T) {
	got := AllowedTransitions(models.OrderStatusAccepted, models.OrderStatusPickedUp)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusPickedUp}, got)
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	got := AllowedTransitions(models.OrderStatusPending)
	got[0] = models.OrderStatusDelivered
	assert.Equal(t, models.OrderStatusAccepted, AllowedTransitions(models.OrderStatusPending)[0])
}

func TestFormatStatusLabel(t *testing.T) {
	tests := map[models.OrderStatus]string{
		models.OrderStatusReadyForPickup:  "Ready For Pickup",
		models.OrderStatusPending:         "Pending",
		models.OrderStatusAssignedToRider: "Assigned To Rider",
		models.OrderStatusOnTheWay:        "On The Way",
		models.OrderStatus(""):            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatStatusLabel(in))
	}
}

func TestFormatStatusLabelMultiByte(t *testing.T) {
	got := FormatStatusLabel("ébauche_prête")
	assert.Equal(t, "Ébauche Prête", got)
	assert.True(t, utf8.ValidString(got))

	assert.Equal(t, "Über", FormatStatusLabel("über"))
}

func TestRequestTransitionSucceeds(t *testing.T) {
	svc := &fakeOrderService{}
	var notified string
	c := newTestController(svc, WithNotifier(NotifierFunc(func(o *models.Order, msg string) {
		notified = msg
	})))

	order := &models.Order{ID: "order-1", Status: models.OrderStatusPending}
	updated, err := c.RequestTransition(context.Background(), order, TransitionRequest{
		Status: models.OrderStatusAccepted,
	})

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, updated.Status)
	assert.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, models.OrderStatusPending, order.Status, "input snapshot must not be modified")
	require.Len(t, svc.calls, 1)
	assert.Equal(t, models.UpdateStatusRequest{Status: models.OrderStatusAccepted}, svc.calls[0])
	assert.Equal(t, "Order status updated to ACCEPTED", notified)
}

func TestRequestTransitionSendsNote(t *testing.T) {
	svc := &fakeOrderService{}
	c := newTestController(svc)

	order := &models.Order{ID: "order-1", Status: models.OrderStatusOnTheWay}
	_, err := c.RequestTransition(context.Background(), order, TransitionRequest{
		Status: models.OrderStatusCancelled,
		Note:   "customer unreachable",
	})

	require.NoError(t, err)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, "customer unreachable", svc.calls[0].Note)
}

func TestRequestTransitionFromTerminalIsInvalid(t *testing.T) {
	svc := &fakeOrderService{}
	c := newTestController(svc)

	order := &models.Order{ID: "order-1", Status: models.OrderStatusDelivered}
	updated, err := c.RequestTransition(context.Background(), order, TransitionRequest{
		Status: models.OrderStatusCancelled,
	})

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NotErrorIs(t, err, ErrServiceFailure)
	assert.Empty(t, svc.calls, "no request may be sent for an invalid transition")

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, models.OrderStatusDelivered, te.Current)
	assert.Equal(t, models.OrderStatusCancelled, te.Target)
	assert.Contains(t, te.Error(), "delivered")
	assert.Contains(t, te.Error(), "cancelled")
}

func TestRequestTransitionSkippingStepIsInvalid(t *testing.T) {
	svc := &fakeOrderService{}
	c := newTestController(svc)

	order := &models.Order{ID: "order-1", Status: models.OrderStatusPending}
	_, err := c.RequestTransition(context.Background(), order, TransitionRequest{
		Status: models.OrderStatusDelivered,
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, svc.calls)
}

func TestRequestTransitionHonorsOverride(t *testing.T) {
	svc := &fakeOrderService{}
	c := newTestController(svc)
	order := &models.Order{ID: "order-1", Status: models.OrderStatusAccepted}

	_, err := c.RequestTransition(context.Background(), order, TransitionRequest{
		Status:  models.OrderStatusPreparing,
		Allowed: []models.OrderStatus{models.OrderStatusPickedUp},
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := c.RequestTransition(context.Background(), order, TransitionRequest{
		Status:  models.OrderStatusPickedUp,
		Allowed: []models.OrderStatus{models.OrderStatusPickedUp},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPickedUp, updated.Status)
	assert.Len(t, svc.calls, 1)
}

func TestRequestTransitionWithoutOrder(t *testing.T) {
	svc := &fakeOrderService{}
	c := newTestController(svc)

	_, err := c.RequestTransition(context.Background(), nil, TransitionRequest{Status: models.OrderStatusAccepted})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, svc.calls)
}

func TestRequestTransitionServiceFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"service message", &messageError{msg: "Order already cancelled"}, "Order already cancelled"},
		{"empty service message", &messageError{}, DefaultFailureMessage},
		{"network error", errors.New("dial tcp: connection refused"), "dial tcp: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeOrderService{err: tt.err}
			notified := false
			c := newTestController(svc, WithNotifier(NotifierFunc(func(*models.Order, string) { notified = true })))

			order := &models.Order{ID: "order-1", Status: models.OrderStatusPreparing}
			updated, err := c.RequestTransition(context.Background(), order, TransitionRequest{
				Status: models.OrderStatusReadyForPickup,
			})

			assert.Nil(t, updated)
			assert.ErrorIs(t, err, ErrServiceFailure)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Len(t, svc.calls, 1, "failures are not retried")
			assert.False(t, notified)
			assert.Equal(t, models.OrderStatusPreparing, order.Status)
		})
	}
}

func TestCancellationWarning(t *testing.T) {
	assert.True(t, RequiresConfirmation(models.OrderStatusCancelled))
	assert.False(t, RequiresConfirmation(models.OrderStatusAccepted))

	assert.Contains(t, CancellationWarning, "cannot be undone")
	assert.Contains(t, CancellationWarning, "attempt to process a refund")
}

func TestPaidOnlineTreatsCashVariantsAsOffline(t *testing.T) {
	tests := map[string]bool{
		models.PaymentMethodOnline: true,
		models.PaymentMethodCard:   true,
		models.PaymentMethodCash:   false,
		"cash_on_delivery":         false,
		"Cash":                     false,
		"":                         false,
	}
	for method, want := range tests {
		o := &models.Order{PaymentMethod: method}
		assert.Equal(t, want, o.PaidOnline(), method)
	}
}

func TestSuccessMessage(t *testing.T) {
	assert.Equal(t, "Order status updated to READY FOR PICKUP", SuccessMessage(models.OrderStatusReadyForPickup))
}
