package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/ashendes/restaurant-admin/internal/patterns"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type failingToken struct{ err error }

func (f failingToken) Token() (string, error) { return "", f.err }

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T, router *gin.Engine, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	logger := log.New()
	logger.SetOutput(io.Discard)
	return New(Config{BaseURL: srv.URL, Timeout: time.Second}, tokens, logger)
}

func TestUpdateStatusSendsBodyAndDecodesOrder(t *testing.T) {
	var gotAuth string
	var gotReq models.UpdateStatusRequest

	router := gin.New()
	router.PUT("/orders/:id/status", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		require.NoError(t, c.ShouldBindJSON(&gotReq))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"_id":    c.Param("id"),
				"status": gotReq.Status,
				"statusHistory": []gin.H{
					{"status": "pending", "timestamp": "2026-10-18T10:00:00Z"},
					{"status": gotReq.Status, "timestamp": "2026-10-18T10:05:00Z", "note": gotReq.Note},
				},
				"total": 24.5,
			},
		})
	})

	c := newTestClient(t, router, staticToken("tok"))
	order, err := c.UpdateStatus(context.Background(), "abc123", models.UpdateStatusRequest{
		Status: models.OrderStatusAccepted,
		Note:   "on it",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, models.OrderStatusAccepted, gotReq.Status)
	assert.Equal(t, "on it", gotReq.Note)
	assert.Equal(t, "abc123", order.ID)
	assert.Equal(t, models.OrderStatusAccepted, order.Status)
	require.Len(t, order.StatusHistory, 2)
	assert.Equal(t, "on it", order.StatusHistory[1].Note)
	assert.Equal(t, "24.5", order.Total.String())
}

func TestSuccessFalseBecomesAPIError(t *testing.T) {
	router := gin.New()
	router.PUT("/orders/:id/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Order cannot be updated"})
	})

	c := newTestClient(t, router, staticToken("tok"))
	_, err := c.UpdateStatus(context.Background(), "abc", models.UpdateStatusRequest{Status: models.OrderStatusAccepted})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "Order cannot be updated", apiErr.ServiceMessage())
}

func TestNonSuccessStatusMapsToSentinels(t *testing.T) {
	router := gin.New()
	router.GET("/orders/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized"})
	})

	c := newTestClient(t, router, staticToken("tok"))

	_, err := c.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Order not found", apiErr.Message)

	_, err = c.GetOrder(context.Background(), "other")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetOrdersSendsFilters(t *testing.T) {
	var query map[string]string
	router := gin.New()
	router.GET("/orders", func(c *gin.Context) {
		query = map[string]string{
			"status":    c.Query("status"),
			"startDate": c.Query("startDate"),
			"endDate":   c.Query("endDate"),
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": 1, "data": []gin.H{{"_id": "o1", "status": "pending"}}})
	})

	c := newTestClient(t, router, staticToken("tok"))
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	orders, err := c.GetOrders(context.Background(), models.OrderFilter{
		Status:    models.OrderStatusPending,
		StartDate: start,
	})

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, "pending", query["status"])
	assert.Equal(t, "2026-10-01T00:00:00Z", query["startDate"])
	assert.Empty(t, query["endDate"])
}

func TestGetOrdersEmptyData(t *testing.T) {
	router := gin.New()
	router.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	c := newTestClient(t, router, staticToken("tok"))
	orders, err := c.GetOrders(context.Background(), models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestLoginIsPublic(t *testing.T) {
	var gotAuth string
	router := gin.New()
	router.POST("/auth/login", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		var req models.LoginRequest
		require.NoError(t, c.ShouldBindJSON(&req))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   "jwt-token",
			"user":    gin.H{"_id": "u1", "name": "Owner", "role": "restaurant"},
		})
	})

	c := newTestClient(t, router, nil)
	resp, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "pw"})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, models.RoleRestaurant, resp.User.Role)
}

func TestTokenErrorStopsRequest(t *testing.T) {
	var hits int32
	router := gin.New()
	router.GET("/auth/me", func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
	})

	noSession := errors.New("no active session")
	c := newTestClient(t, router, failingToken{err: noSession})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, noSession)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestRestaurantForOwner(t *testing.T) {
	router := gin.New()
	router.GET("/restaurants", func(c *gin.Context) {
		if c.Query("user") == "nobody" {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{{"_id": "r1", "name": "Trattoria"}}})
	})

	c := newTestClient(t, router, staticToken("tok"))

	r, err := c.RestaurantForOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)

	_, err = c.RestaurantForOwner(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoRestaurant)
}

func TestGetAnalyticsRejectsUnknownPeriod(t *testing.T) {
	c := newTestClient(t, gin.New(), staticToken("tok"))
	for _, period := range []string{"fortnight", "7days", "90days"} {
		_, err := c.GetAnalytics(context.Background(), "r1", period)
		assert.Error(t, err, period)
	}
}

func TestGetAnalyticsSendsDashboardTimeframes(t *testing.T) {
	var periods []string
	router := gin.New()
	router.GET("/restaurants/:id/analytics", func(c *gin.Context) {
		periods = append(periods, c.Query("period"))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"period": c.Query("period")}})
	})
	c := newTestClient(t, router, staticToken("tok"))

	for _, period := range []string{models.PeriodWeek, models.PeriodMonth, models.PeriodYear} {
		a, err := c.GetAnalytics(context.Background(), "r1", period)
		require.NoError(t, err, period)
		assert.Equal(t, period, a.Period)
	}
	assert.Equal(t, []string{"week", "month", "year"}, periods)
}

func TestGetAnalyticsKeepsTopItems(t *testing.T) {
	router := gin.New()
	router.GET("/restaurants/:id/analytics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"totalRevenue": 60,
			"topItems": []gin.H{
				{"_id": "m1", "name": "Pizza", "price": 9.5, "orderCount": 9},
				{"_id": "m2", "name": "Soup", "price": 4, "orderCount": 2},
			},
		}})
	})
	c := newTestClient(t, router, staticToken("tok"))

	a, err := c.GetAnalytics(context.Background(), "r1", models.PeriodMonth)
	require.NoError(t, err)
	require.Len(t, a.TopItems, 2)
	assert.Equal(t, "Pizza", a.TopItems[0].Name)
	assert.Equal(t, 9, a.TopItems[0].OrderCount)
	assert.Equal(t, "9.5", a.TopItems[0].Price.String())

	encoded, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"topItems":[{"_id":"m1","name":"Pizza"`)
}

func TestGetAnalyticsDefaultsPeriod(t *testing.T) {
	var period string
	router := gin.New()
	router.GET("/restaurants/:id/analytics", func(c *gin.Context) {
		period = c.Query("period")
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"totalOrders": 3, "totalRevenue": 60}})
	})

	c := newTestClient(t, router, staticToken("tok"))
	a, err := c.GetAnalytics(context.Background(), "r1", "")

	require.NoError(t, err)
	assert.Equal(t, models.Period30Days, period)
	assert.Equal(t, models.Period30Days, a.Period)
	assert.Equal(t, 3, a.TotalOrders)
}

func TestMenuLifecycle(t *testing.T) {
	available := true
	router := gin.New()
	router.GET("/menu", func(c *gin.Context) {
		assert.Equal(t, "r1", c.Query("restaurant"))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{{"_id": "m1", "name": "Pizza", "price": 9.5}}})
	})
	router.PUT("/menu/:id/toggle-availability", func(c *gin.Context) {
		available = !available
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"_id": c.Param("id"), "isAvailable": available}})
	})
	router.DELETE("/menu/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
	})

	c := newTestClient(t, router, staticToken("tok"))
	ctx := context.Background()

	items, err := c.ListMenuItems(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "9.5", items[0].Price.String())

	item, err := c.ToggleMenuItemAvailability(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, item.IsAvailable)

	assert.NoError(t, c.DeleteMenuItem(ctx, "m1"))
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	router := gin.New()
	router.GET("/orders/:id", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad id"})
	})

	c := newTestClient(t, router, staticToken("tok"))
	for i := 0; i < 5; i++ {
		_, err := c.GetOrder(context.Background(), "bad")
		require.Error(t, err)
		assert.NotErrorIs(t, err, patterns.ErrCircuitOpen)
	}

	state, value := c.CircuitState()
	assert.Equal(t, "closed", state)
	assert.Equal(t, 0, value)
}

func TestServerErrorsTripBreaker(t *testing.T) {
	var hits int32
	router := gin.New()
	router.GET("/orders/:id", func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "boom"})
	})

	c := newTestClient(t, router, staticToken("tok"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.GetOrder(ctx, "x")
		require.Error(t, err)
	}
	state, value := c.CircuitState()
	assert.Equal(t, "open", state)
	assert.Equal(t, 1, value)

	before := atomic.LoadInt32(&hits)
	_, err := c.GetOrder(ctx, "x")
	assert.ErrorIs(t, err, patterns.ErrCircuitOpen)
	assert.Equal(t, before, atomic.LoadInt32(&hits), "open breaker must not reach the server")
}
