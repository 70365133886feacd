package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ashendes/restaurant-admin/internal/client"
	"github.com/ashendes/restaurant-admin/internal/hours"
	"github.com/ashendes/restaurant-admin/internal/metrics"
	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/ashendes/restaurant-admin/internal/orderstatus"
	"github.com/ashendes/restaurant-admin/internal/patterns"
	"github.com/ashendes/restaurant-admin/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// TransitionOption describes one status a caller may move an order to
type TransitionOption struct {
	Status               models.OrderStatus `json:"status"`
	Label                string             `json:"label"`
	RequiresConfirmation bool               `json:"requiresConfirmation"`
	Warning              string             `json:"warning,omitempty"`
}

// OrderView is an order snapshot with the actions available on it
type OrderView struct {
	Order       *models.Order      `json:"order"`
	StatusLabel string             `json:"statusLabel"`
	Terminal    bool               `json:"terminal"`
	Transitions []TransitionOption `json:"transitions"`
}

type statusChange struct {
	Status  models.OrderStatus   `json:"status" binding:"required"`
	Note    string               `json:"note"`
	Allowed []models.OrderStatus `json:"allowed"`
}

// Handler serves the dashboard HTTP API
type Handler struct {
	svc     *Service
	alerts  *Alerts
	circuit CircuitState
	now     func() time.Time
}

// NewRouter builds the gin engine for the dashboard service
func NewRouter(svc *Service, alerts *Alerts, circuit CircuitState) *gin.Engine {
	h := &Handler{svc: svc, alerts: alerts, circuit: circuit, now: time.Now}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.PrometheusMiddleware("dashboard"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/circuit-status", h.circuitStatus)

	auth := router.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)
	auth.GET("/me", h.me)
	auth.PUT("/details", h.updateDetails)
	auth.PUT("/password", h.updatePassword)
	auth.POST("/forgot-password", h.forgotPassword)
	auth.PUT("/reset-password/:token", h.resetPassword)

	router.GET("/alerts", h.drainAlerts)
	router.GET("/summary", h.summary)
	router.GET("/analytics", h.analytics)

	orders := router.Group("/orders")
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.GET("/:id/transitions", h.transitions)
	orders.PUT("/:id/status", h.changeStatus)

	menu := router.Group("/menu")
	menu.GET("", h.listMenu)
	menu.POST("", h.createMenuItem)
	menu.GET("/:id", h.getMenuItem)
	menu.PUT("/:id", h.updateMenuItem)
	menu.DELETE("/:id", h.deleteMenuItem)
	menu.PUT("/:id/toggle-availability", h.toggleMenuItem)

	restaurant := router.Group("/restaurant")
	restaurant.GET("", h.getRestaurant)
	restaurant.PUT("", h.updateRestaurant)
	restaurant.PUT("/toggle-status", h.toggleOpen)
	restaurant.GET("/hours", h.getHours)
	restaurant.PUT("/hours", h.saveHours)

	return router
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
}

// fail maps an error to a status code and ends the session on auth failures
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var apiErr *client.APIError
	hasAPIErr := errors.As(err, &apiErr)
	if hasAPIErr && apiErr.Message != "" {
		message = apiErr.Message
	}

	switch {
	case errors.Is(err, orderstatus.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrExpired):
		status = http.StatusUnauthorized
		h.svc.EndSession()
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNoRestaurant), errors.Is(err, client.ErrNoRestaurant), errors.Is(err, client.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, patterns.ErrCircuitOpen), errors.Is(err, patterns.ErrBulkheadFull):
		status = http.StatusServiceUnavailable
	case hasAPIErr:
		status = http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
	case errors.Is(err, orderstatus.ErrServiceFailure):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":   c.FullPath(),
			"status": status,
		}).WithError(err).Error("Request failed")
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

func (h *Handler) circuitStatus(c *gin.Context) {
	state, value := h.circuit.CircuitState()
	c.JSON(http.StatusOK, gin.H{
		"api_circuit": gin.H{
			"name":  "RestaurantAPI",
			"state": state,
			"value": value,
		},
	})
}

func (h *Handler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, user)
}

func (h *Handler) logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) me(c *gin.Context) {
	if c.Query("refresh") == "true" {
		user, err := h.svc.Refresh(c.Request.Context())
		if err != nil {
			h.fail(c, err)
			return
		}
		ok(c, user)
		return
	}
	user, err := h.svc.CurrentUser()
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, user)
}

func (h *Handler) updateDetails(c *gin.Context) {
	var req models.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.svc.UpdateDetails(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, user)
}

func (h *Handler) updatePassword(c *gin.Context) {
	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.UpdatePassword(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated"})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset email sent"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset"})
}

func (h *Handler) drainAlerts(c *gin.Context) {
	ok(c, h.alerts.Drain())
}

func (h *Handler) summary(c *gin.Context) {
	s, err := h.svc.Summary(c.Request.Context(), h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, s)
}

func (h *Handler) analytics(c *gin.Context) {
	a, err := h.svc.Analytics(c.Request.Context(), c.DefaultQuery("period", models.Period30Days))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, a)
}

func (h *Handler) listOrders(c *gin.Context) {
	var filter models.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		h.fail(c, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status))
		return
	}
	orders, err := h.svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "data": orders})
}

// allowedFromQuery reads ?allowed=a,b as a transition override
func allowedFromQuery(c *gin.Context) []models.OrderStatus {
	raw := c.Query("allowed")
	if raw == "" {
		return nil
	}
	var allowed []models.OrderStatus
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			allowed = append(allowed, models.OrderStatus(s))
		}
	}
	return allowed
}

func newOrderView(order *models.Order, allowed []models.OrderStatus) OrderView {
	view := OrderView{
		Order:       order,
		StatusLabel: orderstatus.FormatStatusLabel(order.Status),
		Terminal:    orderstatus.IsTerminal(order.Status),
		Transitions: []TransitionOption{},
	}
	for _, s := range orderstatus.AllowedTransitions(order.Status, allowed...) {
		opt := TransitionOption{
			Status:               s,
			Label:                orderstatus.FormatStatusLabel(s),
			RequiresConfirmation: orderstatus.RequiresConfirmation(s),
		}
		if opt.RequiresConfirmation {
			opt.Warning = orderstatus.CancellationWarning
		}
		view.Transitions = append(view.Transitions, opt)
	}
	return view
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, newOrderView(order, allowedFromQuery(c)))
}

func (h *Handler) transitions(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, newOrderView(order, allowedFromQuery(c)).Transitions)
}

func (h *Handler) changeStatus(c *gin.Context) {
	var req statusChange
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.svc.ChangeOrderStatus(c.Request.Context(), c.Param("id"), orderstatus.TransitionRequest{
		Status:  req.Status,
		Note:    req.Note,
		Allowed: req.Allowed,
	})
	if err != nil {
		if errors.Is(err, orderstatus.ErrServiceFailure) {
			h.alerts.Error(err.Error())
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": orderstatus.SuccessMessage(req.Status),
		"data":    newOrderView(updated, nil),
	})
}

func (h *Handler) listMenu(c *gin.Context) {
	items, err := h.svc.Menu(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func (h *Handler) getMenuItem(c *gin.Context) {
	item, err := h.svc.GetMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, item)
}

func (h *Handler) createMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateMenuItem(c.Request.Context(), item)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

func (h *Handler) updateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.svc.UpdateMenuItem(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, updated)
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	if err := h.svc.DeleteMenuItem(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) toggleMenuItem(c *gin.Context) {
	item, err := h.svc.ToggleMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, item)
}

func (h *Handler) getRestaurant(c *gin.Context) {
	r, err := h.svc.Restaurant(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, r)
}

func (h *Handler) updateRestaurant(c *gin.Context) {
	var changes map[string]interface{}
	if err := c.ShouldBindJSON(&changes); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.UpdateRestaurant(c.Request.Context(), changes)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, r)
}

func (h *Handler) toggleOpen(c *gin.Context) {
	r, err := h.svc.ToggleOpen(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, r)
}

func (h *Handler) getHours(c *gin.Context) {
	week, err := h.svc.BusinessHours()
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{
		"hours":   week,
		"openNow": week.IsOpenAt(h.now()),
	})
}

func (h *Handler) saveHours(c *gin.Context) {
	var week hours.Week
	if err := c.ShouldBindJSON(&week); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.SaveBusinessHours(c.Request.Context(), week)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, r)
}
