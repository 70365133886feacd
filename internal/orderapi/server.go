package orderapi

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ashendes/restaurant-admin/internal/metrics"
	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// ServiceName labels this service's metrics
const ServiceName = "order-api"

const tokenTTL = 24 * time.Hour

var errChaos = errors.New("simulated failure")

// Server serves the stub API on top of a Store
type Server struct {
	store  *Store
	secret []byte

	chaosEnabled  bool
	chaosSlowMode bool
	chaosMutex    sync.RWMutex
	failureRate   float32
	slowDelay     func() time.Duration
}

// NewServer creates a server signing tokens with secret
func NewServer(store *Store, secret []byte) *Server {
	return &Server{
		store:       store,
		secret:      secret,
		failureRate: 0.4,
		slowDelay: func() time.Duration {
			return time.Duration(5000+rand.Intn(5000)) * time.Millisecond
		},
	}
}

// Router builds the gin engine with every stub route under /api/v1
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.PrometheusMiddleware(ServiceName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/chaos/enable", s.enableChaos)
	router.POST("/chaos/disable", s.disableChaos)
	router.POST("/chaos/slow", s.enableSlowMode)
	router.POST("/chaos/slow/disable", s.disableSlowMode)

	api := router.Group("/api/v1")
	api.POST("/auth/login", s.login)
	api.POST("/auth/forgotpassword", s.forgotPassword)
	api.PUT("/auth/resetpassword/:token", s.resetPassword)

	authed := api.Group("")
	authed.Use(s.requireToken, s.chaos)
	authed.GET("/auth/logout", s.logout)
	authed.GET("/auth/me", s.me)
	authed.PUT("/auth/updatedetails", s.updateDetails)
	authed.PUT("/auth/updatepassword", s.updatePassword)

	authed.GET("/orders", s.listOrders)
	authed.GET("/orders/:id", s.getOrder)
	authed.PUT("/orders/:id/status", s.updateStatus)

	authed.GET("/menu", s.listMenu)
	authed.POST("/menu", s.createMenuItem)
	authed.GET("/menu/:id", s.getMenuItem)
	authed.PUT("/menu/:id", s.updateMenuItem)
	authed.DELETE("/menu/:id", s.deleteMenuItem)
	authed.PUT("/menu/:id/toggle-availability", s.toggleMenuItem)

	authed.GET("/restaurants", s.listRestaurants)
	authed.GET("/restaurants/:id", s.getRestaurant)
	authed.PUT("/restaurants/:id", s.updateRestaurant)
	authed.PUT("/restaurants/:id/toggle-status", s.toggleRestaurant)
	authed.GET("/restaurants/:id/analytics", s.analytics)

	return router
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// IssueToken signs a token for userID
func (s *Server) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		fail(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		fail(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	subject, _ := token.Claims.GetSubject()
	c.Set("userID", subject)
	c.Next()
}

func (s *Server) chaos(c *gin.Context) {
	if s.getSlowMode() {
		delay := s.slowDelay()
		log.WithField("delay_ms", delay.Milliseconds()).Debug("Chaos: Simulating slow response")
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	if s.getChaosEnabled() && rand.Float32() < s.failureRate {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Warn("Chaos: Simulated API failure")
		fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable: "+errChaos.Error())
		return
	}
	c.Next()
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide an email and password")
		return
	}

	user, valid := s.store.Authenticate(req.Email, req.Password)
	if !valid {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		log.WithError(err).Error("Failed to sign token")
		fail(c, http.StatusInternalServerError, "Server Error")
		return
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	c.JSON(http.StatusOK, models.LoginResponse{Success: true, Token: token, User: user})
}

func (s *Server) logout(c *gin.Context) {
	ok(c, gin.H{})
}

func (s *Server) me(c *gin.Context) {
	ok(c, s.store.Owner())
}

func (s *Server) updateDetails(c *gin.Context) {
	var req models.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	ok(c, s.store.UpdateOwner(req))
}

func (s *Server) updatePassword(c *gin.Context) {
	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if !s.store.ChangePassword(req.CurrentPassword, req.NewPassword) {
		fail(c, http.StatusUnauthorized, "Password is incorrect")
		return
	}
	ok(c, gin.H{})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide an email")
		return
	}
	log.WithField("email", req.Email).Info("Password reset requested")
	ok(c, "Email sent")
}

func (s *Server) resetPassword(c *gin.Context) {
	fail(c, http.StatusBadRequest, "Invalid token")
}

func (s *Server) listOrders(c *gin.Context) {
	var filter models.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	orders := s.store.Orders(filter)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "data": orders})
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.store.Order(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	ok(c, order)
}

func (s *Server) updateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide a status")
		return
	}

	order, err := s.store.UpdateStatus(c.Param("id"), req)
	switch {
	case errors.Is(err, errOrderNotFound):
		fail(c, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, errBadTransition):
		fail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, "Server Error")
		return
	}

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("Order status updated")
	ok(c, order)
}

func (s *Server) listMenu(c *gin.Context) {
	if r := c.Query("restaurant"); r != "" && r != s.store.Restaurant().ID {
		ok(c, []models.MenuItem{})
		return
	}
	ok(c, s.store.MenuItems())
}

func (s *Server) getMenuItem(c *gin.Context) {
	item, err := s.store.MenuItem(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	ok(c, item)
}

func (s *Server) createMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": s.store.CreateMenuItem(item)})
}

func (s *Server) updateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	updated, err := s.store.UpdateMenuItem(c.Param("id"), item)
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	ok(c, updated)
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	if err := s.store.DeleteMenuItem(c.Param("id")); err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	ok(c, gin.H{})
}

func (s *Server) toggleMenuItem(c *gin.Context) {
	item, err := s.store.ToggleMenuItem(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}
	ok(c, item)
}

func (s *Server) listRestaurants(c *gin.Context) {
	r := s.store.Restaurant()
	if user := c.Query("user"); user != "" && user != r.Owner {
		ok(c, []models.Restaurant{})
		return
	}
	ok(c, []models.Restaurant{r})
}

// restaurantParam aborts with 404 unless :id names the stub's restaurant
func (s *Server) restaurantParam(c *gin.Context) bool {
	if c.Param("id") != s.store.Restaurant().ID {
		fail(c, http.StatusNotFound, "Restaurant not found")
		return false
	}
	return true
}

func (s *Server) getRestaurant(c *gin.Context) {
	if !s.restaurantParam(c) {
		return
	}
	ok(c, s.store.Restaurant())
}

func (s *Server) updateRestaurant(c *gin.Context) {
	if !s.restaurantParam(c) {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	fields := make(map[string]bool, len(raw))
	for k := range raw {
		fields[k] = true
	}

	body, _ := json.Marshal(raw)
	var update models.Restaurant
	if err := json.Unmarshal(body, &update); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	ok(c, s.store.UpdateRestaurant(update, fields))
}

func (s *Server) toggleRestaurant(c *gin.Context) {
	if !s.restaurantParam(c) {
		return
	}
	ok(c, s.store.ToggleOpen())
}

func (s *Server) analytics(c *gin.Context) {
	if !s.restaurantParam(c) {
		return
	}
	period := c.DefaultQuery("period", models.Period30Days)
	if !models.ValidAnalyticsPeriod(period) {
		fail(c, http.StatusBadRequest, "Invalid period")
		return
	}
	ok(c, s.store.Analytics(period))
}

func (s *Server) enableChaos(c *gin.Context) {
	s.setChaosEnabled(true)
	metrics.ChaosFailureRate.WithLabelValues(ServiceName).Set(1)

	log.Info("Chaos mode ENABLED for order API")
	c.JSON(http.StatusOK, gin.H{
		"message": "Chaos mode enabled",
		"info":    "40% of requests will fail randomly",
	})
}

func (s *Server) disableChaos(c *gin.Context) {
	s.setChaosEnabled(false)
	s.setSlowMode(false)
	metrics.ChaosFailureRate.WithLabelValues(ServiceName).Set(0)
	metrics.ChaosSlowMode.WithLabelValues(ServiceName).Set(0)

	log.Info("Chaos mode DISABLED for order API")
	c.JSON(http.StatusOK, gin.H{"message": "Chaos mode disabled"})
}

func (s *Server) enableSlowMode(c *gin.Context) {
	s.setSlowMode(true)
	metrics.ChaosSlowMode.WithLabelValues(ServiceName).Set(1)

	log.Info("Slow mode ENABLED for order API")
	c.JSON(http.StatusOK, gin.H{
		"message": "Slow mode enabled",
		"info":    "Requests will have 5-10 second delays",
	})
}

func (s *Server) disableSlowMode(c *gin.Context) {
	s.setSlowMode(false)
	metrics.ChaosSlowMode.WithLabelValues(ServiceName).Set(0)

	log.Info("Slow mode DISABLED for order API")
	c.JSON(http.StatusOK, gin.H{"message": "Slow mode disabled"})
}

func (s *Server) setChaosEnabled(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosEnabled = enabled
}

func (s *Server) getChaosEnabled() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosEnabled
}

func (s *Server) setSlowMode(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosSlowMode = enabled
}

func (s *Server) getSlowMode() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosSlowMode
}
