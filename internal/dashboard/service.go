// Package dashboard implements the restaurant administration workflows on top
// of the restaurant API client and exposes them over HTTP.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashendes/restaurant-admin/internal/client"
	"github.com/ashendes/restaurant-admin/internal/hours"
	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/ashendes/restaurant-admin/internal/orderstatus"
	"github.com/ashendes/restaurant-admin/internal/session"
	log "github.com/sirupsen/logrus"
)

// ErrNoRestaurant is returned by restaurant-scoped calls when the session has none
var ErrNoRestaurant = errors.New("session has no restaurant")

// RestaurantAPI is the subset of the API client the dashboard uses
type RestaurantAPI interface {
	Login(ctx context.Context, creds models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateDetails(ctx context.Context, req models.UpdateDetailsRequest) (*models.User, error)
	UpdatePassword(ctx context.Context, req models.UpdatePasswordRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error

	GetOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Order, error)

	ListMenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item models.MenuItem) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, item models.MenuItem) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	ToggleMenuItemAvailability(ctx context.Context, id string) (*models.MenuItem, error)

	RestaurantForOwner(ctx context.Context, userID string) (*models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id string, changes interface{}) (*models.Restaurant, error)
	ToggleRestaurantStatus(ctx context.Context, id string) (*models.Restaurant, error)
	GetAnalytics(ctx context.Context, id, period string) (*models.Analytics, error)
}

// Service holds the dashboard workflows for one logged-in user
type Service struct {
	api     RestaurantAPI
	session *session.Session
	orders  *orderstatus.Controller
	logger  log.FieldLogger
}

// NewService wires the API, the session and the status controller together
func NewService(api RestaurantAPI, sess *session.Session, orders *orderstatus.Controller, logger log.FieldLogger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{api: api, session: sess, orders: orders, logger: logger}
}

// Login authenticates, starts the session and attaches the user's restaurant.
// A missing restaurant is logged, not returned: the user is still logged in.
func (s *Service) Login(ctx context.Context, creds models.LoginRequest) (*models.User, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := s.session.Start(resp.Token, resp.User); err != nil {
		return nil, err
	}

	s.attachRestaurant(ctx, resp.User)

	s.logger.WithFields(log.Fields{
		"user_id": resp.User.ID,
		"role":    resp.User.Role,
	}).Info("User logged in")

	user := resp.User
	return &user, nil
}

// Logout ends the session even when the API call fails
func (s *Service) Logout(ctx context.Context) {
	if s.session.Active() {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.WithError(err).Warn("Logout call failed")
		}
	}
	s.session.End()
}

// EndSession drops local credentials without calling the API
func (s *Service) EndSession() {
	s.session.End()
}

// Refresh reloads the user from the API; any failure ends the session
func (s *Service) Refresh(ctx context.Context) (*models.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Authentication check failed, ending session")
		s.Logout(ctx)
		return nil, err
	}
	s.session.SetUser(*user)
	if _, ok := s.session.Restaurant(); !ok {
		s.attachRestaurant(ctx, *user)
	}
	return user, nil
}

func (s *Service) attachRestaurant(ctx context.Context, user models.User) {
	if user.Role != models.RoleRestaurant {
		return
	}
	r, err := s.api.RestaurantForOwner(ctx, user.ID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Error fetching restaurant")
		return
	}
	s.session.SetRestaurant(*r)
}

// CurrentUser returns the logged-in user
func (s *Service) CurrentUser() (models.User, error) {
	if _, err := s.session.Token(); err != nil {
		return models.User{}, err
	}
	u, _ := s.session.User()
	return u, nil
}

// UpdateDetails changes account details and refreshes the session copy
func (s *Service) UpdateDetails(ctx context.Context, req models.UpdateDetailsRequest) (*models.User, error) {
	user, err := s.api.UpdateDetails(ctx, req)
	if err != nil {
		return nil, err
	}
	s.session.SetUser(*user)
	return user, nil
}

// UpdatePassword changes the account password
func (s *Service) UpdatePassword(ctx context.Context, req models.UpdatePasswordRequest) error {
	return s.api.UpdatePassword(ctx, req)
}

// ForgotPassword requests a reset email
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	return s.api.ForgotPassword(ctx, email)
}

// ResetPassword completes a password reset
func (s *Service) ResetPassword(ctx context.Context, resetToken, password string) error {
	return s.api.ResetPassword(ctx, resetToken, password)
}

func (s *Service) restaurant() (models.Restaurant, error) {
	if _, err := s.session.Token(); err != nil {
		return models.Restaurant{}, err
	}
	r, ok := s.session.Restaurant()
	if !ok {
		return models.Restaurant{}, ErrNoRestaurant
	}
	return r, nil
}

// ListOrders fetches orders with server-side filters, then applies the search term
func (s *Service) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	orders, err := s.api.GetOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return SearchOrders(orders, filter.SearchTerm), nil
}

// GetOrder fetches a fresh order snapshot
func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.api.GetOrder(ctx, id)
}

// ChangeOrderStatus loads the current snapshot and requests the transition
func (s *Service) ChangeOrderStatus(ctx context.Context, id string, req orderstatus.TransitionRequest) (*models.Order, error) {
	order, err := s.api.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.orders.RequestTransition(ctx, order, req)
}

// Summary builds the dashboard overview
func (s *Service) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	orders, err := s.api.GetOrders(ctx, models.OrderFilter{})
	if err != nil {
		return nil, err
	}
	menu, err := s.api.ListMenuItems(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	analytics, err := s.api.GetAnalytics(ctx, r.ID, models.Period30Days)
	if err != nil {
		return nil, err
	}
	return Summarize(orders, menu, analytics, r, now), nil
}

// Analytics fetches the report for period
func (s *Service) Analytics(ctx context.Context, period string) (*models.Analytics, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	return s.api.GetAnalytics(ctx, r.ID, period)
}

// Menu lists the restaurant's menu, optionally narrowed to one category
func (s *Service) Menu(ctx context.Context, category string) ([]models.MenuItem, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	items, err := s.api.ListMenuItems(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return FilterMenu(items, category), nil
}

// GetMenuItem fetches one menu item
func (s *Service) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	return s.api.GetMenuItem(ctx, id)
}

// CreateMenuItem adds a menu item to the session's restaurant
func (s *Service) CreateMenuItem(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	if err := ValidateMenuItem(item); err != nil {
		return nil, err
	}
	item.Restaurant = r.ID
	return s.api.CreateMenuItem(ctx, item)
}

// UpdateMenuItem replaces a menu item
func (s *Service) UpdateMenuItem(ctx context.Context, id string, item models.MenuItem) (*models.MenuItem, error) {
	if err := ValidateMenuItem(item); err != nil {
		return nil, err
	}
	return s.api.UpdateMenuItem(ctx, id, item)
}

// DeleteMenuItem removes a menu item
func (s *Service) DeleteMenuItem(ctx context.Context, id string) error {
	return s.api.DeleteMenuItem(ctx, id)
}

// ToggleMenuItem flips a menu item's availability
func (s *Service) ToggleMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	return s.api.ToggleMenuItemAvailability(ctx, id)
}

// Restaurant reloads the session's restaurant from the API
func (s *Service) Restaurant(ctx context.Context) (*models.Restaurant, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	fresh, err := s.api.GetRestaurant(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	s.session.SetRestaurant(*fresh)
	return fresh, nil
}

// UpdateRestaurant sends profile changes
func (s *Service) UpdateRestaurant(ctx context.Context, changes map[string]interface{}) (*models.Restaurant, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	updated, err := s.api.UpdateRestaurant(ctx, r.ID, changes)
	if err != nil {
		return nil, err
	}
	s.session.SetRestaurant(*updated)
	return updated, nil
}

// ToggleOpen flips the restaurant between open and closed
func (s *Service) ToggleOpen(ctx context.Context) (*models.Restaurant, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	updated, err := s.api.ToggleRestaurantStatus(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	s.session.SetRestaurant(*updated)
	return updated, nil
}

// BusinessHours returns the configured week, or the default week
func (s *Service) BusinessHours() (hours.Week, error) {
	r, err := s.restaurant()
	if err != nil {
		return nil, err
	}
	return hours.FromRestaurant(r), nil
}

// SaveBusinessHours validates and stores a new week
func (s *Service) SaveBusinessHours(ctx context.Context, week hours.Week) (*models.Restaurant, error) {
	if err := week.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.UpdateRestaurant(ctx, map[string]interface{}{"openingHours": week})
}

// CircuitState is implemented by the API client
type CircuitState interface {
	CircuitState() (string, int)
}

var _ RestaurantAPI = (*client.Client)(nil)
var _ CircuitState = (*client.Client)(nil)
