// Package session holds the credentials of the logged-in dashboard user.
// A Session is created empty, filled by Start after a successful login and
// cleared by End on logout or when the API rejects the token.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession is returned when nobody is logged in
	ErrNoSession = errors.New("no active session")
	// ErrExpired is returned once the token's exp claim has passed
	ErrExpired = errors.New("session expired")
	// ErrEmptyToken is returned by Start when the login produced no token
	ErrEmptyToken = errors.New("empty session token")
)

// Session is safe for concurrent use.
type Session struct {
	mu         sync.RWMutex
	token      string
	user       *models.User
	restaurant *models.Restaurant
	expiresAt  time.Time
	now        func() time.Time
}

// New returns an empty session
func New() *Session {
	return &Session{now: time.Now}
}

// Start stores the credentials returned by a login.
// The exp claim is read from the token when it is a JWT; the signature is
// not checked here, the API does that on every call.
func (s *Session) Start(token string, user models.User) error {
	if token == "" {
		return ErrEmptyToken
	}

	var expiresAt time.Time
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	u := user
	s.user = &u
	s.restaurant = nil
	s.expiresAt = expiresAt
	return nil
}

// End clears all credentials
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.restaurant = nil
	s.expiresAt = time.Time{}
}

// Token returns the bearer token for API calls
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoSession
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		return "", ErrExpired
	}
	return s.token, nil
}

// Active reports whether a usable token is held
func (s *Session) Active() bool {
	_, err := s.Token()
	return err == nil
}

// User returns a copy of the logged-in user
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// SetUser replaces the stored user, e.g. after a profile refresh
func (s *Session) SetUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	u := user
	s.user = &u
}

// SetRestaurant records the restaurant owned by the logged-in user
func (s *Session) SetRestaurant(r models.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	rc := r
	s.restaurant = &rc
}

// Restaurant returns the restaurant attached to the session, if any
func (s *Session) Restaurant() (models.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.restaurant == nil {
		return models.Restaurant{}, false
	}
	return *s.restaurant, true
}

// ExpiresAt returns the token expiry; zero when the token carries none
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}
