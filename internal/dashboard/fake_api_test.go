package dashboard

import (
	"context"
	"sync"

	"github.com/ashendes/restaurant-admin/internal/client"
	"github.com/ashendes/restaurant-admin/internal/models"
)

// fakeAPI is an in-memory RestaurantAPI
type fakeAPI struct {
	mu          sync.Mutex
	token       string
	user        models.User
	restaurant  models.Restaurant
	orders      map[string]*models.Order
	menu        []models.MenuItem
	analytics   models.Analytics
	updateErr   error
	meErr       error
	updateCalls int
	logoutCalls int
	lastChanges interface{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		token:      "opaque-token",
		user:       models.User{ID: "u1", Name: "Owner", Role: models.RoleRestaurant},
		restaurant: models.Restaurant{ID: "r1", Name: "Trattoria", AverageRating: 4.5},
		orders:     map[string]*models.Order{},
	}
}

func (f *fakeAPI) Login(ctx context.Context, creds models.LoginRequest) (*models.LoginResponse, error) {
	if creds.Password != "secret" {
		return nil, &client.APIError{StatusCode: 401, Method: "POST", Path: "/auth/login", Message: "Invalid credentials"}
	}
	return &models.LoginResponse{Success: true, Token: f.token, User: f.user}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return nil
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) UpdateDetails(ctx context.Context, req models.UpdateDetailsRequest) (*models.User, error) {
	u := f.user
	if req.Name != "" {
		u.Name = req.Name
	}
	return &u, nil
}

func (f *fakeAPI) UpdatePassword(ctx context.Context, req models.UpdatePasswordRequest) error {
	return nil
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error { return nil }

func (f *fakeAPI) ResetPassword(ctx context.Context, resetToken, password string) error { return nil }

func (f *fakeAPI) GetOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o.Clone())
	}
	return out, nil
}

func (f *fakeAPI) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Method: "GET", Path: "/orders/" + id, Message: "Order not found"}
	}
	return o.Clone(), nil
}

func (f *fakeAPI) UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	o := f.orders[id]
	o.Status = req.Status
	o.StatusHistory = append(o.StatusHistory, models.StatusHistoryEntry{Status: req.Status, Note: req.Note})
	return o.Clone(), nil
}

func (f *fakeAPI) ListMenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	return f.menu, nil
}

func (f *fakeAPI) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	for _, it := range f.menu {
		if it.ID == id {
			item := it
			return &item, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "Menu item not found"}
}

func (f *fakeAPI) CreateMenuItem(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	item.ID = "m-new"
	f.menu = append(f.menu, item)
	return &item, nil
}

func (f *fakeAPI) UpdateMenuItem(ctx context.Context, id string, item models.MenuItem) (*models.MenuItem, error) {
	item.ID = id
	return &item, nil
}

func (f *fakeAPI) DeleteMenuItem(ctx context.Context, id string) error { return nil }

func (f *fakeAPI) ToggleMenuItemAvailability(ctx context.Context, id string) (*models.MenuItem, error) {
	return &models.MenuItem{ID: id, IsAvailable: true}, nil
}

func (f *fakeAPI) RestaurantForOwner(ctx context.Context, userID string) (*models.Restaurant, error) {
	if userID != f.user.ID {
		return nil, client.ErrNoRestaurant
	}
	r := f.restaurant
	return &r, nil
}

func (f *fakeAPI) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	r := f.restaurant
	return &r, nil
}

func (f *fakeAPI) UpdateRestaurant(ctx context.Context, id string, changes interface{}) (*models.Restaurant, error) {
	f.lastChanges = changes
	r := f.restaurant
	return &r, nil
}

func (f *fakeAPI) ToggleRestaurantStatus(ctx context.Context, id string) (*models.Restaurant, error) {
	f.restaurant.IsOpen = !f.restaurant.IsOpen
	r := f.restaurant
	return &r, nil
}

func (f *fakeAPI) GetAnalytics(ctx context.Context, id, period string) (*models.Analytics, error) {
	a := f.analytics
	a.Period = period
	return &a, nil
}

type fixedCircuit struct{}

func (fixedCircuit) CircuitState() (string, int) { return "closed", 0 }
