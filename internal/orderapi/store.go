// Package orderapi is an in-memory stand-in for the restaurant REST API,
// used for local development of the dashboard.
package orderapi

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ashendes/restaurant-admin/internal/metrics"
	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/ashendes/restaurant-admin/internal/orderstatus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	errOrderNotFound = errors.New("Order not found")
	errMenuNotFound  = errors.New("Menu item not found")
	errBadTransition = errors.New("Invalid status transition")
)

// Store holds all stub data
type Store struct {
	mutex      sync.RWMutex
	orders     map[string]*models.Order
	menu       map[string]*models.MenuItem
	restaurant models.Restaurant
	owner      models.User
	password   string
	now        func() time.Time
}

// NewStore seeds a store with one owner, one restaurant and sample data
func NewStore() *Store {
	s := &Store{
		orders: make(map[string]*models.Order),
		menu:   make(map[string]*models.MenuItem),
		owner: models.User{
			ID:    "user-owner",
			Name:  "Demo Owner",
			Email: "owner@example.com",
			Role:  models.RoleRestaurant,
		},
		password: "password",
		now:      time.Now,
	}
	s.restaurant = models.Restaurant{
		ID:            "rest-1",
		Name:          "Demo Kitchen",
		Owner:         s.owner.ID,
		IsOpen:        true,
		AverageRating: 4.6,
	}

	sampleMenu := []models.MenuItem{
		{Name: "Margherita", Category: "Pizza", Price: decimal.RequireFromString("9.50"), IsAvailable: true, IsVegetarian: true},
		{Name: "Diavola", Category: "Pizza", Price: decimal.RequireFromString("11.00"), IsAvailable: true},
		{Name: "Tiramisu", Category: "Dessert", Price: decimal.RequireFromString("5.25"), IsAvailable: true, IsVegetarian: true},
	}
	for i := range sampleMenu {
		s.CreateMenuItem(sampleMenu[i])
	}

	s.CreateOrder(models.Order{
		Items:         []models.OrderItem{{Name: "Margherita", Quantity: 2, Price: decimal.RequireFromString("9.50")}},
		DeliveryFee:   decimal.RequireFromString("2.00"),
		PaymentMethod: models.PaymentMethodOnline,
		PaymentStatus: models.PaymentStatusPaid,
		User:          &models.Customer{ID: "cust-1", Name: "Alice"},
	})
	s.CreateOrder(models.Order{
		Items:         []models.OrderItem{{Name: "Diavola", Quantity: 1, Price: decimal.RequireFromString("11.00")}},
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusPending,
		User:          &models.Customer{ID: "cust-2", Name: "Bob"},
	})

	return s
}

// CreateOrder stores a new pending order and computes its totals
func (s *Store) CreateOrder(o models.Order) *models.Order {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	o.ID = uuid.New().String()
	o.Status = models.OrderStatusPending
	o.CreatedAt = now
	o.StatusHistory = []models.StatusHistoryEntry{{Status: models.OrderStatusPending, Timestamp: now}}

	o.Items = append([]models.OrderItem(nil), o.Items...)
	counted := make(map[string]bool, len(o.Items))
	subtotal := decimal.Zero
	for i, item := range o.Items {
		if item.MenuItem == "" {
			o.Items[i].MenuItem = s.menuIDByName(item.Name)
		}
		if m, ok := s.menu[o.Items[i].MenuItem]; ok && !counted[m.ID] {
			counted[m.ID] = true
			m.OrderCount++
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	o.Subtotal = subtotal
	o.TaxAmount = subtotal.Mul(decimal.RequireFromString("0.08")).Round(2)
	o.Total = subtotal.Add(o.DeliveryFee).Add(o.TaxAmount).Sub(o.Discount)
	eta := now.Add(45 * time.Minute)
	o.EstimatedDeliveryTime = &eta

	s.orders[o.ID] = &o
	s.recordStatusGauges()
	return o.Clone()
}

// menuIDByName must be called with the lock held
func (s *Store) menuIDByName(name string) string {
	for id, m := range s.menu {
		if m.Name == name {
			return id
		}
	}
	return ""
}

// Orders lists orders newest first, filtered by status and creation window
func (s *Store) Orders(filter models.OrderFilter) []models.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if !filter.StartDate.IsZero() && o.CreatedAt.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && o.CreatedAt.After(filter.EndDate) {
			continue
		}
		out = append(out, *o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Order returns one order
func (s *Store) Order(id string) (*models.Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errOrderNotFound
	}
	return o.Clone(), nil
}

// UpdateStatus applies a transition the way the real backend does: it
// appends history, stamps delivery time and refunds online payments on cancel
func (s *Store) UpdateStatus(id string, req models.UpdateStatusRequest) (*models.Order, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, errOrderNotFound
	}
	if !orderstatus.CanTransition(o.Status, req.Status) {
		return nil, errBadTransition
	}

	now := s.now()
	o.Status = req.Status
	o.StatusHistory = append(o.StatusHistory, models.StatusHistoryEntry{
		Status:    req.Status,
		Timestamp: now,
		Note:      req.Note,
	})

	switch req.Status {
	case models.OrderStatusDelivered:
		o.ActualDeliveryTime = &now
		if o.PaymentMethod != "" && !o.PaidOnline() {
			o.PaymentStatus = models.PaymentStatusPaid
		}
	case models.OrderStatusCancelled:
		o.CancellationReason = req.Note
		o.CancelledBy = models.RoleRestaurant
		if o.PaidOnline() && o.PaymentStatus == models.PaymentStatusPaid {
			o.PaymentStatus = models.PaymentStatusRefunded
		}
	}

	s.recordStatusGauges()
	return o.Clone(), nil
}

// recordStatusGauges must be called with the lock held
func (s *Store) recordStatusGauges() {
	counts := make(map[models.OrderStatus]int, len(models.AllOrderStatuses))
	for _, o := range s.orders {
		counts[o.Status]++
	}
	for _, st := range models.AllOrderStatuses {
		metrics.OrdersTotal.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}

// MenuItems lists the menu sorted by category and name
func (s *Store) MenuItems() []models.MenuItem {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]models.MenuItem, 0, len(s.menu))
	for _, m := range s.menu {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MenuItem returns one menu item
func (s *Store) MenuItem(id string) (*models.MenuItem, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	m, ok := s.menu[id]
	if !ok {
		return nil, errMenuNotFound
	}
	c := *m
	return &c, nil
}

// CreateMenuItem adds a menu item to the restaurant
func (s *Store) CreateMenuItem(item models.MenuItem) *models.MenuItem {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	item.ID = uuid.New().String()
	item.Restaurant = s.restaurant.ID
	s.menu[item.ID] = &item
	c := item
	return &c
}

// UpdateMenuItem replaces a menu item, keeping its id, restaurant and order count
func (s *Store) UpdateMenuItem(id string, item models.MenuItem) (*models.MenuItem, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	existing, ok := s.menu[id]
	if !ok {
		return nil, errMenuNotFound
	}
	item.ID = id
	item.OrderCount = existing.OrderCount
	item.Restaurant = s.restaurant.ID
	s.menu[id] = &item
	c := item
	return &c, nil
}

// DeleteMenuItem removes a menu item
func (s *Store) DeleteMenuItem(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.menu[id]; !ok {
		return errMenuNotFound
	}
	delete(s.menu, id)
	return nil
}

// ToggleMenuItem flips availability
func (s *Store) ToggleMenuItem(id string) (*models.MenuItem, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	m, ok := s.menu[id]
	if !ok {
		return nil, errMenuNotFound
	}
	m.IsAvailable = !m.IsAvailable
	c := *m
	return &c, nil
}

// Restaurant returns the restaurant profile
func (s *Store) Restaurant() models.Restaurant {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.restaurant
}

// UpdateRestaurant applies changed profile fields
func (s *Store) UpdateRestaurant(update models.Restaurant, fields map[string]bool) models.Restaurant {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if fields["name"] {
		s.restaurant.Name = update.Name
	}
	if fields["description"] {
		s.restaurant.Description = update.Description
	}
	if fields["phone"] {
		s.restaurant.Phone = update.Phone
	}
	if fields["email"] {
		s.restaurant.Email = update.Email
	}
	if fields["cuisine"] {
		s.restaurant.Cuisine = update.Cuisine
	}
	if fields["address"] {
		s.restaurant.Address = update.Address
	}
	if fields["openingHours"] {
		s.restaurant.OpeningHours = update.OpeningHours
	}
	return s.restaurant
}

// ToggleOpen flips the restaurant between open and closed
func (s *Store) ToggleOpen() models.Restaurant {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.restaurant.IsOpen = !s.restaurant.IsOpen
	return s.restaurant
}

// topItemCount is how many best sellers Analytics reports
const topItemCount = 5

// periodStart returns the earliest creation time included in period
func periodStart(now time.Time, period string) time.Time {
	switch period {
	case models.PeriodWeek:
		return now.AddDate(0, 0, -7)
	case models.PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

// Analytics aggregates non-cancelled orders created within period
func (s *Store) Analytics(period string) models.Analytics {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	since := periodStart(now, period)
	a := models.Analytics{
		Period:         period,
		TotalRevenue:   decimal.Zero,
		AverageOrder:   decimal.Zero,
		OrdersByStatus: map[string]int{},
	}
	byDay := map[string]*models.DailySales{}
	byItem := map[string]*models.TopItem{}

	for _, o := range s.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		a.OrdersByStatus[string(o.Status)]++
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		a.TotalOrders++
		a.TotalRevenue = a.TotalRevenue.Add(o.Total)

		day := o.CreatedAt.UTC().Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &models.DailySales{Date: day, Revenue: decimal.Zero}
			byDay[day] = d
		}
		d.OrderCount++
		d.Revenue = d.Revenue.Add(o.Total)

		seen := map[string]bool{}
		for _, item := range o.Items {
			key := item.MenuItem
			if key == "" {
				key = item.Name
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			top, ok := byItem[key]
			if !ok {
				top = &models.TopItem{ID: item.MenuItem, Name: item.Name, Price: item.Price}
				byItem[key] = top
			}
			top.OrderCount++
		}
	}

	if a.TotalOrders > 0 {
		a.AverageOrder = a.TotalRevenue.Div(decimal.NewFromInt(int64(a.TotalOrders))).Round(2)
	}
	for _, d := range byDay {
		a.SalesByDay = append(a.SalesByDay, *d)
	}
	sort.Slice(a.SalesByDay, func(i, j int) bool { return a.SalesByDay[i].Date < a.SalesByDay[j].Date })

	for _, top := range byItem {
		a.TopItems = append(a.TopItems, *top)
	}
	sort.Slice(a.TopItems, func(i, j int) bool {
		if a.TopItems[i].OrderCount != a.TopItems[j].OrderCount {
			return a.TopItems[i].OrderCount > a.TopItems[j].OrderCount
		}
		return a.TopItems[i].Name < a.TopItems[j].Name
	})
	if len(a.TopItems) > topItemCount {
		a.TopItems = a.TopItems[:topItemCount]
	}
	return a
}

// Authenticate checks login credentials
func (s *Store) Authenticate(email, password string) (models.User, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if email != s.owner.Email || password != s.password {
		return models.User{}, false
	}
	return s.owner, true
}

// Owner returns the seeded account
func (s *Store) Owner() models.User {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.owner
}

// UpdateOwner applies account detail changes
func (s *Store) UpdateOwner(req models.UpdateDetailsRequest) models.User {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if req.Name != "" {
		s.owner.Name = req.Name
	}
	if req.Email != "" {
		s.owner.Email = req.Email
	}
	if req.Phone != "" {
		s.owner.Phone = req.Phone
	}
	return s.owner
}

// ChangePassword replaces the password when current matches
func (s *Store) ChangePassword(current, next string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if current != s.password {
		return false
	}
	s.password = next
	return true
}
