package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/shopspring/decimal"
)

// ErrValidation marks input rejected before any API call
var ErrValidation = errors.New("validation failed")

// How many orders and menu items the overview lists
const (
	recentOrderCount  = 5
	popularItemsCount = 5
)

// Summary is the dashboard overview
type Summary struct {
	TodayOrders   int                 `json:"todayOrders"`
	PendingOrders int                 `json:"pendingOrders"`
	TotalRevenue  decimal.Decimal     `json:"totalRevenue"`
	AverageRating float64             `json:"averageRating"`
	RecentOrders  []models.Order      `json:"recentOrders"`
	SalesByDay    []models.DailySales `json:"salesByDay"`
	PopularItems  []models.MenuItem   `json:"popularItems"`
	TopItems      []models.TopItem    `json:"topItems"`
}

// SearchOrders keeps orders whose id or customer name contains term, case-insensitively
func SearchOrders(orders []models.Order, term string) []models.Order {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return orders
	}

	matched := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.ID), term) ||
			(o.User != nil && strings.Contains(strings.ToLower(o.User.Name), term)) {
			matched = append(matched, o)
		}
	}
	return matched
}

// Summarize computes the overview; "today" is the UTC calendar day of now
func Summarize(orders []models.Order, menu []models.MenuItem, analytics *models.Analytics, r models.Restaurant, now time.Time) *Summary {
	s := &Summary{
		AverageRating: r.AverageRating,
		RecentOrders:  orders,
		SalesByDay:    []models.DailySales{},
		PopularItems:  PopularItems(menu, popularItemsCount),
		TopItems:      []models.TopItem{},
	}
	if len(orders) > recentOrderCount {
		s.RecentOrders = orders[:recentOrderCount]
	}

	today := now.UTC().Format("2006-01-02")
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			s.PendingOrders++
		}
		if o.CreatedAt.UTC().Format("2006-01-02") == today {
			s.TodayOrders++
		}
	}

	if analytics != nil {
		s.TotalRevenue = analytics.TotalRevenue
		if analytics.SalesByDay != nil {
			s.SalesByDay = analytics.SalesByDay
		}
		if analytics.TopItems != nil {
			s.TopItems = analytics.TopItems
		}
	}
	return s
}

// PopularItems returns up to n menu items, most ordered first
func PopularItems(menu []models.MenuItem, n int) []models.MenuItem {
	items := append([]models.MenuItem{}, menu...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].OrderCount > items[j].OrderCount })
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// FilterMenu keeps items of category; empty or "all" keeps everything
func FilterMenu(items []models.MenuItem, category string) []models.MenuItem {
	if category == "" || strings.EqualFold(category, "all") {
		return items
	}
	filtered := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if strings.EqualFold(it.Category, category) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// ValidateMenuItem checks the fields the API requires
func ValidateMenuItem(item models.MenuItem) error {
	switch {
	case strings.TrimSpace(item.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(item.Category) == "":
		return fmt.Errorf("%w: category is required", ErrValidation)
	case !item.Price.IsPositive():
		return fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	case item.PreparationTime < 0:
		return fmt.Errorf("%w: preparation time cannot be negative", ErrValidation)
	}
	return nil
}
