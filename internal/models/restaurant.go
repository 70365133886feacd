package models

import "github.com/shopspring/decimal"

// OpeningHours is one weekday entry; Day 0 is Sunday
type OpeningHours struct {
	Day      int    `json:"day"`
	Open     string `json:"open"`
	Close    string `json:"close"`
	IsClosed bool   `json:"isClosed"`
}

// Restaurant is the profile owned by the logged-in user
type Restaurant struct {
	ID            string         `json:"_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Owner         string         `json:"user,omitempty"`
	Cuisine       []string       `json:"cuisine,omitempty"`
	Address       *Address       `json:"address,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Email         string         `json:"email,omitempty"`
	IsOpen        bool           `json:"isOpen"`
	AverageRating float64        `json:"averageRating"`
	OpeningHours  []OpeningHours `json:"openingHours,omitempty"`
}

// Analytics periods accepted by the API. The dashboard offers week, month
// and year; 30days is the API default.
const (
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodYear   = "year"
	Period30Days = "30days"
)

// ValidAnalyticsPeriod reports whether p is an accepted analytics period
func ValidAnalyticsPeriod(p string) bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear, Period30Days:
		return true
	}
	return false
}

// DailySales is one point of the sales chart
type DailySales struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"orderCount"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopItem is a best-selling menu item within an analytics period
type TopItem struct {
	ID         string          `json:"_id,omitempty"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	OrderCount int             `json:"orderCount"`
}

// Analytics is the aggregate report for a period
type Analytics struct {
	Period         string          `json:"period"`
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	AverageOrder   decimal.Decimal `json:"averageOrderValue"`
	OrdersByStatus map[string]int  `json:"ordersByStatus,omitempty"`
	SalesByDay     []DailySales    `json:"salesByDay,omitempty"`
	TopItems       []TopItem       `json:"topItems,omitempty"`
}
