package models

import "github.com/shopspring/decimal"

// MenuItem is a dish offered by a restaurant
type MenuItem struct {
	ID              string          `json:"_id,omitempty"`
	Restaurant      string          `json:"restaurant,omitempty"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category" binding:"required"`
	Image           string          `json:"image,omitempty"`
	IsAvailable     bool            `json:"isAvailable"`
	IsVegetarian    bool            `json:"isVegetarian"`
	IsVegan         bool            `json:"isVegan"`
	IsGlutenFree    bool            `json:"isGlutenFree"`
	PreparationTime int             `json:"preparationTime,omitempty"`
	OrderCount      int             `json:"orderCount,omitempty"`
}
