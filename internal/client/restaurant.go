package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/ashendes/restaurant-admin/internal/patterns"
)

// RestaurantForOwner returns the first restaurant owned by userID
func (c *Client) RestaurantForOwner(ctx context.Context, userID string) (*models.Restaurant, error) {
	cl := get("restaurants", "/restaurants")
	cl.query = map[string]string{"user": userID}

	body, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	var restaurants []models.Restaurant
	if err := decodeList(body, &restaurants); err != nil {
		return nil, err
	}
	if len(restaurants) == 0 {
		return nil, ErrNoRestaurant
	}
	return &restaurants[0], nil
}

// GetRestaurant fetches a restaurant by id
func (c *Client) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := c.do(ctx, get("restaurants", "/restaurants/"+url.PathEscape(id)), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRestaurant sends changed profile fields, including opening hours
func (c *Client) UpdateRestaurant(ctx context.Context, id string, changes interface{}) (*models.Restaurant, error) {
	var r models.Restaurant
	err := c.do(ctx, call{
		method:   http.MethodPut,
		resource: "restaurants",
		path:     "/restaurants/" + url.PathEscape(id),
		body:     changes,
	}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ToggleRestaurantStatus flips the restaurant between open and closed
func (c *Client) ToggleRestaurantStatus(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := c.do(ctx, call{
		method:   http.MethodPut,
		resource: "restaurants",
		path:     "/restaurants/" + url.PathEscape(id) + "/toggle-status",
	}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetAnalytics fetches the report for period; an empty period means 30 days
func (c *Client) GetAnalytics(ctx context.Context, id, period string) (*models.Analytics, error) {
	if period == "" {
		period = models.Period30Days
	}
	if !models.ValidAnalyticsPeriod(period) {
		return nil, fmt.Errorf("unknown analytics period %q", period)
	}

	cl := get("analytics", "/restaurants/"+url.PathEscape(id)+"/analytics")
	cl.query = map[string]string{"period": period}
	cl.timeout = patterns.SlowServiceTimeout

	var a models.Analytics
	if err := c.do(ctx, cl, &a); err != nil {
		return nil, err
	}
	if a.Period == "" {
		a.Period = period
	}
	return &a, nil
}
