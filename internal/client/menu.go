package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ashendes/restaurant-admin/internal/models"
)

// ListMenuItems returns all menu items of a restaurant
func (c *Client) ListMenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	cl := get("menu", "/menu")
	cl.query = map[string]string{"restaurant": restaurantID}

	body, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	var items []models.MenuItem
	if err := decodeList(body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetMenuItem fetches one menu item
func (c *Client) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.do(ctx, get("menu", "/menu/"+url.PathEscape(id)), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMenuItem adds a menu item
func (c *Client) CreateMenuItem(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	var created models.MenuItem
	if err := c.do(ctx, call{method: http.MethodPost, resource: "menu", path: "/menu", body: item}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateMenuItem replaces a menu item's fields
func (c *Client) UpdateMenuItem(ctx context.Context, id string, item models.MenuItem) (*models.MenuItem, error) {
	var updated models.MenuItem
	err := c.do(ctx, call{method: http.MethodPut, resource: "menu", path: "/menu/" + url.PathEscape(id), body: item}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMenuItem removes a menu item
func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	_, err := c.send(ctx, call{method: http.MethodDelete, resource: "menu", path: "/menu/" + url.PathEscape(id)})
	return err
}

// ToggleMenuItemAvailability flips isAvailable and returns the updated item
func (c *Client) ToggleMenuItemAvailability(ctx context.Context, id string) (*models.MenuItem, error) {
	var updated models.MenuItem
	err := c.do(ctx, call{
		method:   http.MethodPut,
		resource: "menu",
		path:     "/menu/" + url.PathEscape(id) + "/toggle-availability",
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
