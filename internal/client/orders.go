package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ashendes/restaurant-admin/internal/models"
)

// GetOrders lists the restaurant's orders. Status and date filters are sent
// to the API; SearchTerm is applied by the caller.
func (c *Client) GetOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	query := map[string]string{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if !filter.StartDate.IsZero() {
		query["startDate"] = filter.StartDate.UTC().Format(time.RFC3339)
	}
	if !filter.EndDate.IsZero() {
		query["endDate"] = filter.EndDate.UTC().Format(time.RFC3339)
	}

	cl := get("orders", "/orders")
	cl.query = query

	var orders []models.Order
	body, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	if err := decodeList(body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, get("orders", "/orders/"+url.PathEscape(id)), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus asks the API to move an order to req.Status and returns the
// server's updated order
func (c *Client) UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Order, error) {
	var order models.Order
	err := c.do(ctx, call{
		method:   http.MethodPut,
		resource: "orders",
		path:     "/orders/" + url.PathEscape(id) + "/status",
		body:     req,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
