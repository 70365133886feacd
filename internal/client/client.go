// Package client talks to the restaurant REST API.
//
// Every call goes through a bulkhead and a circuit breaker and is never
// retried automatically; callers decide whether to try again.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ashendes/restaurant-admin/internal/metrics"
	"github.com/ashendes/restaurant-admin/internal/models"
	"github.com/ashendes/restaurant-admin/internal/patterns"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TokenSource supplies the bearer token for authenticated calls
type TokenSource interface {
	Token() (string, error)
}

// Config holds client settings
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	BulkheadSize int
}

// Client is a restaurant API client
type Client struct {
	http     *resty.Client
	tokens   TokenSource
	circuit  *patterns.CircuitBreakerWrapper
	bulkhead *patterns.Bulkhead
	timeout  time.Duration
	logger   log.FieldLogger
}

// New creates a client; tokens may be nil when only public endpoints are used
func New(cfg Config, tokens TokenSource, logger log.FieldLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = patterns.DefaultTimeout
	}
	if cfg.BulkheadSize <= 0 {
		cfg.BulkheadSize = 10
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetHeader("Accept", "application/json").
			SetRetryCount(0), // failures surface to the caller as-is
		tokens: tokens,
		circuit: patterns.NewCircuitBreaker("RestaurantAPI", "restaurant-admin", func(err error) bool {
			return !countsAgainstBreaker(err)
		}),
		bulkhead: patterns.NewBulkhead(cfg.BulkheadSize, "restaurant-api", "restaurant-admin"),
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// CircuitState returns the breaker state name and numeric value
func (c *Client) CircuitState() (string, int) {
	return c.circuit.GetState(), c.circuit.GetStateValue()
}

type call struct {
	method   string
	resource string
	path     string
	query    map[string]string
	body     interface{}
	public   bool
	timeout  time.Duration
}

// send performs one call and returns the raw body of a successful response
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	timeout := c.timeout
	if cl.timeout > 0 {
		timeout = cl.timeout
	}
	ctx, cancel := patterns.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.New().String())

	if !cl.public {
		if c.tokens == nil {
			return nil, fmt.Errorf("%s %s: no token source configured", cl.method, cl.path)
		}
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
		}
		req.SetAuthToken(token)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}
	if len(cl.query) > 0 {
		req.SetQueryParams(cl.query)
	}

	var body []byte
	err := c.bulkhead.Execute(ctx, func() error {
		_, cbErr := c.circuit.Execute(func() (interface{}, error) {
			start := time.Now()
			resp, httpErr := req.Execute(cl.method, cl.path)
			if httpErr != nil {
				metrics.ObserveAPICall(cl.method, cl.resource, 0, time.Since(start))
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}
			metrics.ObserveAPICall(cl.method, cl.resource, resp.StatusCode(), time.Since(start))

			var envelope models.APIResponse
			decodeErr := json.Unmarshal(resp.Body(), &envelope)

			if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
				apiErr := &APIError{StatusCode: resp.StatusCode(), Method: cl.method, Path: cl.path}
				if decodeErr == nil {
					apiErr.Message = envelope.ErrorMessage()
				}
				return nil, apiErr
			}
			if decodeErr != nil {
				return nil, fmt.Errorf("failed to parse response: %w", decodeErr)
			}
			if !envelope.Success {
				return nil, &APIError{
					StatusCode: resp.StatusCode(),
					Method:     cl.method,
					Path:       cl.path,
					Message:    envelope.ErrorMessage(),
				}
			}

			body = resp.Body()
			return nil, nil
		})
		return cbErr
	})
	if err != nil {
		c.logger.WithFields(log.Fields{
			"method":   cl.method,
			"resource": cl.resource,
			"path":     cl.path,
		}).WithError(err).Warn("Restaurant API call failed")
		return nil, err
	}

	return body, nil
}

// do performs a call and decodes the envelope's data field into out
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	body, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	var envelope models.APIResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%s %s: response has no data", cl.method, cl.path)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cl.resource, err)
	}
	return nil
}

func get(resource, path string) call {
	return call{method: http.MethodGet, resource: resource, path: path}
}
