package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the SDC API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// SDC operation names
const (
	OpForecastPackage = "TForecastPackage"
	OpSearchPackages  = "TSearchPackages"
	OpSearchOrders    = "TSearchOrders"
	OpCreateOrder     = "TCreateOrder"
	OpConfirmOrder    = "TConfirmOrder"
	OpDeleteOrder     = "TDeleteOrder"
)

var (
	// ErrUnavailable indicates the warehouse API could not be reached
	ErrUnavailable = errors.New("warehouse: API unavailable")
	// ErrRequestFailed indicates the API answered with an HTTP error status
	ErrRequestFailed = errors.New("warehouse: request failed")
	// ErrInvalidResponse indicates a response body without the expected envelope
	ErrInvalidResponse = errors.New("warehouse: invalid response")
)

// Client talks to the JPD cloud warehouse SDC API. All operations share
// a single endpoint; the operation name travels in the query string and
// credentials travel in the request body.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a warehouse API client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// WarehouseID returns the configured warehouse identifier
func (c *Client) WarehouseID() int {
	return c.config.WarehouseID
}

// DelivID returns the configured delivery line identifier
func (c *Client) DelivID() int {
	return c.config.DelivID
}

// Call performs one SDC operation and decodes the response envelope.
// Business-level failures are reported through the envelope, not as a
// Go error; errors are reserved for transport and decoding problems.
func (c *Client) Call(ctx context.Context, operation string, data any) (*Envelope, error) {
	payload := map[string]any{
		"login_email":    c.config.Email,
		"login_password": c.config.Password,
		"data":           data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("warehouse: failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/json.php?Service=SDC&Operation=%s",
		c.config.BaseURL, url.QueryEscape(operation))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("warehouse: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("warehouse request", zap.String("operation", operation))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("warehouse: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	var envelope Envelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if envelope.OperationResult.Request.IsValid == "" {
		return nil, fmt.Errorf("%w: missing OperationResult", ErrInvalidResponse)
	}

	c.logger.Debug("warehouse response",
		zap.String("operation", operation),
		zap.Bool("valid", envelope.Valid()),
		zap.String("result", envelope.OperationResult.Result.Result),
	)

	return &envelope, nil
}
