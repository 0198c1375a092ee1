package warehouse

import "errors"

// Config validation errors
var (
	ErrMissingBaseURL = errors.New("warehouse: base URL is required")
	ErrInvalidTimeout = errors.New("warehouse: timeout must be positive")
)

// Config holds the JPD cloud warehouse API credentials and settings
type Config struct {
	// BaseURL is the API origin, e.g. https://biz.cloudwh.jp
	BaseURL string

	// Email and Password authenticate every request; they travel in the
	// request body, not in headers
	Email    string
	Password string

	// WarehouseID selects the physical warehouse packages are forecast into
	WarehouseID int

	// DelivID selects the delivery line used for outbound orders
	DelivID int

	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://biz.cloudwh.jp",
		WarehouseID:    1,
		DelivID:        40,
		TimeoutSeconds: 30,
	}
}
