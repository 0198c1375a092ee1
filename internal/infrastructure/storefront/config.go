package storefront

import (
	"errors"
	"strings"
)

// Config validation errors
var (
	ErrMissingStore   = errors.New("storefront: store is required")
	ErrInvalidTimeout = errors.New("storefront: timeout must be positive")
)

// Config holds the Shopify admin API credentials and settings
type Config struct {
	// Store is the shop handle. A bare handle gets ".myshopify.com"
	// appended; a full hostname is used as-is.
	Store string

	// AccessToken is the admin API access token
	AccessToken string

	// APIVersion is the admin API version segment, e.g. 2026-01
	APIVersion string

	// BaseURL overrides the https://{host} origin derived from Store.
	// Leave empty outside of tests.
	BaseURL string

	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int

	// AllowInsecureFallback permits a single retry with TLS certificate
	// verification disabled after a verification failure. Local
	// development only.
	AllowInsecureFallback bool
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	if c.Store == "" {
		return ErrMissingStore
	}
	if c.TimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Host returns the full shop hostname
func (c *Config) Host() string {
	if strings.Contains(c.Store, ".") {
		return c.Store
	}
	return c.Store + ".myshopify.com"
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		APIVersion:     "2026-01",
		TimeoutSeconds: 30,
	}
}
