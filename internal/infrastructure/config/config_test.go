package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"BRIDGE_APP_NAME":                        os.Getenv("BRIDGE_APP_NAME"),
		"BRIDGE_APP_ENV":                         os.Getenv("BRIDGE_APP_ENV"),
		"BRIDGE_APP_PORT":                        os.Getenv("BRIDGE_APP_PORT"),
		"BRIDGE_JPD_BASE_URL":                    os.Getenv("BRIDGE_JPD_BASE_URL"),
		"BRIDGE_JPD_EMAIL":                       os.Getenv("BRIDGE_JPD_EMAIL"),
		"BRIDGE_JPD_PASSWORD":                    os.Getenv("BRIDGE_JPD_PASSWORD"),
		"BRIDGE_JPD_WAREHOUSE_ID":                os.Getenv("BRIDGE_JPD_WAREHOUSE_ID"),
		"BRIDGE_SHOPIFY_STORE":                   os.Getenv("BRIDGE_SHOPIFY_STORE"),
		"BRIDGE_SHOPIFY_ACCESS_TOKEN":            os.Getenv("BRIDGE_SHOPIFY_ACCESS_TOKEN"),
		"BRIDGE_SHOPIFY_ALLOW_INSECURE_FALLBACK": os.Getenv("BRIDGE_SHOPIFY_ALLOW_INSECURE_FALLBACK"),
		"BRIDGE_BRIDGE_ADMIN_PASSWORD":           os.Getenv("BRIDGE_BRIDGE_ADMIN_PASSWORD"),
		"BRIDGE_BRIDGE_DEFAULT_SHIPPING_RATE":    os.Getenv("BRIDGE_BRIDGE_DEFAULT_SHIPPING_RATE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "helpshipping", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "5001", cfg.App.Port)
		assert.Equal(t, "https://biz.cloudwh.jp", cfg.JPD.BaseURL)
		assert.Equal(t, 1, cfg.JPD.WarehouseID)
		assert.Equal(t, 40, cfg.JPD.DelivID)
		assert.Equal(t, 30, cfg.JPD.TimeoutSeconds)
		assert.Equal(t, "2026-01", cfg.Shopify.APIVersion)
		assert.False(t, cfg.Shopify.AllowInsecureFallback)
		assert.Equal(t, "custom", cfg.Bridge.MetafieldNamespace)
		assert.Equal(t, "goyoutati_id", cfg.Bridge.MemberCodeKey)
		assert.Equal(t, "shipping_rate", cfg.Bridge.ShippingRateKey)
		assert.Equal(t, []string{"+81", "+886"}, cfg.Bridge.PhonePrefixes)
	})

	t.Run("loads values from environment variables with BRIDGE prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_PORT", "9000")
		os.Setenv("BRIDGE_JPD_EMAIL", "ops@example.com")
		os.Setenv("BRIDGE_JPD_WAREHOUSE_ID", "2")
		os.Setenv("BRIDGE_SHOPIFY_STORE", "teststore")
		os.Setenv("BRIDGE_BRIDGE_DEFAULT_SHIPPING_RATE", "350")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "ops@example.com", cfg.JPD.Email)
		assert.Equal(t, 2, cfg.JPD.WarehouseID)
		assert.Equal(t, "teststore", cfg.Shopify.Store)
		assert.Equal(t, 350, cfg.Bridge.DefaultShippingRate)
	})

	t.Run("rejects insecure TLS fallback in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_JPD_EMAIL", "ops@example.com")
		os.Setenv("BRIDGE_JPD_PASSWORD", "secret")
		os.Setenv("BRIDGE_SHOPIFY_STORE", "teststore")
		os.Setenv("BRIDGE_SHOPIFY_ACCESS_TOKEN", "shpat_test")
		os.Setenv("BRIDGE_BRIDGE_ADMIN_PASSWORD", "admin-secret")
		os.Setenv("BRIDGE_SHOPIFY_ALLOW_INSECURE_FALLBACK", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "allow_insecure_fallback")
	})

	t.Run("requires admin password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_JPD_EMAIL", "ops@example.com")
		os.Setenv("BRIDGE_JPD_PASSWORD", "secret")
		os.Setenv("BRIDGE_SHOPIFY_STORE", "teststore")
		os.Setenv("BRIDGE_SHOPIFY_ACCESS_TOKEN", "shpat_test")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "admin_password")
	})
}
