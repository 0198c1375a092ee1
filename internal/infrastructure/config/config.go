package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	HTTP    HTTPConfig
	JPD     JPDConfig
	Shopify ShopifyConfig
	Bridge  BridgeConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// JPDConfig holds JPD cloud warehouse API settings
type JPDConfig struct {
	BaseURL        string
	Email          string
	Password       string
	WarehouseID    int
	DelivID        int // delivery line, e.g. 40 = Taiwan air freight
	TimeoutSeconds int
}

// ShopifyConfig holds Shopify admin API settings
type ShopifyConfig struct {
	Store          string // shop handle, without .myshopify.com
	AccessToken    string
	APIVersion     string
	TimeoutSeconds int
	// AllowInsecureFallback permits one retry with TLS verification
	// disabled after a certificate verification failure. Local
	// development only; rejected by validate() in production.
	AllowInsecureFallback bool
}

// BridgeConfig holds forwarding-bridge business settings
type BridgeConfig struct {
	AdminPassword       string
	DefaultShippingRate int    // yen per kg when a member has no rate set
	MetafieldNamespace  string // customer metafield namespace
	MemberCodeKey       string // metafield key holding the G code
	ShippingRateKey     string // metafield key holding the per-kg rate
	CarrierName         string // carrier shown on Shopify fulfillments
	TrackingURLTemplate string // %s is replaced with the tracking number
	PhonePrefixes       []string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with BRIDGE_ prefix (e.g. BRIDGE_JPD_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		JPD: JPDConfig{
			BaseURL:        v.GetString("jpd.base_url"),
			Email:          v.GetString("jpd.email"),
			Password:       v.GetString("jpd.password"),
			WarehouseID:    v.GetInt("jpd.warehouse_id"),
			DelivID:        v.GetInt("jpd.deliv_id"),
			TimeoutSeconds: v.GetInt("jpd.timeout_seconds"),
		},
		Shopify: ShopifyConfig{
			Store:                 v.GetString("shopify.store"),
			AccessToken:           v.GetString("shopify.access_token"),
			APIVersion:            v.GetString("shopify.api_version"),
			TimeoutSeconds:        v.GetInt("shopify.timeout_seconds"),
			AllowInsecureFallback: v.GetBool("shopify.allow_insecure_fallback"),
		},
		Bridge: BridgeConfig{
			AdminPassword:       v.GetString("bridge.admin_password"),
			DefaultShippingRate: v.GetInt("bridge.default_shipping_rate"),
			MetafieldNamespace:  v.GetString("bridge.metafield_namespace"),
			MemberCodeKey:       v.GetString("bridge.member_code_key"),
			ShippingRateKey:     v.GetString("bridge.shipping_rate_key"),
			CarrierName:         v.GetString("bridge.carrier_name"),
			TrackingURLTemplate: v.GetString("bridge.tracking_url_template"),
			PhonePrefixes:       v.GetStringSlice("bridge.phone_prefixes"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "helpshipping"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "5001"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// A single request may chain up to three 30s upstream calls
		cfg.HTTP.WriteTimeout = 100 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.JPD.BaseURL == "" {
		cfg.JPD.BaseURL = "https://biz.cloudwh.jp"
	}
	if cfg.JPD.WarehouseID == 0 {
		cfg.JPD.WarehouseID = 1
	}
	if cfg.JPD.DelivID == 0 {
		cfg.JPD.DelivID = 40
	}
	if cfg.JPD.TimeoutSeconds == 0 {
		cfg.JPD.TimeoutSeconds = 30
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2026-01"
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Bridge.MetafieldNamespace == "" {
		cfg.Bridge.MetafieldNamespace = "custom"
	}
	if cfg.Bridge.MemberCodeKey == "" {
		cfg.Bridge.MemberCodeKey = "goyoutati_id"
	}
	if cfg.Bridge.ShippingRateKey == "" {
		cfg.Bridge.ShippingRateKey = "shipping_rate"
	}
	if cfg.Bridge.CarrierName == "" {
		cfg.Bridge.CarrierName = "SG 速貴專線"
	}
	if cfg.Bridge.TrackingURLTemplate == "" {
		cfg.Bridge.TrackingURLTemplate = "https://www.sgxpress.com/query/?logic_num=%s"
	}
	if len(cfg.Bridge.PhonePrefixes) == 0 {
		// Japan (home country) and Taiwan (destination line)
		cfg.Bridge.PhonePrefixes = []string{"+81", "+886"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.JPD.TimeoutSeconds <= 0 {
		return fmt.Errorf("jpd.timeout_seconds must be positive")
	}
	if c.Shopify.TimeoutSeconds <= 0 {
		return fmt.Errorf("shopify.timeout_seconds must be positive")
	}
	if !strings.Contains(c.Bridge.TrackingURLTemplate, "%s") {
		return fmt.Errorf("bridge.tracking_url_template must contain a %%s placeholder")
	}

	if c.App.Env == "production" {
		if c.Bridge.AdminPassword == "" {
			return fmt.Errorf("bridge.admin_password is required in production")
		}
		if c.JPD.Email == "" || c.JPD.Password == "" {
			return fmt.Errorf("jpd.email and jpd.password are required in production")
		}
		if c.Shopify.Store == "" || c.Shopify.AccessToken == "" {
			return fmt.Errorf("shopify.store and shopify.access_token are required in production")
		}
		// The insecure TLS retry is a local-development escape hatch only
		if c.Shopify.AllowInsecureFallback {
			return fmt.Errorf("shopify.allow_insecure_fallback must be false in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
