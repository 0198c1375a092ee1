package storefront

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from the admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrUnavailable indicates the admin API could not be reached
var ErrUnavailable = errors.New("storefront: API unavailable")

// GraphQLError is one error entry in a GraphQL response
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse is the top-level GraphQL response shape
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// ErrorMessages joins all GraphQL error messages
func (r *GraphQLResponse) ErrorMessages() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Client talks to the Shopify admin API, both REST and GraphQL.
// Responses are returned as raw bytes; callers decode into their own
// types. HTTP error statuses are not turned into Go errors because the
// admin API reports failures as JSON bodies the caller inspects.
type Client struct {
	config     *Config
	httpClient *http.Client

	// insecureClient is non-nil only when the config allows the TLS
	// verification fallback; it is used for at most one retry per request
	insecureClient *http.Client

	logger *zap.Logger
}

// NewClient creates an admin API client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := time.Duration(config.TimeoutSeconds) * time.Second

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}

	if config.AllowInsecureFallback {
		c.insecureClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}

	return c, nil
}

// Get performs a REST GET against the admin API
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, endpoint, nil)
}

// Post performs a REST POST against the admin API
func (c *Client) Post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	return c.doRequest(ctx, http.MethodPost, endpoint, body)
}

// Put performs a REST PUT against the admin API
func (c *Client) Put(ctx context.Context, endpoint string, body any) ([]byte, error) {
	return c.doRequest(ctx, http.MethodPut, endpoint, body)
}

// GraphQL executes a query against the admin GraphQL endpoint
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error) {
	payload := map[string]any{"query": query}
	if variables != nil {
		payload["variables"] = variables
	}

	body, err := c.doRequest(ctx, http.MethodPost, "graphql.json", payload)
	if err != nil {
		return nil, err
	}

	var resp GraphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("storefront: failed to decode GraphQL response: %w", err)
	}
	return &resp, nil
}

// origin returns the API origin, honoring the test override
func (c *Client) origin() string {
	if c.config.BaseURL != "" {
		return strings.TrimSuffix(c.config.BaseURL, "/")
	}
	return "https://" + c.config.Host()
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("storefront: failed to encode request: %w", err)
		}
	}

	url := fmt.Sprintf("%s/admin/api/%s/%s", c.origin(), c.config.APIVersion, endpoint)

	send := func(client *http.Client) ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("storefront: failed to create request: %w", err)
		}
		req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("storefront: failed to read response: %w", err)
		}
		return respBody, nil
	}

	respBody, err := send(c.httpClient)
	if err == nil {
		return respBody, nil
	}

	if c.insecureClient != nil && isCertVerificationError(err) {
		c.logger.Warn("TLS certificate verification failed, retrying without verification",
			zap.String("endpoint", endpoint))
		respBody, retryErr := send(c.insecureClient)
		if retryErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, retryErr)
		}
		return respBody, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// isCertVerificationError reports whether err stems from TLS certificate
// verification rather than some other transport failure
func isCertVerificationError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostnameErr x509.HostnameError
	return errors.As(err, &hostnameErr)
}
