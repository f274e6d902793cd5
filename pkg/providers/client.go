// Package providers fetches raw job payloads from configured provider
// endpoints. Provider identity always comes from configuration, never from
// inspecting the payload or the URL.
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	// DefaultTimeout is the default request timeout
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024
)

// Endpoint is one configured provider source.
type Endpoint struct {
	// Name is the provider identity the normalization registry dispatches on.
	Name string
	URL  string
}

// ParseEndpoints parses "name=url" pairs from configuration.
func ParseEndpoints(pairs []string) ([]Endpoint, error) {
	endpoints := make([]Endpoint, 0, len(pairs))
	for _, pair := range pairs {
		name, url, ok := strings.Cut(pair, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid provider endpoint %q, expected name=url", pair)
		}
		endpoints = append(endpoints, Endpoint{Name: name, URL: url})
	}
	return endpoints, nil
}

// Client fetches provider payloads with a timeout and a response size cap.
type Client struct {
	client *http.Client
	logger ectologger.Logger
}

// Config holds provider client configuration
type Config struct {
	Timeout         time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// DefaultConfig returns default provider client configuration
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
}

// NewClient creates a new provider client
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    cfg.MaxIdleConns,
				IdleConnTimeout: cfg.IdleConnTimeout,
			},
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves the raw payload from one provider endpoint.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "ProviderClient.Fetch")
	defer span.End()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for provider %q: %w", endpoint.Name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ProviderFetchFailures.WithLabelValues(endpoint.Name).Inc()
		c.logger.WithContext(ctx).WithError(err).WithField("provider", endpoint.Name).Error("provider request failed")
		return nil, fmt.Errorf("fetch provider %q: %w", endpoint.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderFetchFailures.WithLabelValues(endpoint.Name).Inc()
		return nil, fmt.Errorf("fetch provider %q: unexpected status %d", endpoint.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		metrics.ProviderFetchFailures.WithLabelValues(endpoint.Name).Inc()
		return nil, fmt.Errorf("read provider %q response: %w", endpoint.Name, err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("provider %q response too large: max %d bytes", endpoint.Name, MaxResponseSize)
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"provider":    endpoint.Name,
		"status_code": resp.StatusCode,
		"bytes":       len(body),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("fetched provider payload")

	return body, nil
}
