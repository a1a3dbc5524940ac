package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"climate-compare/pkg/logging"
	"climate-compare/pkg/metrics"
)

// Config holds upstream HTTP client configuration
type Config struct {
	Timeout         time.Duration
	UserAgent       string
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	MaxBodyBytes    int64
}

// DefaultConfig returns the client settings used when none are configured
func DefaultConfig() *Config {
	return &Config{
		Timeout:         60 * time.Second,
		UserAgent:       "climate-compare/1.0",
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
		MaxBodyBytes:    256 << 20,
	}
}

// Client wraps http.Client with logging and metrics for the open data providers
type Client struct {
	http    *http.Client
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	config  *Config
}

// NewClient creates a new provider client
func NewClient(cfg *Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxBodyBytes <= 0 {
		limited := *cfg
		limited.MaxBodyBytes = DefaultConfig().MaxBodyBytes
		cfg = &limited
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.MaxIdleConns
	transport.IdleConnTimeout = cfg.IdleConnTimeout

	logger.Info(context.Background(), "[PROVIDER_INIT] HTTP provider client configured", logging.Fields{
		"timeout":        cfg.Timeout.String(),
		"max_idle_conns": cfg.MaxIdleConns,
		"user_agent":     cfg.UserAgent,
	})

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger:  logger,
		metrics: metricsCollector,
		config:  cfg,
	}
}

// GetJSON performs a GET request and decodes the JSON response into dest
func (c *Client) GetJSON(ctx context.Context, provider, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", provider, err)
	}
	return c.do(ctx, provider, req, dest)
}

// PostJSON encodes body as JSON, posts it and decodes the JSON response into dest
func (c *Client) PostJSON(ctx context.Context, provider, url string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(ctx, provider, req, dest)
}

// do executes a request with metrics and logging
func (c *Client) do(ctx context.Context, provider string, req *http.Request, dest interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	log := c.logger.With(logging.Fields{
		"provider": provider,
		"url":      req.URL.String(),
	})

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		c.metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())

		log.Debug(ctx, "[PROVIDER_REQUEST] Request executed", logging.Fields{
			"method":      req.Method,
			"duration_ms": duration.Milliseconds(),
		})
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordProviderError(provider, "transport_error")
		log.Error(ctx, "[PROVIDER_ERROR] Request failed", nil, err)
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	// one byte past the limit tells an oversized body from one that fits exactly
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		c.metrics.RecordProviderError(provider, "read_error")
		return fmt.Errorf("failed to read %s response: %w", provider, err)
	}
	c.metrics.ProviderResponseBytes.WithLabelValues(provider).Observe(float64(len(body)))

	if resp.StatusCode >= http.StatusBadRequest {
		c.metrics.RecordProviderError(provider, "http_status")
		httpErr := &HTTPError{
			Provider:   provider,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 512),
		}
		log.Error(ctx, "[PROVIDER_STATUS_ERROR] Provider returned an error status", logging.Fields{
			"status_code": resp.StatusCode,
		}, httpErr)
		return httpErr
	}

	if int64(len(body)) > c.config.MaxBodyBytes {
		c.metrics.RecordProviderError(provider, "response_too_large")
		tooLarge := &ResponseTooLargeError{Provider: provider, Limit: c.config.MaxBodyBytes}
		log.Error(ctx, "[PROVIDER_SIZE_ERROR] Response exceeds size limit", logging.Fields{
			"limit_bytes": c.config.MaxBodyBytes,
		}, tooLarge)
		return tooLarge
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.metrics.RecordProviderError(provider, "decode_error")
		log.Error(ctx, "[PROVIDER_DECODE_ERROR] Failed to decode response", logging.Fields{
			"body_bytes": len(body),
		}, err)
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// HTTPError is returned when a provider answers with a status of 400 or above
type HTTPError struct {
	Provider   string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
}

// IsTransient returns true for rate limiting and server side failures
func (e *HTTPError) IsTransient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ResponseTooLargeError is returned when a successful response body is
// longer than Config.MaxBodyBytes
type ResponseTooLargeError struct {
	Provider string
	Limit    int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("%s response exceeds %d bytes", e.Provider, e.Limit)
}
