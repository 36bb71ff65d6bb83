package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/glorin2500/Sentinel-sub000/internal/circuitbreaker"
)

// Config holds the configuration for connecting to the Sentinel platform.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
	UserID string // Stable user ID attached to scans for history context
}

// SentinelClient is a pure HTTP client for the Sentinel platform API.
// A circuit breaker per endpoint keeps a flapping API from hanging
// every tool call behind a 30 second timeout.
type SentinelClient struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

// NewSentinelClient creates a new client for the Sentinel platform.
func NewSentinelClient(cfg Config) *SentinelClient {
	return &SentinelClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: circuitbreaker.New(5, 30*time.Second),
	}
}

// apiError represents an error response from the platform.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the platform and returns the response body.
func (c *SentinelClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	if !c.breaker.Allow(method + " " + path) {
		return nil, fmt.Errorf("API temporarily unavailable (circuit open), try again shortly")
	}

	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure(method + " " + path)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure(method + " " + path)
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		c.breaker.RecordFailure(method + " " + path)
	} else {
		c.breaker.RecordSuccess(method + " " + path)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// CheckPayee scans a payee identifier and returns the risk verdict.
func (c *SentinelClient) CheckPayee(ctx context.Context, identifier string, amount *float64) (json.RawMessage, error) {
	body := map[string]any{
		"identifier": identifier,
	}
	if amount != nil {
		body["amount"] = *amount
	}
	if c.cfg.UserID != "" {
		body["userId"] = c.cfg.UserID
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/scan", nil, body)
}

// GetPayee returns the reference data status and latest verdict for a VPA.
func (c *SentinelClient) GetPayee(ctx context.Context, vpa string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/payees/"+url.PathEscape(vpa), nil, nil)
}

// ListHistory returns recorded scans for a VPA.
func (c *SentinelClient) ListHistory(ctx context.Context, vpa string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/payees/"+url.PathEscape(vpa)+"/history", q, nil)
}

// FileReport files a community fraud report against a payee.
func (c *SentinelClient) FileReport(ctx context.Context, identifier, reason, fraudType, severity string) (json.RawMessage, error) {
	body := map[string]string{
		"identifier": identifier,
		"reason":     reason,
	}
	if fraudType != "" {
		body["fraudType"] = fraudType
	}
	if severity != "" {
		body["severity"] = severity
	}
	if c.cfg.UserID != "" {
		body["reporterId"] = c.cfg.UserID
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/reports", nil, body)
}

// GetStats returns platform-wide statistics.
func (c *SentinelClient) GetStats(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/stats", nil, nil)
}
