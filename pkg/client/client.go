// Package client is a Go client for the simheat render API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/simheat/pkg/errors"
)

const Version = "0.1.0"

// ErrInvalidConfig is returned by NewClient for an unusable base URL.
var ErrInvalidConfig = errors.New(errors.ErrCodeConfigInvalid, "invalid client configuration")

func errInvalidArgument(msg string) error {
	return errors.New(errors.ErrCodeBadRequest, msg)
}

// Logger defines the logging interface used by the Client
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client talks to a simheat server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	heatmaps     *HeatmapsClient
	heatmapsOnce sync.Once
}

// APIError represents an error response from the API
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("simheat: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidConfig
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid baseURL: %v", ErrInvalidConfig, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: baseURL scheme must be http or https", ErrInvalidConfig)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		userAgent:    fmt.Sprintf("simheat-go-client/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Heatmaps returns the render sub-client (lazy initialization, thread-safe)
func (c *Client) Heatmaps() *HeatmapsClient {
	c.heatmapsOnce.Do(func() {
		c.heatmaps = &HeatmapsClient{client: c}
	})
	return c.heatmaps
}

// request describes one call. body is rebuilt for every attempt.
type request struct {
	method      string
	path        string
	contentType string
	accept      string
	body        func() (io.Reader, error)
}

// do performs an HTTP request with retry logic and returns the response body
// and headers of the final attempt.
func (c *Client) do(ctx context.Context, r request) ([]byte, http.Header, error) {
	path := r.path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("Retry attempt %d after %v", attempt, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}

		var bodyReader io.Reader
		if r.body != nil {
			br, err := r.body()
			if err != nil {
				return nil, nil, err
			}
			bodyReader = br
		}
		req, err := http.NewRequestWithContext(ctx, r.method, fullURL, bodyReader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.New().String()
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		accept := r.accept
		if accept == "" {
			accept = "application/json"
		}
		req.Header.Set("Accept", accept)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)
		if err != nil {
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			continue
		}
		c.logger.Debugf("%s %s %d (%v)", r.method, path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.retryMax {
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				c.logger.Infof("Rate limited, retrying after %d seconds", seconds)
				select {
				case <-time.After(time.Duration(seconds) * time.Second):
					lastErr = decodeAPIError(resp.StatusCode, requestID, respBody)
					continue
				case <-ctx.Done():
					return nil, nil, ctx.Err()
				}
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := decodeAPIError(resp.StatusCode, requestID, respBody)
			lastErr = apiErr
			if apiErr.IsServerError() {
				continue
			}
			return nil, nil, apiErr
		}
		return respBody, resp.Header, nil
	}
	return nil, nil, lastErr
}

func decodeAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	if len(body) == 0 {
		return apiErr
	}
	var errResp struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Detail    string `json:"detail"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Code = errResp.Code
		apiErr.Message = errResp.Message
		apiErr.Detail = errResp.Detail
		if errResp.RequestID != "" {
			apiErr.RequestID = errResp.RequestID
		}
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}

// doJSON sends body as JSON (when non-nil) and decodes the response into
// result (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}) error {
	r := request{method: method, path: path}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		r.contentType = "application/json"
		r.body = func() (io.Reader, error) { return bytes.NewReader(payload), nil }
	}
	respBody, _, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	// 0-25% jitter
	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(quarter))
	}
	return backoff
}

//Personal.AI order the ending
