package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"pricetrail/internal/domain/shared"

	"github.com/rs/zerolog"
)

// Client talks to a PocketBase-shaped record service: per-collection CRUD
// with filter/sort query parameters, a password auth exchange and a
// liveness endpoint. It implements outbound.RecordStore and
// outbound.AuthAPI; the bearer token is attached by the auth manager via
// SetToken and never interpreted here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

type ClientParams struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewClient creates a new record service client
func NewClient(params ClientParams) *Client {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimRight(params.BaseURL, "/"),
		logger:  params.Logger.With().Str("component", "record_client").Logger(),
	}
}

// SetToken attaches a bearer token to subsequent requests. An empty token
// detaches it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// requestError is a non-2xx response that did not map to a sentinel error.
// Callers inspect the structured payload to classify field-level failures.
type requestError struct {
	StatusCode int
	Message    string
	Data       map[string]fieldDetail
}

type fieldDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *requestError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// apiErrorBody is the remote error envelope. Newer service versions use
// "status", older ones "code"; both are accepted.
type apiErrorBody struct {
	Status  int                    `json:"status"`
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]fieldDetail `json:"data"`
}

// send performs one JSON request against the service. Transport failures
// map to ErrNetworkUnreachable, 401/403 to ErrUnauthorized and 404 to
// ErrRecordNotFound; any other non-2xx status surfaces as *requestError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", token)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("Sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("Request transport failure")
		return fmt.Errorf("%w: %v", shared.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return shared.ErrUnauthorized
	case http.StatusNotFound:
		return shared.ErrRecordNotFound
	}

	var apiErr apiErrorBody
	if err := json.Unmarshal(respBody, &apiErr); err != nil {
		return &requestError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return &requestError{
		StatusCode: resp.StatusCode,
		Message:    apiErr.Message,
		Data:       apiErr.Data,
	}
}

// remoteRejected converts an unclassified request failure into the
// server-rejection error surfaced to callers
func remoteRejected(err *requestError) error {
	return &shared.RemoteError{Status: err.StatusCode, Detail: err.Message}
}
