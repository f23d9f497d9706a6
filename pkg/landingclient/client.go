// Package landingclient is a Go client for the CabPool landing API, with form
// state holders mirroring the landing page's registration and feedback forms.
package landingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/types"
)

const defaultTimeout = 10 * time.Second

// ClientInterface is what the forms need from a client.
type ClientInterface interface {
	Register(ctx context.Context, req types.RegistrationCreate) (*types.RegistrationSummary, error)
	SubmitFeedback(ctx context.Context, req types.FeedbackCreate) (*types.FeedbackSummary, error)
}

// APIError is a non-2xx response. Message is the server's human-readable error.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cabpool API returned status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API served at baseURL, e.g. "http://localhost:5000".
// A nil httpClient gets a default with a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Register submits a registration. A duplicate email yields an *APIError with status 409.
func (c *Client) Register(ctx context.Context, req types.RegistrationCreate) (*types.RegistrationSummary, error) {
	var summary types.RegistrationSummary
	if err := c.do(ctx, http.MethodPost, "/api/register", req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) SubmitFeedback(ctx context.Context, req types.FeedbackCreate) (*types.FeedbackSummary, error) {
	var summary types.FeedbackSummary
	if err := c.do(ctx, http.MethodPost, "/api/feedback", req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListFeedback returns the newest feedback first. limit <= 0 uses the server default.
func (c *Client) ListFeedback(ctx context.Context, limit int) ([]types.Feedback, error) {
	path := "/api/feedback"
	if limit > 0 {
		params := url.Values{}
		params.Add("limit", strconv.Itoa(limit))
		path = path + "?" + params.Encode()
	}

	feedback := []types.Feedback{}
	if err := c.do(ctx, http.MethodGet, path, nil, &feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (c *Client) Stats(ctx context.Context) (*types.Stats, error) {
	var stats types.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health calls GET /health, which is not wrapped in the API envelope.
func (c *Client) Health(ctx context.Context) (*types.Health, error) {
	resp, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var health types.Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// do sends body as JSON and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		logger.GetLogger().Debugw("CabPool API request failed",
			"method", method,
			"path", path,
			"statusCode", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// ErrorMessage returns the text a form shows for err.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return MsgNetworkError
}
