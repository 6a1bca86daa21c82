package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultSessionCookie = "better-auth.session_token"
	instrumentsPath      = "/api/instruments"
)

// ErrUnauthenticated is matched by API errors caused by the route guard
// redirecting a request without a session.
var ErrUnauthenticated = errors.New("authentication required")

// APIError is a non-2xx answer from the catalog service. Message holds the
// service's {"error": ...} text when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API returned status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || (e.StatusCode >= 300 && e.StatusCode < 400) {
		return ErrUnauthenticated
	}
	return nil
}

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL       string
	sessionCookie string
	sessionToken  string
	httpClient    *http.Client
}

// NewClient creates a client with a 10 second timeout that never follows
// redirects.
func NewClient(baseURL string) *Client {
	return NewClientWithHTTPClient(baseURL, &http.Client{
		Timeout: 10 * time.Second,
	})
}

// NewClientWithHTTPClient creates a client on top of a custom HTTP client (for testing).
// Redirect following is disabled on a copy when the given client has no policy.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := *httpClient
	if hc.CheckRedirect == nil {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Client{
		baseURL:       baseURL,
		sessionCookie: DefaultSessionCookie,
		httpClient:    &hc,
	}
}

func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetSession attaches a session cookie to every request. An empty name keeps
// the default cookie name.
func (c *Client) SetSession(cookieName, token string) {
	if cookieName != "" {
		c.sessionCookie = cookieName
	}
	c.sessionToken = token
}

func (c *Client) List(ctx context.Context) ([]domain.Instrument, error) {
	var records []domain.Instrument
	if err := c.do(ctx, http.MethodGet, instrumentsPath, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.Instrument{}
	}
	return records, nil
}

func (c *Client) Get(ctx context.Context, id string) (*domain.Instrument, error) {
	var inst domain.Instrument
	if err := c.do(ctx, http.MethodGet, instrumentPath(id), nil, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (c *Client) Create(ctx context.Context, form domain.InstrumentForm) (*domain.Instrument, error) {
	var inst domain.Instrument
	if err := c.do(ctx, http.MethodPost, instrumentsPath, form, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (c *Client) Update(ctx context.Context, id string, form domain.InstrumentForm) (*domain.Instrument, error) {
	var inst domain.Instrument
	if err := c.do(ctx, http.MethodPut, instrumentPath(id), form, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

// Delete removes a record and returns it as the service reported it.
func (c *Client) Delete(ctx context.Context, id string) (*domain.Instrument, error) {
	var inst domain.Instrument
	if err := c.do(ctx, http.MethodDelete, instrumentPath(id), nil, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (c *Client) ReplaceAll(ctx context.Context, records []domain.Instrument) error {
	if records == nil {
		records = []domain.Instrument{}
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPut, instrumentsPath, records, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return errors.New("bulk replace was not acknowledged")
	}
	return nil
}

func instrumentPath(id string) string {
	return instrumentsPath + "/" + url.PathEscape(id)
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: c.sessionCookie, Value: c.sessionToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: "Authentication required"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if data, readErr := io.ReadAll(resp.Body); readErr == nil && json.Unmarshal(data, &eb) == nil {
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
