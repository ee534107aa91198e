// Package client talks to the school administration REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-print"
	admin "github.com/goliatone/go-school-admin"
	"github.com/google/uuid"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:8000/api/admin"

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries the per call correlation id.
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the bearer token for authenticated calls.
// admin.TokenStore satisfies it.
type TokenSource interface {
	Read(ctx context.Context) (string, error)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTokenSource sets where authenticated calls read the token from.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.tokens = src
	}
}

// WithLogger sets the logger.
func WithLogger(logger admin.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPhoneRegion sets the default region for mobile number validation.
func WithPhoneRegion(region string) Option {
	return func(c *Client) {
		if region != "" {
			c.phoneRegion = strings.ToUpper(region)
		}
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	tokens      TokenSource
	logger      admin.Logger
	phoneRegion string
	requestID   func() string
}

var (
	_ admin.SessionProber       = (*Client)(nil)
	_ admin.CredentialExchanger = (*Client)(nil)
)

// New returns a client rooted at baseURL, or DefaultBaseURL when empty.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}

	c := &Client{
		baseURL:     u,
		http:        &http.Client{Timeout: DefaultTimeout},
		logger:      nopLogger{},
		phoneRegion: DefaultPhoneRegion,
		requestID:   func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// AssetURL resolves a photo path returned by the API against the API host.
func (c *Client) AssetURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL.Scheme + "://" + c.baseURL.Host + path
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	token       string
	auth        bool
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", ErrNoToken
	}
	token, err := c.tokens.Read(ctx)
	if err != nil {
		if errors.Is(err, admin.ErrTokenNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (c *Client) jsonBody(payload any) (io.Reader, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(raw), nil
}

// do runs req and decodes a 2xx JSON body into out when out is not nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	token := req.token
	if req.auth && token == "" {
		var err error
		if token, err = c.token(ctx); err != nil {
			return err
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.BaseURL()+req.path, req.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := c.requestID()
	httpReq.Header.Set(RequestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request id=%s %s %s", requestID, req.method, req.path)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := newError(res.StatusCode, body)
		c.logger.Warn("api request id=%s %s %s failed: %v", requestID, req.method, req.path, apiErr)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.path, err)
	}

	c.logger.Debug("api response id=%s status=%d body=%s", requestID, res.StatusCode, print.MaybePrettyJSON(out))
	return nil
}

const maxResponseBytes = 4 << 20

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
