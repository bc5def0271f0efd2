package googleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/authgate/prehook/identityplatform"
	"github.com/authgate/prehook/ratelimit"
)

const maxErrorBody = 4096 // cap on error response body decoding

// emulatorOwnerToken is the well-known bearer token the auth emulator
// accepts for admin calls.
const emulatorOwnerToken = "owner"

// TokenSource supplies bearer tokens for admin API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// compile-time interface check.
var _ identityplatform.ConfigService = (*Client)(nil)

// Client talks to the Identity Toolkit admin API. The blocking-functions
// section lives inside the project config resource; reads fetch the whole
// resource and writes patch only the blockingFunctions field.
type Client struct {
	cfg     Config
	tokens  TokenSource
	client  *http.Client
	limiter *ratelimit.Limiter
}

// New creates an admin API client. tokens may be nil when an emulator host
// is configured.
func New(cfg Config, tokens TokenSource) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://identitytoolkit.googleapis.com"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Client{
		cfg:     cfg,
		tokens:  tokens,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: ratelimit.New(),
	}
}

// projectConfig is the slice of the project config resource this client
// reads and patches.
type projectConfig struct {
	Name              string                           `json:"name,omitempty"`
	BlockingFunctions *identityplatform.BlockingConfig `json:"blockingFunctions,omitempty"`
}

// APIError is a non-2xx response from the admin API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("googleapi: HTTP %d: %s", e.StatusCode, e.Message)
}

// GetBlockingConfig fetches the project config resource and returns its
// blocking-functions section. Projects with no blocking functions yield an
// empty, non-nil config.
func (c *Client) GetBlockingConfig(ctx context.Context, projectID string) (*identityplatform.BlockingConfig, error) {
	if err := c.limiter.Wait(ctx, projectID, c.cfg.RateLimit); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, c.configURL(projectID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var pc projectConfig
	if err := json.NewDecoder(resp.Body).Decode(&pc); err != nil {
		return nil, fmt.Errorf("googleapi: decode config: %w", err)
	}

	if pc.BlockingFunctions == nil {
		return &identityplatform.BlockingConfig{}, nil
	}
	return pc.BlockingFunctions, nil
}

// SetBlockingConfig patches the blocking-functions section of the project
// config resource, leaving every other section untouched via the update mask.
func (c *Client) SetBlockingConfig(ctx context.Context, projectID string, cfg *identityplatform.BlockingConfig) error {
	if err := c.limiter.Wait(ctx, projectID, c.cfg.RateLimit); err != nil {
		return err
	}

	body, err := json.Marshal(projectConfig{BlockingFunctions: cfg})
	if err != nil {
		return fmt.Errorf("googleapi: marshal config: %w", err)
	}

	u := c.configURL(projectID) + "?" + url.Values{"updateMask": {"blockingFunctions"}}.Encode()
	resp, err := c.do(ctx, http.MethodPatch, u, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// Ping checks that the API host is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL(), nil)
	if err != nil {
		return fmt.Errorf("googleapi: create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) baseURL() string {
	if c.cfg.EmulatorHost != "" {
		host := c.cfg.EmulatorHost
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		return host
	}
	return c.cfg.BaseURL
}

func (c *Client) configURL(projectID string) string {
	return fmt.Sprintf("%s/admin/v2/projects/%s/config", c.baseURL(), url.PathEscape(projectID))
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("googleapi: create request: %w", err)
	}

	req.Header.Set("User-Agent", "prehook/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.client.Do(req)
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if c.cfg.EmulatorHost != "" {
		return emulatorOwnerToken, nil
	}
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

// checkStatus maps non-2xx responses to *APIError, decoding the standard
// error envelope when present.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
	}

	return apiErr
}
