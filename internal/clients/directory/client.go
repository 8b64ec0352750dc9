// Package directory provides a client for the external user directory service
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/avela-io/authserv/internal/common"
	"github.com/avela-io/authserv/internal/interfaces"
	"github.com/avela-io/authserv/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:8090"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 20 // requests per second
)

// ErrUserNotFound means the directory answered but has no such username.
var ErrUserNotFound = errors.New("user not found in directory")

// UnavailableError is a transport-level or server-side fault reaching the
// directory. It is deliberately distinct from ErrUserNotFound so callers can
// avoid claiming "no such user" on an infrastructure failure.
type UnavailableError struct {
	StatusCode int
	Endpoint   string
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directory unavailable: %v (endpoint: %s)", e.Err, e.Endpoint)
	}
	return fmt.Sprintf("directory unavailable: status %d (endpoint: %s)", e.StatusCode, e.Endpoint)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is a directory transport fault.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Client implements the DirectoryClient interface over HTTP.
// No retries are performed here; retry policy belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout. The timeout bounds every directory
// call, so a directory that never answers surfaces as unavailable instead
// of hanging the authentication request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new directory client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FindByUsername retrieves the stored record for a username.
func (c *Client) FindByUsername(ctx context.Context, username string) (*models.DirectoryUser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := "/users/search/by-username"
	reqURL := c.baseURL + endpoint + "?username=" + url.QueryEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("username", username).Msg("Directory lookup")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	var user models.DirectoryUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &user, nil
}

// Update pushes a full updated record back to the directory.
func (c *Client) Update(ctx context.Context, user *models.DirectoryUser) (*models.DirectoryUser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("/users/%s", url.PathEscape(user.ID))
	body, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("user_id", user.ID).Msg("Directory update")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	var updated models.DirectoryUser
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &updated, nil
}

// Ensure Client implements DirectoryClient
var _ interfaces.DirectoryClient = (*Client)(nil)
