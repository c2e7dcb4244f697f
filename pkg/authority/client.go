package authority

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/rbac"
	"github.com/rbmarquez/doctorq/pkg/requestid"
)

const (
	// MaxPayloadSize caps the response body read from the authority.
	MaxPayloadSize = 1 << 20

	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries the caller's request id, or a fresh one, per fetch.
	RequestIDHeader = requestid.Header
)

// Client fetches per-user permission sets from the permission authority.
// It never turns an error into a grant.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	timeout     time.Duration
	logger      *slog.Logger
	vocab       rbac.Vocabulary
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTokenSource authenticates requests with bearer tokens from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(cl *Client) {
		cl.tokenSource = ts
	}
}

// WithTimeout bounds each fetch. Zero disables the client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d >= 0 {
			cl.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithVocabulary sets the resources and actions accepted from payloads.
func WithVocabulary(v rbac.Vocabulary) Option {
	return func(cl *Client) {
		cl.vocab = v
	}
}

// NewClient creates a client for the authority at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     logger.Discard(),
		vocab:      rbac.DefaultVocabulary(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokenSource != nil {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		authed := *c.httpClient
		authed.Transport = &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, c.tokenSource),
			Base:   base,
		}
		c.httpClient = &authed
	}

	return c, nil
}

// Endpoint returns the permission URL for userID. The id is path-escaped.
func (c *Client) Endpoint(userID string) string {
	return c.baseURL + "/permissions/users/" + url.PathEscape(userID) + "/permissions"
}

// Fetch retrieves and decodes the permission set of userID.
func (c *Client) Fetch(ctx context.Context, userID string) (*rbac.PermissionSet, error) {
	payload, err := c.FetchPayload(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Decode(ctx, payload, c.vocab, c.logger.With(logger.UserID(userID))), nil
}

// FetchPayload retrieves the raw wire document of userID.
func (c *Client) FetchPayload(ctx context.Context, userID string) (Payload, error) {
	if strings.TrimSpace(userID) == "" {
		return Payload{}, ErrInvalidUserID
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, requestID := requestid.Ensure(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(userID), nil)
	if err != nil {
		return Payload{}, errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Payload{}, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	log := c.logger.With(logger.UserID(userID), logger.RequestID(requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxPayloadSize))
		log.DebugContext(ctx, "permission authority rejected request", slog.Int("status", resp.StatusCode))
		statusErr := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound {
			return Payload{}, errors.Join(ErrUserNotFound, statusErr)
		}
		return Payload{}, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadSize+1))
	if err != nil {
		return Payload{}, errors.Join(ErrRequestFailed, err)
	}
	if len(body) > MaxPayloadSize {
		return Payload{}, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedPayload, MaxPayloadSize)
	}

	payload, err := ParsePayload(body)
	if err != nil {
		return Payload{}, errors.Join(ErrMalformedPayload, err)
	}

	log.DebugContext(ctx, "permissions fetched", logger.Duration(time.Since(start)))
	return payload, nil
}
