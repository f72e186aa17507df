// Package prismic is a minimal client for the Prismic REST API v2: enough to
// resolve the master ref and page through documents searches.
package prismic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
)

const defaultUserAgent = "prismicgen"

// Client queries one content repository.
type Client struct {
	httpClient  *http.Client
	endpoint    *url.URL
	accessToken string
	userAgent   string

	mu  sync.Mutex
	ref string // pinned or cached master ref
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithAccessToken sets the token used for private repositories.
func WithAccessToken(token string) Option {
	return func(cl *Client) { cl.accessToken = token }
}

// WithRef pins every query to ref instead of the master ref (e.g. a preview release).
func WithRef(ref string) Option {
	return func(cl *Client) { cl.ref = ref }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// NewClient creates a client for the API endpoint, e.g. "https://blog.cdn.prismic.io/api/v2".
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.ConfigError("prismic endpoint is required").Build()
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		b := errors.ConfigError("prismic endpoint must be an absolute URL").
			WithContext("endpoint", endpoint)
		if err != nil {
			b = b.WithCause(err)
		}
		return nil, b.Build()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   u,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured API endpoint.
func (c *Client) Endpoint() string { return c.endpoint.String() }

// newRequest builds a GET request for a path relative to the endpoint.
func (c *Client) newRequest(ctx context.Context, endpoint string, query url.Values) (*http.Request, error) {
	u := *c.endpoint
	if endpoint != "" {
		basePath := strings.TrimSuffix(u.Path, "/")
		u.Path = path.Join(basePath, strings.TrimPrefix(endpoint, "/"))
	}
	if c.accessToken != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set("access_token", c.accessToken)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.ContentError("failed to create request").
			WithCause(err).
			WithContext("url", redact(&u)).
			Build()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// doRequest executes req and decodes the JSON body into result.
func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.NetworkError("failed to execute content repository request").
			WithCause(err).
			WithContext("url", redact(req.URL)).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		// Read limited body for diagnostics
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

		var b *errors.ErrorBuilder
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			b = errors.AuthError(fmt.Sprintf("content repository denied access: %s", resp.Status))
		case http.StatusNotFound:
			b = errors.NotFoundError(fmt.Sprintf("content repository not found: %s", resp.Status))
		case http.StatusTooManyRequests:
			b = errors.ContentError(fmt.Sprintf("content repository rate limit: %s", resp.Status)).RateLimit()
		default:
			b = errors.ContentError(fmt.Sprintf("content repository API error: %s", resp.Status))
		}
		return b.
			WithContext("status", resp.Status).
			WithContext("code", resp.StatusCode).
			WithContext("url", redact(req.URL)).
			WithContext("response", bodyStr).
			Build()
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return errors.ContentError("failed to decode content repository response").
			WithCause(err).
			WithContext("url", redact(req.URL)).
			Build()
	}
	return nil
}

// redact drops the access token from URLs placed in error context.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if q.Get("access_token") == "" {
		return u.String()
	}
	q.Set("access_token", "REDACTED")
	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}
