package crm

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ginjaninja78/crm-contact-importer/internal/logger"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultHealthTimeout = 5 * time.Second
)

// Client talks to the CRM GraphQL API. It is safe to reuse for a whole run;
// calls are synchronous and never retried.
type Client struct {
	baseURL       string
	token         string
	http          *http.Client
	timeout       time.Duration
	healthTimeout time.Duration
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token. An empty token omits the header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout sets the fixed per-request timeout for mutations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHealthTimeout sets the timeout for the health check.
func WithHealthTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.healthTimeout = timeout
		}
	}
}

// WithRateLimit paces mutations to requests per interval. Non-positive
// values leave requests unpaced.
func WithRateLimit(requests int, interval time.Duration) Option {
	return func(c *Client) {
		if requests <= 0 || interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval/time.Duration(requests)), 1)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for the CRM at baseURL. A trailing "/" or "/graphql"
// is trimmed so either form of the URL can be configured.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       NormalizeBaseURL(baseURL),
		http:          newHTTPClient(),
		timeout:       defaultTimeout,
		healthTimeout: defaultHealthTimeout,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeBaseURL trims trailing slashes and a "/graphql" suffix.
func NormalizeBaseURL(baseURL string) string {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u = strings.TrimSuffix(u, "/graphql")
	return strings.TrimRight(u, "/")
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// GraphQLURL returns the GraphQL endpoint.
func (c *Client) GraphQLURL() string { return c.baseURL + "/graphql" }

// HealthURL returns the health-check endpoint.
func (c *Client) HealthURL() string { return c.baseURL + "/healthz" }

// Health performs an unauthenticated GET against the health endpoint and
// returns the status code. A non-nil error means the CRM was unreachable.
func (c *Client) Health(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.HealthURL(), nil)
	if err != nil {
		return 0, &Error{Op: "crm.health", Kind: KindTransport, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Op: "crm.health", Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("crm.health", "url", c.HealthURL(), "status", resp.StatusCode)
	return resp.StatusCode, nil
}

// newHTTPClient returns a client with bounded dial and header timeouts.
// The per-request deadline is applied through the request context.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tr := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		ForceAttemptHTTP2: true,

		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: tr}
}
