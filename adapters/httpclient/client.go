package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gofaas/domain/core"
	"gofaas/internal"
	"gofaas/internal/errors"
	"gofaas/ports"
)

// RequestIDHeader carries a per-request identifier for log correlation
const RequestIDHeader = "X-Request-ID"

// Client implements ports.HTTPClient on net/http
type Client struct {
	httpClient *http.Client
	logger     *internal.Logger
	err        error
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *internal.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProxy routes every request through proxy ("host:port" or a full URL)
func WithProxy(proxy string) Option {
	return func(c *Client) {
		if proxy == "" {
			return
		}
		proxyURL, err := ParseProxy(proxy)
		if err != nil {
			c.err = err
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		c.httpClient.Transport = transport
	}
}

// New creates a client. Timeouts are applied per request. An option that
// cannot be applied, such as an unparsable proxy, fails the whole call.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{},
		logger:     internal.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

// NewFactory returns a ports.TransportFactory building proxied clients
func NewFactory(logger *internal.Logger) ports.TransportFactory {
	return func(proxy string) (ports.HTTPClient, error) {
		client, err := New(WithLogger(logger), WithProxy(proxy))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// ParseProxy accepts "host:port", "http://host:port" or "https://host:port"
func ParseProxy(proxy string) (*url.URL, error) {
	raw := proxy
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.InvalidInputf("invalid proxy %q", proxy)
	}
	return u, nil
}

// Post sends body with the given headers
func (c *Client) Post(ctx context.Context, url string, body []byte, headers map[string]string, timeout time.Duration) (*ports.HTTPResponse, error) {
	return c.do(ctx, http.MethodPost, url, body, headers, timeout)
}

// Get fetches url with the given headers
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*ports.HTTPResponse, error) {
	return c.do(ctx, http.MethodGet, url, nil, headers, timeout)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, headers map[string]string, timeout time.Duration) (*ports.HTTPResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s request", method)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	requestID := core.NewRequestID()
	req.Header.Set(RequestIDHeader, requestID.String())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("[HTTPClient] %s %s request_id=%s failed after %v: %v", method, url, requestID, time.Since(start), err)
		return nil, errors.ExternalServiceError("FaaS", fmt.Errorf("%s %s: %w", method, url, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError("FaaS", fmt.Errorf("failed to read response: %w", err))
	}
	c.logger.Debug("[HTTPClient] %s %s request_id=%s -> %d (%d bytes, %v)", method, url, requestID, resp.StatusCode, len(data), time.Since(start))

	header := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		header[k] = resp.Header.Get(k)
	}
	return &ports.HTTPResponse{StatusCode: resp.StatusCode, Body: data, Header: header}, nil
}
