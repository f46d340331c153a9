package ports

import (
	"context"
	"time"
)

// HTTPResponse is the part of an HTTP answer the submission flow reads
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	Header     map[string]string
}

// HTTPClient sends requests to the FaaS endpoints.
// A returned error means no HTTP response was obtained at all.
type HTTPClient interface {
	Post(ctx context.Context, url string, body []byte, headers map[string]string, timeout time.Duration) (*HTTPResponse, error)
	Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*HTTPResponse, error)
}

// TransportFactory builds a client for the proxy of one call ("" for none)
type TransportFactory func(proxy string) (HTTPClient, error)
