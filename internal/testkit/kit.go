package testkit

import (
	"context"
	"sync"
	"time"

	"gofaas/domain/dataset"
	"gofaas/ports"
)

// Request is one call captured by FakeClient
type Request struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
	Timeout time.Duration
}

type scripted struct {
	status int
	body   string
	err    error
}

// FakeClient is a scripted ports.HTTPClient. Each URL answers from its own
// queue; the last scripted answer repeats once the queue is drained.
type FakeClient struct {
	mu       sync.Mutex
	scripts  map[string][]scripted
	requests []Request
	proxies  []string
}

// NewFakeClient creates an empty fake; unscripted URLs answer 404
func NewFakeClient() *FakeClient {
	return &FakeClient{scripts: make(map[string][]scripted)}
}

// Respond queues an answer for url
func (f *FakeClient) Respond(url string, status int, body string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[url] = append(f.scripts[url], scripted{status: status, body: body})
	return f
}

// Fail queues a transport error for url
func (f *FakeClient) Fail(url string, err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[url] = append(f.scripts[url], scripted{err: err})
	return f
}

// Post implements ports.HTTPClient
func (f *FakeClient) Post(ctx context.Context, url string, body []byte, headers map[string]string, timeout time.Duration) (*ports.HTTPResponse, error) {
	return f.do("POST", url, body, headers, timeout)
}

// Get implements ports.HTTPClient
func (f *FakeClient) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*ports.HTTPResponse, error) {
	return f.do("GET", url, nil, headers, timeout)
}

func (f *FakeClient) do(method, url string, body []byte, headers map[string]string, timeout time.Duration) (*ports.HTTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	f.requests = append(f.requests, Request{Method: method, URL: url, Body: body, Headers: copied, Timeout: timeout})

	queue := f.scripts[url]
	if len(queue) == 0 {
		return &ports.HTTPResponse{StatusCode: 404, Body: []byte(`{"detail":"Not Found"}`)}, nil
	}
	next := queue[0]
	if len(queue) > 1 {
		f.scripts[url] = queue[1:]
	}
	if next.err != nil {
		return nil, next.err
	}
	return &ports.HTTPResponse{StatusCode: next.status, Body: []byte(next.body)}, nil
}

// Requests returns every captured call in order
func (f *FakeClient) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Calls counts the requests sent to url
func (f *FakeClient) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.URL == url {
			n++
		}
	}
	return n
}

// Factory returns a transport factory handing out this fake and recording
// the proxy asked for
func (f *FakeClient) Factory() ports.TransportFactory {
	return func(proxy string) (ports.HTTPClient, error) {
		f.mu.Lock()
		f.proxies = append(f.proxies, proxy)
		f.mu.Unlock()
		return f, nil
	}
}

// Proxies lists the proxies passed to Factory
func (f *FakeClient) Proxies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.proxies...)
}

// SalesDataset is a small monthly series with one regressor
func SalesDataset() dataset.Dataset {
	return dataset.New("sales", []string{"date", "sales", "price"}, []dataset.Row{
		{"date": "2022-01-01", "sales": 120.0, "price": 9.5},
		{"date": "2022-02-01", "sales": 131.0, "price": 9.7},
		{"date": "2022-03-01", "sales": 128.0, "price": "NA"},
	})
}
