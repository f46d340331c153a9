package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofaas/internal/errors"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/api/v1/validate", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Echo-Auth", r.Header.Get("Authorization"))
		w.Header().Set("X-Echo-Request", r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(body)
	})
	r.Get("/api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":[]}`))
	})
	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestPostSendsBodyAndHeaders(t *testing.T) {
	srv := newServer(t)
	c, err := New()
	require.NoError(t, err)

	resp, err := c.Post(context.Background(), srv.URL+"/api/v1/validate", []byte("body=abc"),
		map[string]string{"Authorization": "Bearer tok"}, time.Second)

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "body=abc", string(resp.Body))
	assert.Equal(t, "Bearer tok", resp.Header["X-Echo-Auth"])
	assert.NotEmpty(t, resp.Header["X-Echo-Request"])
}

func TestGetPassesNonOKStatusThrough(t *testing.T) {
	srv := newServer(t)

	c, err := New()
	require.NoError(t, err)
	resp, err := c.Get(context.Background(), srv.URL+"/missing", nil, time.Second)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTimeoutIsTransportError(t *testing.T) {
	srv := newServer(t)

	c, err := New()
	require.NoError(t, err)
	_, err = c.Get(context.Background(), srv.URL+"/slow", nil, 50*time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestParseProxy(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		hasError bool
	}{
		{"proxy.local:8080", "http://proxy.local:8080", false},
		{"http://proxy.local", "http://proxy.local", false},
		{"https://proxy.local:3128", "https://proxy.local:3128", false},
		{"://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, err := ParseProxy(tt.input)
			if tt.hasError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, u.String())
		})
	}
}

func TestFactoryRoutesThroughProxy(t *testing.T) {
	var seen string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.String()
		_, _ = w.Write([]byte(`{"records":[]}`))
	}))
	defer proxy.Close()

	client, err := NewFactory(nil)(proxy.URL)
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "http://faas.invalid/api/v1/projects", nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://faas.invalid/api/v1/projects", seen)
}

func TestFactoryRejectsBadProxy(t *testing.T) {
	_, err := NewFactory(nil)("://")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestNewRejectsBadProxy(t *testing.T) {
	c, err := New(WithProxy("http://"))
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	c, err = New(WithProxy(""))
	require.NoError(t, err)
	assert.NotNil(t, c)
}
