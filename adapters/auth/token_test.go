package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofaas/internal/errors"
)

const domain = "4intelligence.auth0.com"

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Subject:   "user",
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileTokenProvider(t *testing.T) {
	path := writeTokenFile(t, `{"auths": {"4intelligence.auth0.com": {"access_token": "opaque-token"}}}`)

	token, err := NewFileTokenProvider(path, domain).GetAccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestFileTokenProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json"), "You must be authenticated"},
		{"other domain", writeTokenFile(t, `{"auths": {"other": {"access_token": "x"}}}`), "access_token not found"},
		{"empty token", writeTokenFile(t, `{"auths": {"4intelligence.auth0.com": {"access_token": ""}}}`), "access_token not found"},
		{"bad json", writeTokenFile(t, `{`), "not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileTokenProvider(tt.path, domain).GetAccessToken(context.Background())
			require.Error(t, err)
			assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestExpiredJWTIsRejected(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &EnvTokenProvider{
		Var:    "FAAS_ACCESS_TOKEN",
		lookup: func(string) (string, bool) { return signed(t, now.Add(-time.Minute)), true },
		now:    func() time.Time { return now },
	}

	_, err := p.GetAccessToken(context.Background())

	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
	assert.Equal(t, errors.DefaultUnauthorizedMessage, err.Error())
}

func TestValidJWTPasses(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jwtToken := signed(t, now.Add(time.Hour))
	p := &EnvTokenProvider{
		Var:    "FAAS_ACCESS_TOKEN",
		lookup: func(string) (string, bool) { return jwtToken, true },
		now:    func() time.Time { return now },
	}

	token, err := p.GetAccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, jwtToken, token)
}

func TestEnvTokenProviderUnset(t *testing.T) {
	p := &EnvTokenProvider{
		Var:    "FAAS_ACCESS_TOKEN",
		lookup: func(string) (string, bool) { return "", false },
		now:    time.Now,
	}

	_, err := p.GetAccessToken(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAAS_ACCESS_TOKEN")
}

func TestChainTokenProvider(t *testing.T) {
	chain := ChainTokenProvider{StaticTokenProvider(""), StaticTokenProvider("second")}
	token, err := chain.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	_, err = ChainTokenProvider{}.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}
