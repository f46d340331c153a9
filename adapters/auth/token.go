// Package auth reads FaaS access tokens stored by the login flow or
// supplied through the environment.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gofaas/internal/config"
	"gofaas/internal/errors"
	"gofaas/ports"
)

// FileTokenProvider reads {"auths": {<domain>: {"access_token": ...}}}
type FileTokenProvider struct {
	Path   string
	Domain string
	now    func() time.Time
}

// NewFileTokenProvider creates a provider for the login flow's token file
func NewFileTokenProvider(path, domain string) *FileTokenProvider {
	return &FileTokenProvider{Path: path, Domain: domain, now: time.Now}
}

type tokenFile struct {
	Auths map[string]struct {
		AccessToken string `json:"access_token"`
	} `json:"auths"`
}

// GetAccessToken implements ports.TokenProvider
func (p *FileTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Unauthorized(fmt.Sprintf("You must be authenticated in order to access the API.\nNo token file found at %s; log in first.", p.Path))
		}
		return "", errors.Wrapf(err, "failed to read token file %s", p.Path)
	}

	var file tokenFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return "", errors.WithCode(errors.CodeUnauthorized, fmt.Errorf("token file %s is not valid JSON: %w", p.Path, err))
	}

	entry, ok := file.Auths[p.Domain]
	if !ok || entry.AccessToken == "" {
		return "", errors.Unauthorized("access_token not found. Make sure to log in and complete the login.")
	}

	return checkExpiry(entry.AccessToken, p.now())
}

// EnvTokenProvider reads the token from an environment variable
type EnvTokenProvider struct {
	Var    string
	lookup func(string) (string, bool)
	now    func() time.Time
}

// NewEnvTokenProvider creates a provider for the named variable
func NewEnvTokenProvider(name string) *EnvTokenProvider {
	return &EnvTokenProvider{Var: name, lookup: os.LookupEnv, now: time.Now}
}

// GetAccessToken implements ports.TokenProvider
func (p *EnvTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	token, ok := p.lookup(p.Var)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", errors.Unauthorized(fmt.Sprintf("%s is not set", p.Var))
	}
	return checkExpiry(token, p.now())
}

// StaticTokenProvider always returns the same token
type StaticTokenProvider string

// GetAccessToken implements ports.TokenProvider
func (p StaticTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	if p == "" {
		return "", errors.Unauthorized("")
	}
	return string(p), nil
}

// ChainTokenProvider returns the first token any provider yields
type ChainTokenProvider []ports.TokenProvider

// GetAccessToken implements ports.TokenProvider. When every provider fails
// the last error is returned.
func (c ChainTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	lastErr := error(errors.Unauthorized(""))
	for _, p := range c {
		token, err := p.GetAccessToken(ctx)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// FromConfig builds the default chain: environment first, then token file
func FromConfig(cfg config.AuthConfig) ports.TokenProvider {
	var chain ChainTokenProvider
	if cfg.TokenEnv != "" {
		chain = append(chain, NewEnvTokenProvider(cfg.TokenEnv))
	}
	chain = append(chain, NewFileTokenProvider(cfg.TokenFile, cfg.Domain))
	return chain
}

// checkExpiry rejects JWTs whose exp claim has passed. Opaque tokens pass.
func checkExpiry(token string, now time.Time) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return token, nil
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return token, nil
	}
	if !now.Before(exp.Time) {
		return "", errors.Unauthorized("")
	}
	return token, nil
}
