package ports

import "context"

// TokenProvider hands out the bearer token for FaaS requests.
// Acquiring or refreshing the token is the provider's business.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}
