package auth

import (
	"context"

	"github.com/yourname/habitroom/internal"
)

// Provider resolves a bearer token into the current member. It is consulted
// on every request; the resolved identity is never cached across requests.
type Provider interface {
	CurrentUser(ctx context.Context, token string) (*internal.Member, error)
}
