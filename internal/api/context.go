package api

import (
	"context"

	"stayfinder/internal/models"
)

type identityKey struct{}

func withIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the caller resolved by the auth middleware or interceptor.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*models.Identity)
	return identity, ok && identity != nil
}
