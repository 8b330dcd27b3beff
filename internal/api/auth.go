package api

import (
	"context"
	"net"
	"strings"

	"stayfinder/internal/config"
	"stayfinder/internal/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	authorizationHeader = "authorization"
	healthServicePrefix = "/grpc.health.v1.Health/"
	clientKeyUnknown    = "unknown"
)

// AuthInterceptor rate-limits every call per peer and resolves bearer tokens for booking calls.
type AuthInterceptor struct {
	auth    domain.AuthService
	limiter *rateLimiter
}

func NewAuthInterceptor(auth domain.AuthService, cfg config.APIRateLimitConfig) *AuthInterceptor {
	return &AuthInterceptor{
		auth:    auth,
		limiter: newRateLimiter(cfg),
	}
}

func (a *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !a.limiter.allow(peerKey(ctx)) {
			return nil, grpcError(errRateLimited)
		}
		if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
			return handler(ctx, req)
		}

		ctx, err := a.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func (a *AuthInterceptor) authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, status.Error(codes.Unauthenticated, "missing metadata")
	}

	token, ok := bearerToken(first(md.Get(authorizationHeader)))
	if !ok {
		return ctx, status.Error(codes.Unauthenticated, "access token required")
	}

	identity, err := a.auth.Verify(ctx, token)
	if err != nil {
		return ctx, grpcError(err)
	}
	return withIdentity(ctx, identity), nil
}

func peerKey(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr := p.Addr.String()
		if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
			return host
		}
		return addr
	}
	return clientKeyUnknown
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
