package session

import (
	"context"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/domain"
)

type contextKey string

const sessionKey contextKey = "session"

// WithSession кладет сессию и ее access token в контекст
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return backend.WithAccessToken(ctx, s.AccessToken)
}

// FromContext извлекает сессию из контекста
func FromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.Session)
	return s, ok && s != nil
}
