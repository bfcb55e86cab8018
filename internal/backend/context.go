package backend

import "context"

type contextKey string

const accessTokenKey contextKey = "backend_access_token"

// WithAccessToken кладет access token пользователя в контекст запроса
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}

// AccessToken извлекает access token из контекста
func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey).(string)
	return token, ok && token != ""
}
