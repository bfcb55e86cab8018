package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// TokenCookie cookie с токеном консоли (websocket не передает заголовки)
const TokenCookie = "frete_token"

// Authenticator проверяет токен консоли
type Authenticator interface {
	Authenticate(token string) (*domain.Session, error)
}

// AuthMiddleware проверяет токен и кладет сессию в контекст
func AuthMiddleware(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeMessage(w, logger, http.StatusUnauthorized, "Sessão expirada. Faça login novamente.")
				return
			}

			s, err := auth.Authenticate(token)
			if err != nil {
				writeMessage(w, logger, http.StatusUnauthorized, "Sessão expirada. Faça login novamente.")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// bearerToken токен из заголовка "Bearer <token>" или из cookie
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return parts[1]
	}

	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAdmin пропускает только администраторов
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				writeError(w, logger, domain.ErrSessionNotFound)
				return
			}
			if s.User.Role != domain.RoleAdmin {
				writeError(w, logger, domain.ErrAdminOnly)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware генерирует уникальный request ID
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.New().String()
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware логирует HTTP запросы
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				requestID, _ := r.Context().Value(RequestIDKey).(string)
				fields := []zap.Field{
					zap.String("request_id", requestID),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
				}
				if s, ok := session.FromContext(r.Context()); ok {
					fields = append(fields, zap.String("user_id", s.User.ID))
				}
				logger.Info("HTTP request", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RecoveryMiddleware обрабатывает паники
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID, _ := r.Context().Value(RequestIDKey).(string)
					logger.Error("panic recovered",
						zap.String("request_id", requestID),
						zap.Any("panic", rec),
					)
					writeMessage(w, logger, http.StatusInternalServerError, "Erro interno do servidor. Tente novamente mais tarde.")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// currentSession сессия запроса; маршруты за AuthMiddleware всегда ее имеют
func currentSession(r *http.Request) (*domain.Session, bool) {
	return session.FromContext(r.Context())
}

// canAccessClient администратор видит всех клиентов, клиент только себя
func canAccessClient(s *domain.Session, clientID string) bool {
	if s.User.Role == domain.RoleAdmin {
		return true
	}
	return s.User.ClientID != nil && *s.User.ClientID == clientID
}
