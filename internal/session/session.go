package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/utils/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend методы backend, нужные для входа
type Backend interface {
	PostAuth(ctx context.Context, path string, query url.Values, body, out any) error
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// LogoutFunc вызывается после завершения сессии
type LogoutFunc func(s *domain.Session)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Manager хранит сессии консоли. Создается при старте и передается явно.
type Manager struct {
	backend Backend
	tokens  *jwt.Manager
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*domain.Session
	onLogout []LogoutFunc
}

// NewManager создает новый Manager
func NewManager(b Backend, tokens *jwt.Manager, logger *zap.Logger) *Manager {
	return &Manager{
		backend:  b,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*domain.Session),
	}
}

// OnLogout регистрирует обработчик завершения сессии
func (m *Manager) OnLogout(fn LogoutFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// Login аутентифицирует пользователя в backend и открывает сессию.
// Возвращает токен сессии консоли.
func (m *Manager) Login(ctx context.Context, email, password string) (string, *domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var tok tokenResponse
	err := m.backend.PostAuth(ctx, "/token", url.Values{"grant_type": {"password"}}, map[string]string{
		"email":    email,
		"password": password,
	}, &tok)
	if err != nil {
		var validationErr *backend.ValidationError
		if errors.As(err, &validationErr) || errors.Is(err, backend.ErrUnauthorized) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("session: failed to authenticate %q: %w", email, err)
	}

	if tok.AccessToken == "" || tok.User.ID == "" {
		return "", nil, fmt.Errorf("session: empty token response for %q", email)
	}

	var user domain.User
	profileCtx := backend.WithAccessToken(ctx, tok.AccessToken)
	if err := m.backend.Get(profileCtx, "/usuarios/"+url.PathEscape(tok.User.ID), nil, &user); err != nil {
		return "", nil, fmt.Errorf("session: failed to load profile for %q: %w", email, err)
	}
	if user.ID == "" {
		user.ID = tok.User.ID
	}
	if user.Email == "" {
		user.Email = tok.User.Email
	}

	now := m.now()
	s := &domain.Session{
		ID:          uuid.NewString(),
		User:        user,
		AccessToken: tok.AccessToken,
		ExpiresAt:   m.expiry(now, tok),
		CreatedAt:   now,
	}

	token, err := m.tokens.Generate(s.ID, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("session: failed to generate token for user %s: %w", user.ID, err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session opened",
		zap.String("session_id", s.ID),
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return token, s, nil
}

// expiry сессия не живет дольше access token backend
func (m *Manager) expiry(now time.Time, tok tokenResponse) time.Time {
	expiresAt := now.Add(m.tokens.TTL())

	if exp, err := jwt.AccessTokenExpiry(tok.AccessToken); err == nil && !exp.IsZero() {
		if exp.Before(expiresAt) {
			expiresAt = exp
		}
	} else if tok.ExpiresIn > 0 {
		if exp := now.Add(time.Duration(tok.ExpiresIn) * time.Second); exp.Before(expiresAt) {
			expiresAt = exp
		}
	}

	return expiresAt
}

// Get возвращает активную сессию
func (m *Manager) Get(sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !m.now().Before(s.ExpiresAt) {
		m.remove(sessionID, "expired")
		return nil, domain.ErrSessionNotFound
	}

	return s, nil
}

// Authenticate проверяет токен консоли и возвращает его сессию
func (m *Manager) Authenticate(token string) (*domain.Session, error) {
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return m.Get(claims.SessionID)
}

// Logout завершает сессию
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if !m.remove(sessionID, "logout") {
		return domain.ErrSessionNotFound
	}
	return nil
}

// LogoutUser завершает все сессии пользователя и возвращает их количество
func (m *Manager) LogoutUser(ctx context.Context, userID string) int {
	m.mu.RLock()
	var ids []string
	for id, s := range m.sessions {
		if s.User.ID == userID {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range ids {
		if m.remove(id, "revoked") {
			n++
		}
	}
	return n
}

// HandleUnauthorized завершает сессию из контекста (backend ответил 401)
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	s, ok := FromContext(ctx)
	if !ok {
		return
	}
	m.remove(s.ID, "backend unauthorized")
}

// Sweep удаляет истекшие сессии
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.RLock()
	var ids []string
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range ids {
		if m.remove(id, "expired") {
			n++
		}
	}
	return n
}

func (m *Manager) remove(sessionID, reason string) bool {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	listeners := append([]LogoutFunc(nil), m.onLogout...)
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.logger.Info("session closed",
		zap.String("session_id", sessionID),
		zap.String("user_id", s.User.ID),
		zap.String("reason", reason),
	)

	for _, fn := range listeners {
		fn(s)
	}
	return true
}
