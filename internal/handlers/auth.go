package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/avc/frete-console/internal/domain"
	"go.uber.org/zap"
)

// RedirectCookie id адреса возврата после входа
const RedirectCookie = "frete_redirect"

type AuthHandler struct {
	sessions domain.SessionService
	state    domain.StateService
	logger   *zap.Logger
}

func NewAuthHandler(sessions domain.SessionService, state domain.StateService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		state:    state,
		logger:   logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type loginResponse struct {
	Token    string          `json:"token"`
	Session  *domain.Session `json:"sessao"`
	Redirect string          `json:"redirect,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	token, s, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, h.logger, http.StatusOK, loginResponse{
		Token:    token,
		Session:  s,
		Redirect: h.takeRedirect(w, r),
	})
}

// takeRedirect адрес возврата, запомненный до входа; используется один раз
func (h *AuthHandler) takeRedirect(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(RedirectCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	clearCookie(w, RedirectCookie)

	path, err := h.state.TakeRedirect(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, domain.ErrRedirectNotFound) {
			h.logger.Warn("failed to take login redirect", zap.Error(err))
		}
		return ""
	}
	return path
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(r)
	if !ok {
		writeError(w, h.logger, domain.ErrSessionNotFound)
		return
	}

	if err := h.sessions.Logout(r.Context(), s.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, h.logger, err)
		return
	}

	clearCookie(w, TokenCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(r)
	if !ok {
		writeError(w, h.logger, domain.ErrSessionNotFound)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

type redirectRequest struct {
	Path string `json:"path"`
}

// RememberRedirect запоминает адрес, на который вернуть пользователя после входа
func (h *AuthHandler) RememberRedirect(w http.ResponseWriter, r *http.Request) {
	var req redirectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, "Dados inválidos")
		return
	}

	id, err := h.state.RememberRedirect(r.Context(), req.Path)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RedirectCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((30 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	writeJSON(w, h.logger, http.StatusCreated, map[string]string{"id": id})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
