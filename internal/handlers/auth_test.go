package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("Success sets cookie and takes redirect", func(t *testing.T) {
		sessions := mocks.NewSessionServiceMock(t)
		state := mocks.NewStateServiceMock(t)
		h := NewAuthHandler(sessions, state, testLogger())

		s := clientSession("c1")
		sessions.On("Login", mock.Anything, "c1@loja.com.br", "segredo123").Return("jwt-token", s, nil)
		state.On("TakeRedirect", mock.Anything, "r-1").Return("/clientes/c1/extrato", nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"c1@loja.com.br","senha":"segredo123"}`))
		req.AddCookie(&http.Cookie{Name: RedirectCookie, Value: "r-1"})
		w := httptest.NewRecorder()

		h.Login(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[map[string]any](t, w)
		assert.Equal(t, "jwt-token", body["token"])
		assert.Equal(t, "/clientes/c1/extrato", body["redirect"])

		token := findCookie(w, TokenCookie)
		require.NotNil(t, token)
		assert.Equal(t, "jwt-token", token.Value)
		assert.True(t, token.HttpOnly)

		redirect := findCookie(w, RedirectCookie)
		require.NotNil(t, redirect)
		assert.Equal(t, -1, redirect.MaxAge)
	})

	t.Run("Expired redirect is ignored", func(t *testing.T) {
		sessions := mocks.NewSessionServiceMock(t)
		state := mocks.NewStateServiceMock(t)
		h := NewAuthHandler(sessions, state, testLogger())

		sessions.On("Login", mock.Anything, "admin@frete.com.br", "segredo123").Return("jwt", adminSession(), nil)
		state.On("TakeRedirect", mock.Anything, "old").Return("", domain.ErrRedirectNotFound)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"admin@frete.com.br","senha":"segredo123"}`))
		req.AddCookie(&http.Cookie{Name: RedirectCookie, Value: "old"})
		w := httptest.NewRecorder()

		h.Login(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[map[string]any](t, w)
		_, hasRedirect := body["redirect"]
		assert.False(t, hasRedirect)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		sessions := mocks.NewSessionServiceMock(t)
		h := NewAuthHandler(sessions, mocks.NewStateServiceMock(t), testLogger())

		sessions.On("Login", mock.Anything, "x@y.com", "errada").Return("", nil, domain.ErrInvalidCredentials)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"x@y.com","senha":"errada"}`))
		w := httptest.NewRecorder()

		h.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, findCookie(w, TokenCookie))
	})

	t.Run("Unknown fields rejected", func(t *testing.T) {
		h := NewAuthHandler(mocks.NewSessionServiceMock(t), mocks.NewStateServiceMock(t), testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"login":"x"}`))
		w := httptest.NewRecorder()

		h.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	sessions := mocks.NewSessionServiceMock(t)
	h := NewAuthHandler(sessions, mocks.NewStateServiceMock(t), testLogger())

	sessions.On("Logout", mock.Anything, "s-admin").Return(nil)

	w := serve(http.MethodPost, "/api/auth/logout", "/api/auth/logout", nil, adminSession(), h.Logout)

	assert.Equal(t, http.StatusNoContent, w.Code)
	cookie := findCookie(w, TokenCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuthHandler_RememberRedirect(t *testing.T) {
	t.Run("Stores path in cookie", func(t *testing.T) {
		state := mocks.NewStateServiceMock(t)
		h := NewAuthHandler(mocks.NewSessionServiceMock(t), state, testLogger())

		state.On("RememberRedirect", mock.Anything, "/planos").Return("r-9", nil)

		w := serve(http.MethodPost, "/api/redirect", "/api/redirect", map[string]string{"path": "/planos"}, nil, h.RememberRedirect)

		require.Equal(t, http.StatusCreated, w.Code)
		cookie := findCookie(w, RedirectCookie)
		require.NotNil(t, cookie)
		assert.Equal(t, "r-9", cookie.Value)
	})

	t.Run("External path rejected", func(t *testing.T) {
		state := mocks.NewStateServiceMock(t)
		h := NewAuthHandler(mocks.NewSessionServiceMock(t), state, testLogger())

		state.On("RememberRedirect", mock.Anything, "https://evil.example").Return("", domain.ErrInvalidRedirect)

		w := serve(http.MethodPost, "/api/redirect", "/api/redirect", map[string]string{"path": "https://evil.example"}, nil, h.RememberRedirect)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, findCookie(w, RedirectCookie))
	})
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(mocks.NewSessionServiceMock(t), mocks.NewStateServiceMock(t), testLogger())

	w := serve(http.MethodGet, "/api/me", "/api/me", nil, clientSession("c1"), h.Me)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[domain.Session](t, w)
	assert.Equal(t, "s-c1", body.ID)
	assert.Equal(t, domain.RoleClient, body.User.Role)
}
