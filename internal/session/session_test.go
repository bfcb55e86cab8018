package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/utils/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, accessToken string) (*Manager, *backend.Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": accessToken,
			"expires_in":   3600,
			"user":         map[string]string{"id": "u1", "email": body["email"]},
		})
	})
	mux.HandleFunc("/api/usuarios/u1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+accessToken, r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"u1","nome":"Ana","email":"ana@frete.com","perfil":"cliente","cliente_id":"c1"}`))
	})
	mux.HandleFunc("/api/clientes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	logger, _ := zap.NewDevelopment()
	client := backend.NewClient(backend.ClientConfig{APIURL: server.URL + "/api", BaseURL: server.URL, APIKey: "anon"}, logger)
	m := NewManager(client, jwt.NewManager("test-secret", 12*time.Hour), logger)
	client.OnUnauthorized(m.HandleUnauthorized)

	return m, client
}

func TestManager_Login(t *testing.T) {
	m, _ := newTestManager(t, "access-1")
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		token, s, err := m.Login(ctx, " Ana@Frete.com ", "secret")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "u1", s.User.ID)
		assert.Equal(t, "c1", s.Scope())
		assert.Equal(t, "access-1", s.AccessToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

		got, err := m.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		_, _, err := m.Login(ctx, "ana@frete.com", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Empty credentials", func(t *testing.T) {
		_, _, err := m.Login(ctx, "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Invalid token", func(t *testing.T) {
		_, err := m.Authenticate("garbage")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestManager_ExpiryFollowsAccessToken(t *testing.T) {
	access, err := jwt.NewManager("backend", 10*time.Minute).Generate("x", "u1")
	require.NoError(t, err)

	m, _ := newTestManager(t, access)
	_, s, err := m.Login(context.Background(), "ana@frete.com", "secret")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), s.ExpiresAt, 5*time.Second)

	m.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_Logout(t *testing.T) {
	m, _ := newTestManager(t, "access-1")
	ctx := context.Background()

	var closed []string
	m.OnLogout(func(s *domain.Session) { closed = append(closed, s.ID) })

	_, s1, err := m.Login(ctx, "ana@frete.com", "secret")
	require.NoError(t, err)
	_, s2, err := m.Login(ctx, "ana@frete.com", "secret")
	require.NoError(t, err)

	t.Run("Single session", func(t *testing.T) {
		require.NoError(t, m.Logout(ctx, s1.ID))
		_, err := m.Get(s1.ID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.ErrorIs(t, m.Logout(ctx, s1.ID), domain.ErrSessionNotFound)
	})

	t.Run("All user sessions", func(t *testing.T) {
		assert.Equal(t, 1, m.LogoutUser(ctx, "u1"))
		_, err := m.Get(s2.ID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	assert.Equal(t, []string{s1.ID, s2.ID}, closed)
}

func TestManager_BackendUnauthorizedSignsOut(t *testing.T) {
	m, client := newTestManager(t, "access-1")

	_, s, err := m.Login(context.Background(), "ana@frete.com", "secret")
	require.NoError(t, err)

	ctx := WithSession(context.Background(), s)
	err = client.Get(ctx, "/clientes", nil, nil)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_Sweep(t *testing.T) {
	m, _ := newTestManager(t, "access-1")
	_, _, err := m.Login(context.Background(), "ana@frete.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, 0, m.Sweep())
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, m.Sweep())
}
