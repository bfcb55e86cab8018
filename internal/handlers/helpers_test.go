package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func adminSession() *domain.Session {
	return &domain.Session{
		ID:        "s-admin",
		User:      domain.User{ID: "u-admin", Email: "admin@frete.com.br", Role: domain.RoleAdmin},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func clientSession(clientID string) *domain.Session {
	id := clientID
	return &domain.Session{
		ID:        "s-" + clientID,
		User:      domain.User{ID: "u-" + clientID, Email: clientID + "@loja.com.br", Role: domain.RoleClient, ClientID: &id},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func withSession(r *http.Request, s *domain.Session) *http.Request {
	return r.WithContext(session.WithSession(r.Context(), s))
}

// serve прогоняет запрос через chi, чтобы работали параметры пути
func serve(method, pattern, target string, body any, s *domain.Session, handler http.HandlerFunc) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Method(method, pattern, handler)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if s != nil {
		req = withSession(req, s)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}
