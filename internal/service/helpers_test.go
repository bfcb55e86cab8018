package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/cache"
	"go.uber.org/zap"
)

// fakeBackend httptest сервер с REST API и функциями
type fakeBackend struct {
	mux   *http.ServeMux
	calls atomic.Int32
}

func newFakeBackend(t *testing.T) (*fakeBackend, *backend.Client, *backend.Functions) {
	t.Helper()

	fb := &fakeBackend{mux: http.NewServeMux()}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls.Add(1)
		fb.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	logger, _ := zap.NewDevelopment()
	client := backend.NewClient(backend.ClientConfig{
		APIURL:  server.URL + "/api",
		BaseURL: server.URL,
		APIKey:  "anon",
	}, logger)
	fns := backend.NewFunctions(client)
	fns.SetRetryDelay(10 * time.Millisecond)

	return fb, client, fns
}

func (fb *fakeBackend) handle(pattern string, fn http.HandlerFunc) {
	fb.mux.HandleFunc(pattern, fn)
}

func (fb *fakeBackend) Calls() int {
	return int(fb.calls.Load())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestCache() *cache.Cache {
	return cache.New(time.Minute)
}

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func ptr[T any](v T) *T {
	return &v
}
