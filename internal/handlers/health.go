package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger проверка доступности БД состояния
type Pinger interface {
	Ping(ctx context.Context) error
}

// FeedStatus состояние потока изменений backend
type FeedStatus interface {
	Connected() bool
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	db       Pinger
	feed     FeedStatus
	siteName string
	logger   *zap.Logger
}

// NewHealthHandler создает новый HealthHandler
func NewHealthHandler(db Pinger, feed FeedStatus, siteName string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		feed:     feed,
		siteName: siteName,
		logger:   logger,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Realtime string `json:"realtime"`
	Site     string `json:"site,omitempty"`
}

// Health возвращает статус приложения.
// Потеря потока изменений не делает сервис недоступным: он переподключается сам.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Realtime: "connected",
		Site:     h.siteName,
	}

	if err := h.ping(r.Context()); err != nil {
		response.Status = "degraded"
		response.Database = "unavailable"
		h.logger.Warn("health check: database unavailable", zap.Error(err))
	}

	if h.feed != nil && !h.feed.Connected() {
		response.Realtime = "reconnecting"
	}

	status := http.StatusOK
	if response.Database != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, status, response)
}

// Ready возвращает готовность приложения принимать трафик
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed: database unavailable", zap.Error(err))
		writeMessage(w, h.logger, http.StatusServiceUnavailable, "Serviço indisponível")
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return h.db.Ping(ctx)
}
