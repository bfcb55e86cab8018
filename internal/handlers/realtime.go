package handlers

import (
	"context"
	"net/http"

	"github.com/avc/frete-console/internal/domain"
	"go.uber.org/zap"
)

// PushServer websocket канал уведомлений браузера
type PushServer interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID, scope string) error
}

// ClientWatcher подписки на изменения, пока у клиента открыта консоль
type ClientWatcher interface {
	Enable(ctx context.Context, clientID string) error
	Disable(ctx context.Context, clientID string) error
}

// RealtimeHandler подключает браузер к уведомлениям и подписывает его клиента на изменения
type RealtimeHandler struct {
	push     PushServer
	watchers []ClientWatcher
	logger   *zap.Logger
}

func NewRealtimeHandler(push PushServer, logger *zap.Logger, watchers ...ClientWatcher) *RealtimeHandler {
	return &RealtimeHandler{
		push:     push,
		watchers: watchers,
		logger:   logger,
	}
}

// Serve /ws; администратор может наблюдать за клиентом через ?cliente_id=
func (h *RealtimeHandler) Serve(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(r)
	if !ok {
		writeError(w, h.logger, domain.ErrSessionNotFound)
		return
	}

	scope := s.Scope()
	if id := r.URL.Query().Get("cliente_id"); id != "" {
		if !canAccessClient(s, id) {
			writeError(w, h.logger, domain.ErrAdminOnly)
			return
		}
		scope = id
	}

	watching := s.User.Role == domain.RoleClient || scope != s.User.ID
	if watching {
		enabled := h.enable(r.Context(), scope)
		defer h.disable(enabled, scope)
	}

	if err := h.push.Serve(w, r, s.ID, scope); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (h *RealtimeHandler) enable(ctx context.Context, scope string) []ClientWatcher {
	enabled := make([]ClientWatcher, 0, len(h.watchers))
	for _, watcher := range h.watchers {
		if err := watcher.Enable(ctx, scope); err != nil {
			// Ошибки подписки только логируются
			h.logger.Warn("failed to subscribe to changes", zap.String("cliente_id", scope), zap.Error(err))
			continue
		}
		enabled = append(enabled, watcher)
	}
	return enabled
}

func (h *RealtimeHandler) disable(enabled []ClientWatcher, scope string) {
	// Контекст запроса уже отменен после отключения браузера
	ctx := context.Background()
	for _, watcher := range enabled {
		if err := watcher.Disable(ctx, scope); err != nil {
			h.logger.Warn("failed to unsubscribe from changes", zap.String("cliente_id", scope), zap.Error(err))
		}
	}
}
