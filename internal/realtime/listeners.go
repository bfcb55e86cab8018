package realtime

import (
	"context"
	"fmt"

	"github.com/avc/frete-console/internal/cache"
	"go.uber.org/zap"
)

// LedgerListener сбрасывает кэш выписки при новых записях журнала клиента
type LedgerListener struct {
	feed   Subscriber
	cache  *cache.Cache
	logger *zap.Logger
	subs   *refCounted
}

// NewLedgerListener создает новый LedgerListener
func NewLedgerListener(feed Subscriber, c *cache.Cache, logger *zap.Logger) *LedgerListener {
	return &LedgerListener{
		feed:   feed,
		cache:  c,
		logger: logger.With(zap.String("component", "ledger_listener")),
		subs:   newRefCounted(),
	}
}

// Enable подписывается на INSERT в transacoes_credito клиента
func (l *LedgerListener) Enable(ctx context.Context, clientID string) error {
	_, err := l.subs.acquire(ctx, clientID, func(ctx context.Context) (*Subscription, error) {
		return l.feed.Subscribe(ctx,
			ChannelCreditTransactions+":"+clientID,
			ClientFilter(EventInsert, TableCreditTransactions, clientID),
			func(ctx context.Context, change Change) {
				l.handle(clientID, change)
			},
		)
	})
	if err != nil {
		return fmt.Errorf("ledger listener: failed to enable for client %s: %w", clientID, err)
	}
	return nil
}

// Disable снимает ссылку на подписку клиента
func (l *LedgerListener) Disable(ctx context.Context, clientID string) error {
	if _, err := l.subs.release(ctx, clientID); err != nil {
		return fmt.Errorf("ledger listener: failed to disable for client %s: %w", clientID, err)
	}
	return nil
}

// Close закрывает все подписки
func (l *LedgerListener) Close(ctx context.Context) {
	l.subs.closeAll(ctx)
}

func (l *LedgerListener) handle(scope string, change Change) {
	if change.EventType != EventInsert {
		return
	}
	l.logger.Debug("ledger entry inserted", zap.String("cliente_id", scope))
	l.cache.Invalidate(scope, cache.LedgerChangedKeys...)
}

// SessionTerminator завершает сессии пользователя
type SessionTerminator interface {
	LogoutUser(ctx context.Context, userID string) int
}

// SessionListener завершает сессии BFF при удалении строки sessoes
type SessionListener struct {
	feed     Subscriber
	sessions SessionTerminator
	logger   *zap.Logger
	sub      *Subscription
}

// NewSessionListener создает новый SessionListener
func NewSessionListener(feed Subscriber, sessions SessionTerminator, logger *zap.Logger) *SessionListener {
	return &SessionListener{
		feed:     feed,
		sessions: sessions,
		logger:   logger.With(zap.String("component", "session_listener")),
	}
}

// Start подписывается на DELETE в sessoes
func (l *SessionListener) Start(ctx context.Context) error {
	sub, err := l.feed.Subscribe(ctx, ChannelSessions, Filter{
		Event:  EventDelete,
		Schema: "public",
		Table:  TableSessions,
	}, l.handle)
	if err != nil {
		return fmt.Errorf("session listener: failed to subscribe: %w", err)
	}
	l.sub = sub
	return nil
}

// Stop закрывает подписку
func (l *SessionListener) Stop(ctx context.Context) error {
	if l.sub == nil {
		return nil
	}
	return l.sub.Close(ctx)
}

func (l *SessionListener) handle(ctx context.Context, change Change) {
	if change.EventType != EventDelete {
		return
	}

	var row struct {
		UserID string `json:"user_id"`
	}
	if err := change.DecodeOld(&row); err != nil || row.UserID == "" {
		l.logger.Warn("session delete without user id", zap.Error(err))
		return
	}

	n := l.sessions.LogoutUser(ctx, row.UserID)
	l.logger.Info("sessions revoked by backend",
		zap.String("user_id", row.UserID),
		zap.Int("sessions", n),
	)
}
