package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avc/frete-console/internal/cache"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/notify"
	"github.com/avc/frete-console/internal/utils/money"
	"go.uber.org/zap"
)

// Notifier отправляет UI эффекты в браузер
type Notifier interface {
	Send(scope string, msg notify.Message) error
}

// ConfirmFunc вызывается первым шагом после подтверждения оплаты
type ConfirmFunc func(ctx context.Context, recharge domain.PixRecharge) error

// PaymentSound звук подтверждения оплаты
const PaymentSound = "pagamento-confirmado"

// seenTTL время хранения подтвержденного txid
const seenTTL = time.Hour

// PaymentReconciler следит за recargas_pix клиента и реагирует на переход
// pendente_pagamento -> pago: callback, toast, звук, сброс кэша.
// Эффекты выполняются не более одного раза на txid.
type PaymentReconciler struct {
	feed        Subscriber
	cache       *cache.Cache
	notifier    Notifier
	onConfirmed ConfirmFunc
	logger      *zap.Logger

	subs *refCounted

	seenMu   sync.Mutex
	seen     map[string]time.Time
	prunedAt time.Time
	now      func() time.Time
}

// NewPaymentReconciler создает новый PaymentReconciler
func NewPaymentReconciler(feed Subscriber, c *cache.Cache, notifier Notifier, logger *zap.Logger) *PaymentReconciler {
	return &PaymentReconciler{
		feed:     feed,
		cache:    c,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "payment_reconciler")),
		subs:     newRefCounted(),
		seen:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// OnPaymentConfirmed задает первый шаг последовательности подтверждения
func (r *PaymentReconciler) OnPaymentConfirmed(fn ConfirmFunc) {
	r.onConfirmed = fn
}

// Enable включает наблюдение за оплатами клиента.
// Повторные вызовы для того же клиента увеличивают счетчик ссылок.
func (r *PaymentReconciler) Enable(ctx context.Context, clientID string) error {
	opened, err := r.subs.acquire(ctx, clientID, func(ctx context.Context) (*Subscription, error) {
		return r.feed.Subscribe(ctx,
			ChannelPixRecharges+":"+clientID,
			ClientFilter(EventUpdate, TablePixRecharges, clientID),
			func(ctx context.Context, change Change) {
				r.handle(ctx, clientID, change)
			},
		)
	})
	if err != nil {
		return fmt.Errorf("payment reconciler: failed to enable for client %s: %w", clientID, err)
	}
	if opened {
		r.logger.Debug("payment reconciliation enabled", zap.String("cliente_id", clientID))
	}
	return nil
}

// Disable снимает ссылку; на последней подписка закрывается.
// После возврата обработчик для клиента не выполняется.
func (r *PaymentReconciler) Disable(ctx context.Context, clientID string) error {
	closed, err := r.subs.release(ctx, clientID)
	if err != nil {
		return fmt.Errorf("payment reconciler: failed to disable for client %s: %w", clientID, err)
	}
	if closed {
		r.logger.Debug("payment reconciliation disabled", zap.String("cliente_id", clientID))
	}
	return nil
}

// Enabled активно ли наблюдение за клиентом
func (r *PaymentReconciler) Enabled(clientID string) bool {
	return r.subs.active(clientID)
}

// Close закрывает все подписки
func (r *PaymentReconciler) Close(ctx context.Context) {
	r.subs.closeAll(ctx)
}

// IsConfirmation единственный переход, на который реагирует сверка
func IsConfirmation(oldStatus, newStatus domain.PaymentStatus) bool {
	return oldStatus == domain.PaymentStatusPending && newStatus == domain.PaymentStatusPaid
}

// rechargeState колонки recargas_pix, нужные сверке; остальные не разбираются
type rechargeState struct {
	TxID     string               `json:"txid"`
	ClientID string               `json:"cliente_id"`
	Status   domain.PaymentStatus `json:"status"`
	Value    json.RawMessage      `json:"valor"`
}

func (r *PaymentReconciler) handle(ctx context.Context, scope string, change Change) {
	var before, after rechargeState
	if err := change.DecodeOld(&before); err != nil {
		r.logger.Warn("failed to decode old recharge", zap.Error(err))
		return
	}
	if err := change.DecodeNew(&after); err != nil {
		r.logger.Warn("failed to decode new recharge", zap.Error(err))
		return
	}

	if !IsConfirmation(before.Status, after.Status) {
		r.logger.Debug("ignoring recharge transition",
			zap.String("txid", after.TxID),
			zap.String("old_status", string(before.Status)),
			zap.String("new_status", string(after.Status)),
		)
		return
	}

	if after.TxID == "" {
		r.logger.Warn("confirmation without txid, duplicates cannot be detected")
	} else if !r.markSeen(after.TxID) {
		r.logger.Debug("duplicate confirmation ignored", zap.String("txid", after.TxID))
		return
	}

	recharge := domain.PixRecharge{
		TxID:     after.TxID,
		ClientID: after.ClientID,
		Status:   after.Status,
	}
	if recharge.ClientID == "" {
		recharge.ClientID = scope
	}
	valueKnown := r.decodeValue(after.Value, &recharge.Value)

	r.confirm(ctx, scope, recharge, valueKnown)
}

// decodeValue false, если сумма отсутствует или не разбирается
func (r *PaymentReconciler) decodeValue(raw json.RawMessage, dst *money.Cents) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.Warn("failed to decode recharge value", zap.ByteString("valor", raw), zap.Error(err))
		return false
	}
	return true
}

// markSeen false, если txid уже подтверждался в пределах seenTTL
func (r *PaymentReconciler) markSeen(txid string) bool {
	r.seenMu.Lock()
	defer r.seenMu.Unlock()

	now := r.now()
	if now.Sub(r.prunedAt) >= seenTTL {
		for id, at := range r.seen {
			if now.Sub(at) >= seenTTL {
				delete(r.seen, id)
			}
		}
		r.prunedAt = now
	}

	if at, ok := r.seen[txid]; ok && now.Sub(at) < seenTTL {
		return false
	}
	r.seen[txid] = now
	return true
}

// confirm шаги выполняются последовательно, каждый после завершения предыдущего
func (r *PaymentReconciler) confirm(ctx context.Context, scope string, recharge domain.PixRecharge, valueKnown bool) {
	r.logger.Info("pix payment confirmed",
		zap.String("txid", recharge.TxID),
		zap.String("cliente_id", scope),
		zap.String("valor", recharge.Value.String()),
	)

	if r.onConfirmed != nil {
		if err := r.onConfirmed(ctx, recharge); err != nil {
			r.logger.Warn("payment confirmation callback failed", zap.Error(err))
		}
	}

	text := "Recarga creditada"
	if valueKnown {
		text = fmt.Sprintf("Recarga de %s creditada", recharge.Value.Format())
	}
	toast := notify.Message{
		Type:  notify.TypeToast,
		Level: notify.LevelSuccess,
		Title: "Pagamento confirmado",
		Text:  text,
	}
	if err := r.notifier.Send(scope, toast); err != nil {
		r.logger.Debug("toast not delivered", zap.Error(err))
	}

	if err := r.notifier.Send(scope, notify.Message{Type: notify.TypeSound, Sound: PaymentSound}); err != nil {
		r.logger.Debug("sound not played", zap.Error(err))
	}

	r.cache.Invalidate(scope, cache.PaymentConfirmedKeys...)
}
