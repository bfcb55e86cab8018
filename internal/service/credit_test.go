package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/cache"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/utils/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerEntries() []domain.Transaction {
	return []domain.Transaction{
		{ID: "1", ClientID: "c1", Type: domain.TransactionTypeRecharge, Value: 15000},
		{ID: "2", ClientID: "c1", Type: domain.TransactionTypeConsumption, Value: -2550},
		{ID: "3", ClientID: "c1", Type: domain.TransactionTypeConsumption, Value: 1000},
	}
}

func decodeStatementRequest(t *testing.T, r *http.Request) statementRequest {
	t.Helper()
	var req statementRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestCreditService_Statement(t *testing.T) {
	t.Run("Success is cached", func(t *testing.T) {
		fb, client, fns := newFakeBackend(t)
		svc := NewCreditService(client, fns, newTestCache(), testLogger())

		fb.handle("/functions/v1/"+backend.FnStatement, func(w http.ResponseWriter, r *http.Request) {
			req := decodeStatementRequest(t, r)
			assert.Equal(t, "c1", req.ClientID)
			assert.Equal(t, statementModeEntries, req.Mode)
			writeJSON(w, map[string]any{"success": true, "transacoes": ledgerEntries()})
		})

		result := svc.Statement(context.Background(), "c1")
		entries, err := result.Unwrap()
		require.NoError(t, err)
		assert.Len(t, entries, 3)

		svc.Statement(context.Background(), "c1")
		assert.Equal(t, 1, fb.Calls())
	})

	t.Run("Failure yields empty list", func(t *testing.T) {
		fb, client, fns := newFakeBackend(t)
		svc := NewCreditService(client, fns, newTestCache(), testLogger())

		fb.handle("/functions/v1/"+backend.FnStatement, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"success": false, "message": "Cliente sem extrato"})
		})

		result := svc.Statement(context.Background(), "c1")
		var soft *backend.SoftFailure
		require.ErrorAs(t, result.Err(), &soft)
		assert.Equal(t, "Cliente sem extrato", soft.Message)
		assert.NotNil(t, result.OrEmpty())
		assert.Empty(t, result.OrEmpty())
	})

	t.Run("Empty client id", func(t *testing.T) {
		_, client, fns := newFakeBackend(t)
		svc := NewCreditService(client, fns, newTestCache(), testLogger())
		assert.ErrorIs(t, svc.Statement(context.Background(), "").Err(), ErrInvalidInput)
	})
}

func TestCreditService_Summary(t *testing.T) {
	t.Run("Aggregates from function", func(t *testing.T) {
		fb, client, fns := newFakeBackend(t)
		svc := NewCreditService(client, fns, newTestCache(), testLogger())

		fb.handle("/functions/v1/"+backend.FnStatement, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, statementModeSummary, decodeStatementRequest(t, r).Mode)
			writeJSON(w, map[string]any{
				"success": true,
				"resumo":  domain.Summary{TotalRecharges: 15000, RechargeCount: 1, Balance: 15000},
			})
		})

		summary, err := svc.Summary(context.Background(), "c1").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, money.Cents(15000), summary.TotalRecharges)

		// Сводка не кэшируется
		svc.Summary(context.Background(), "c1")
		assert.Equal(t, 2, fb.Calls())
	})

	t.Run("Computed from entries", func(t *testing.T) {
		fb, client, fns := newFakeBackend(t)
		svc := NewCreditService(client, fns, newTestCache(), testLogger())

		fb.handle("/functions/v1/"+backend.FnStatement, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"transacoes": ledgerEntries()})
		})

		summary, err := svc.Summary(context.Background(), "c1").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, money.Cents(15000), summary.TotalRecharges)
		assert.Equal(t, money.Cents(3550), summary.TotalConsumptions)
		assert.Equal(t, 2, summary.ConsumptionCount)
		assert.Equal(t, money.Cents(11450), summary.Balance)
	})

	t.Run("Backend error", func(t *testing.T) {
		fb, client, fns := newFakeBackend(t)
		svc := NewCreditService(client, fns, newTestCache(), testLogger())

		fb.handle("/functions/v1/"+backend.FnStatement, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		result := svc.Summary(context.Background(), "c1")
		assert.ErrorIs(t, result.Err(), backend.ErrServer)
		assert.Equal(t, domain.Summary{}, result.OrEmpty())
	})
}

func TestCreditService_Balance(t *testing.T) {
	fb, client, fns := newFakeBackend(t)
	c := newTestCache()
	svc := NewCreditService(client, fns, c, testLogger())

	fb.handle("/api/clientes/c1/saldo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, domain.BalanceView{Available: 11450, Recharge: 15000})
	})

	balance, err := svc.Balance(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, money.Cents(11450), balance.Available)

	_, err = svc.Balance(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, fb.Calls())

	c.Invalidate("c1", cache.LedgerChangedKeys...)
	_, err = svc.Balance(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, fb.Calls())
}

func TestCreditService_AddManualCredit(t *testing.T) {
	fb, client, fns := newFakeBackend(t)
	c := newTestCache()
	svc := NewCreditService(client, fns, c, testLogger())

	var invalidated []cache.Key
	c.OnInvalidate(func(scope string, keys []cache.Key) {
		assert.Equal(t, "c1", scope)
		invalidated = append(invalidated, keys...)
	})

	fb.handle("/functions/v1/"+backend.FnAddManualCredit, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 50.0, body["valor"])
		writeJSON(w, map[string]any{"success": true})
	})

	t.Run("Success", func(t *testing.T) {
		err := svc.AddManualCredit(context.Background(), domain.ManualCreditRequest{
			ClientID: "c1", Value: 5000, Description: "Bonificação",
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, cache.LedgerChangedKeys, invalidated)
	})

	t.Run("Non-positive value rejected locally", func(t *testing.T) {
		before := fb.Calls()
		err := svc.AddManualCredit(context.Background(), domain.ManualCreditRequest{
			ClientID: "c1", Value: 0, Description: "Bonificação",
		})
		assert.Error(t, err)
		assert.Equal(t, before, fb.Calls())
	})
}

func TestCreditService_ConfirmManualPayment(t *testing.T) {
	fb, client, fns := newFakeBackend(t)
	svc := NewCreditService(client, fns, newTestCache(), testLogger())

	fb.handle("/functions/v1/"+backend.FnManualPayment, func(w http.ResponseWriter, r *http.Request) {
		var body domain.ManualPaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.TxID == "unknown" {
			writeJSON(w, map[string]any{"success": false, "message": "Recarga não encontrada"})
			return
		}
		writeJSON(w, map[string]any{"success": true})
	})

	require.NoError(t, svc.ConfirmManualPayment(context.Background(), domain.ManualPaymentRequest{TxID: "tx1"}))

	err := svc.ConfirmManualPayment(context.Background(), domain.ManualPaymentRequest{TxID: "unknown"})
	assert.Equal(t, "Recarga não encontrada", backend.UserMessage(err))
}
