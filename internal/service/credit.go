package service

import (
	"context"
	"fmt"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/cache"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
	"go.uber.org/zap"
)

// Режимы функции buscar-extrato
const (
	statementModeEntries = "extrato"
	statementModeSummary = "resumo"
)

type statementRequest struct {
	ClientID string `json:"cliente_id"`
	Mode     string `json:"tipo"`
}

type statementResponse struct {
	Transactions []domain.Transaction `json:"transacoes"`
	Summary      *domain.Summary      `json:"resumo"`
}

// CreditService реализует domain.CreditService
type CreditService struct {
	api    RESTClient
	fns    FunctionInvoker
	cache  *cache.Cache
	logger *zap.Logger
}

// NewCreditService создает новый CreditService
func NewCreditService(api RESTClient, fns FunctionInvoker, c *cache.Cache, logger *zap.Logger) *CreditService {
	return &CreditService{
		api:    api,
		fns:    fns,
		cache:  c,
		logger: logger,
	}
}

// Statement выписка журнала клиента (кэшируется как extrato-creditos)
func (s *CreditService) Statement(ctx context.Context, clientID string) domain.Result[[]domain.Transaction] {
	if clientID == "" {
		return domain.Fail[[]domain.Transaction](ErrInvalidInput)
	}

	entries, err := cache.Fetch(ctx, s.cache, cache.KeyStatement, clientID, func(ctx context.Context) ([]domain.Transaction, error) {
		var resp statementResponse
		if err := s.fns.Invoke(ctx, backend.FnStatement, statementRequest{ClientID: clientID, Mode: statementModeEntries}, &resp); err != nil {
			return nil, err
		}
		if resp.Transactions == nil {
			resp.Transactions = []domain.Transaction{}
		}
		return resp.Transactions, nil
	})
	if err != nil {
		s.logger.Warn("failed to load statement", zap.String("cliente_id", clientID), zap.Error(err))
		return domain.Fail[[]domain.Transaction](fmt.Errorf("credit service: failed to load statement for client %s: %w", clientID, err))
	}

	return domain.Ok(entries)
}

// Summary агрегаты журнала клиента; всегда запрашиваются заново
func (s *CreditService) Summary(ctx context.Context, clientID string) domain.Result[domain.Summary] {
	if clientID == "" {
		return domain.Fail[domain.Summary](ErrInvalidInput)
	}

	var resp statementResponse
	if err := s.fns.Invoke(ctx, backend.FnStatement, statementRequest{ClientID: clientID, Mode: statementModeSummary}, &resp); err != nil {
		s.logger.Warn("failed to load summary", zap.String("cliente_id", clientID), zap.Error(err))
		return domain.Fail[domain.Summary](fmt.Errorf("credit service: failed to load summary for client %s: %w", clientID, err))
	}

	if resp.Summary != nil {
		return domain.Ok(*resp.Summary)
	}

	// Старые версии функции возвращают только записи журнала
	return domain.Ok(domain.Summarize(resp.Transactions))
}

// Balance балансы клиента (кэшируется как cliente-saldo-disponivel)
func (s *CreditService) Balance(ctx context.Context, clientID string) (*domain.BalanceView, error) {
	if clientID == "" {
		return nil, ErrInvalidInput
	}

	return cache.Fetch(ctx, s.cache, cache.KeyAvailableBalance, clientID, func(ctx context.Context) (*domain.BalanceView, error) {
		var balance domain.BalanceView
		if err := s.api.Get(ctx, resourcePath(clientsPath, clientID, "saldo"), nil, &balance); err != nil {
			return nil, fmt.Errorf("credit service: failed to get balance for client %s: %w", clientID, notFound(err))
		}
		return &balance, nil
	})
}

// AddManualCredit ручное начисление кредита клиенту
func (s *CreditService) AddManualCredit(ctx context.Context, req domain.ManualCreditRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if err := s.fns.Invoke(ctx, backend.FnAddManualCredit, req, nil); err != nil {
		return fmt.Errorf("credit service: failed to add credit for client %s: %w", req.ClientID, err)
	}

	s.logger.Info("manual credit added",
		zap.String("cliente_id", req.ClientID),
		zap.String("valor", req.Value.String()),
	)
	s.cache.Invalidate(req.ClientID, cache.LedgerChangedKeys...)
	return nil
}

// ConfirmManualPayment ручное подтверждение оплаты PIX по txid.
// Эффекты подтверждения приходят через поток изменений.
func (s *CreditService) ConfirmManualPayment(ctx context.Context, req domain.ManualPaymentRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if err := s.fns.Invoke(ctx, backend.FnManualPayment, req, nil); err != nil {
		return fmt.Errorf("credit service: failed to confirm payment %s: %w", req.TxID, err)
	}
	return nil
}
