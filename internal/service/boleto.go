package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
	"go.uber.org/zap"
)

const boletosPath = "/boletos"

// BoletoService реализует domain.BoletoService
type BoletoService struct {
	api    RESTClient
	fns    FunctionInvoker
	logger *zap.Logger
}

// NewBoletoService создает новый BoletoService
func NewBoletoService(api RESTClient, fns FunctionInvoker, logger *zap.Logger) *BoletoService {
	return &BoletoService{
		api:    api,
		fns:    fns,
		logger: logger,
	}
}

// List возвращает boletos клиента
func (s *BoletoService) List(ctx context.Context, clientID string) ([]domain.Boleto, error) {
	if clientID == "" {
		return nil, ErrInvalidInput
	}

	query := url.Values{"cliente_id": {"eq." + clientID}, "order": {"vencimento.desc"}}
	var boletos []domain.Boleto
	if err := s.api.Get(ctx, boletosPath, query, &boletos); err != nil {
		return nil, fmt.Errorf("boleto service: failed to list boletos for client %s: %w", clientID, err)
	}
	if boletos == nil {
		boletos = []domain.Boleto{}
	}
	return boletos, nil
}

// Issue выпускает boleto через функцию банка
func (s *BoletoService) Issue(ctx context.Context, req domain.BoletoRequest) (*domain.Boleto, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var resp struct {
		Boleto domain.Boleto `json:"boleto"`
	}
	if err := s.fns.Invoke(ctx, backend.FnCreateBoleto, req, &resp); err != nil {
		return nil, fmt.Errorf("boleto service: failed to issue boleto for client %s: %w", req.ClientID, err)
	}

	s.logger.Info("boleto issued",
		zap.String("cliente_id", req.ClientID),
		zap.String("boleto_id", resp.Boleto.ID),
		zap.String("valor", req.Value.String()),
	)
	return &resp.Boleto, nil
}

// Cancel отменяет boleto
func (s *BoletoService) Cancel(ctx context.Context, req domain.CancelBoletoRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if err := s.fns.Invoke(ctx, backend.FnCancelBoleto, req, nil); err != nil {
		return fmt.Errorf("boleto service: failed to cancel boleto %s: %w", req.BoletoID, err)
	}
	return nil
}

// ConfigureWebhook настраивает webhook банка; общая ошибка повторяется один раз
func (s *BoletoService) ConfigureWebhook(ctx context.Context, req domain.WebhookRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	if err := s.fns.InvokeWithRetry(ctx, backend.FnConfigureWebhook, req, nil); err != nil {
		return fmt.Errorf("boleto service: failed to configure webhook: %w", err)
	}
	return nil
}
