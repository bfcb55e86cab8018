package service

import (
	"context"
	"fmt"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
	"go.uber.org/zap"
)

// ClosingService реализует domain.ClosingService
type ClosingService struct {
	fns    FunctionInvoker
	logger *zap.Logger
}

// NewClosingService создает новый ClosingService
func NewClosingService(fns FunctionInvoker, logger *zap.Logger) *ClosingService {
	return &ClosingService{
		fns:    fns,
		logger: logger,
	}
}

// Close закрывает период (все клиенты или один)
func (s *ClosingService) Close(ctx context.Context, req domain.ClosingRequest) (*domain.ClosingResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var result domain.ClosingResult
	if err := s.fns.Invoke(ctx, backend.FnClosing, req, &result); err != nil {
		return nil, fmt.Errorf("closing service: failed to close period %s: %w", req.Period, err)
	}
	if result.Period == "" {
		result.Period = req.Period
	}

	s.logger.Info("period closed",
		zap.String("periodo", result.Period),
		zap.Int("clientes", result.ClientsCount),
		zap.String("valor_total", result.Total.String()),
	)
	return &result, nil
}
