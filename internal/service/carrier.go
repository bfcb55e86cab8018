package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/avc/frete-console/internal/cache"
	"github.com/avc/frete-console/internal/domain"
	"go.uber.org/zap"
)

const carriersPath = "/transportadoras"

// CarrierService реализует domain.CarrierService
type CarrierService struct {
	api    RESTClient
	cache  *cache.Cache
	logger *zap.Logger
}

// NewCarrierService создает новый CarrierService
func NewCarrierService(api RESTClient, c *cache.Cache, logger *zap.Logger) *CarrierService {
	return &CarrierService{
		api:    api,
		cache:  c,
		logger: logger,
	}
}

// List возвращает активных перевозчиков; при ошибке backend - пустой список
func (s *CarrierService) List(ctx context.Context) []domain.Carrier {
	carriers, err := cache.Fetch(ctx, s.cache, cache.KeyCarriers, "", func(ctx context.Context) ([]domain.Carrier, error) {
		var carriers []domain.Carrier
		query := url.Values{"ativo": {"eq.true"}, "order": {"nome.asc"}}
		if err := s.api.Get(ctx, carriersPath, query, &carriers); err != nil {
			return nil, err
		}
		return carriers, nil
	})
	if err != nil {
		s.logger.Warn("failed to load carriers, showing empty list", zap.Error(err))
		return []domain.Carrier{}
	}
	if carriers == nil {
		return []domain.Carrier{}
	}
	return carriers
}

// Get возвращает перевозчика
func (s *CarrierService) Get(ctx context.Context, id string) (*domain.Carrier, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	var carrier domain.Carrier
	if err := s.api.Get(ctx, resourcePath(carriersPath, id), nil, &carrier); err != nil {
		return nil, fmt.Errorf("carrier service: failed to get carrier %s: %w", id, notFound(err))
	}
	return &carrier, nil
}
