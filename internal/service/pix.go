package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/cache"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
)

const pixRechargesPath = "/recargas-pix"

// PixService реализует domain.PixService
type PixService struct {
	api   RESTClient
	fns   FunctionInvoker
	cache *cache.Cache
}

// NewPixService создает новый PixService
func NewPixService(api RESTClient, fns FunctionInvoker, c *cache.Cache) *PixService {
	return &PixService{
		api:   api,
		fns:   fns,
		cache: c,
	}
}

// CreateRecharge создает пополнение; статус pendente_pagamento до подтверждения банком
func (s *PixService) CreateRecharge(ctx context.Context, req domain.PixRechargeRequest) (*domain.PixRecharge, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var resp struct {
		Recharge domain.PixRecharge `json:"recarga"`
	}
	if err := s.fns.Invoke(ctx, backend.FnCreatePixRecharge, req, &resp); err != nil {
		return nil, fmt.Errorf("pix service: failed to create recharge for client %s: %w", req.ClientID, err)
	}

	s.cache.Invalidate(req.ClientID, cache.KeyRechargeHistory)
	return &resp.Recharge, nil
}

// ListRecharges история пополнений клиента (кэшируется как recargas-historico)
func (s *PixService) ListRecharges(ctx context.Context, clientID string) ([]domain.PixRecharge, error) {
	if clientID == "" {
		return nil, ErrInvalidInput
	}

	return cache.Fetch(ctx, s.cache, cache.KeyRechargeHistory, clientID, func(ctx context.Context) ([]domain.PixRecharge, error) {
		query := url.Values{"cliente_id": {"eq." + clientID}, "order": {"created_at.desc"}}
		var recharges []domain.PixRecharge
		if err := s.api.Get(ctx, pixRechargesPath, query, &recharges); err != nil {
			return nil, fmt.Errorf("pix service: failed to list recharges for client %s: %w", clientID, err)
		}
		if recharges == nil {
			recharges = []domain.PixRecharge{}
		}
		return recharges, nil
	})
}
