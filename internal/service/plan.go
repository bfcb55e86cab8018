package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
)

const plansPath = "/planos"

// PlanService реализует domain.PlanService
type PlanService struct {
	api RESTClient
}

// NewPlanService создает новый PlanService
func NewPlanService(api RESTClient) *PlanService {
	return &PlanService{api: api}
}

// List возвращает тарифные планы
func (s *PlanService) List(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan
	if err := s.api.Get(ctx, plansPath, url.Values{"order": {"preco.asc"}}, &plans); err != nil {
		return nil, fmt.Errorf("plan service: failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []domain.Plan{}
	}
	return plans, nil
}

// Get возвращает тарифный план
func (s *PlanService) Get(ctx context.Context, id string) (*domain.Plan, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	var plan domain.Plan
	if err := s.api.Get(ctx, resourcePath(plansPath, id), nil, &plan); err != nil {
		return nil, fmt.Errorf("plan service: failed to get plan %s: %w", id, notFound(err))
	}
	return &plan, nil
}

// Create создает тарифный план
func (s *PlanService) Create(ctx context.Context, req domain.PlanRequest) (*domain.Plan, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var created domain.Plan
	if err := s.api.Post(ctx, plansPath, planFromRequest("", req), &created); err != nil {
		return nil, fmt.Errorf("plan service: failed to create plan %q: %w", req.Name, err)
	}
	return &created, nil
}

// Update полностью заменяет тарифный план
func (s *PlanService) Update(ctx context.Context, id string, req domain.PlanRequest) (*domain.Plan, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	plan := planFromRequest(id, req)
	var saved domain.Plan
	if err := s.api.Put(ctx, resourcePath(plansPath, id), plan, &saved); err != nil {
		return nil, fmt.Errorf("plan service: failed to update plan %s: %w", id, notFound(err))
	}
	if saved.ID == "" {
		saved = plan
	}
	return &saved, nil
}

// Delete удаляет тарифный план
func (s *PlanService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.api.Delete(ctx, resourcePath(plansPath, id)); err != nil {
		return fmt.Errorf("plan service: failed to delete plan %s: %w", id, notFound(err))
	}
	return nil
}

func planFromRequest(id string, req domain.PlanRequest) domain.Plan {
	return domain.Plan{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		ShipmentLimit: req.ShipmentLimit,
		Active:        req.Active,
	}
}
