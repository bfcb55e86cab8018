package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avc/frete-console/internal/cache"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/utils/cpfcnpj"
	"github.com/avc/frete-console/internal/validation"
)

const clientsPath = "/clientes"

// ClientService реализует domain.ClientService
type ClientService struct {
	api   RESTClient
	cache *cache.Cache
}

// NewClientService создает новый ClientService
func NewClientService(api RESTClient, c *cache.Cache) *ClientService {
	return &ClientService{
		api:   api,
		cache: c,
	}
}

// List возвращает клиентов по фильтру
func (s *ClientService) List(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error) {
	if err := validation.Struct(filter); err != nil {
		return nil, err
	}

	var clients []domain.Client
	if err := s.api.Get(ctx, clientsPath, filter.Query(), &clients); err != nil {
		return nil, fmt.Errorf("client service: failed to list clients: %w", err)
	}
	if clients == nil {
		clients = []domain.Client{}
	}

	return clients, nil
}

// Get возвращает клиента (кэшируется как cliente-logado)
func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	return cache.Fetch(ctx, s.cache, cache.KeyLoggedClient, id, func(ctx context.Context) (*domain.Client, error) {
		return s.load(ctx, id)
	})
}

func (s *ClientService) load(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	if err := s.api.Get(ctx, resourcePath(clientsPath, id), nil, &client); err != nil {
		return nil, fmt.Errorf("client service: failed to get client %s: %w", id, notFound(err))
	}
	return &client, nil
}

// Create создает клиента
func (s *ClientService) Create(ctx context.Context, req domain.ClientRequest) (*domain.Client, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	client := domain.Client{CarrierConfigs: []domain.CarrierConfig{}}
	applyClientRequest(&client, req)

	var created domain.Client
	if err := s.api.Post(ctx, clientsPath, client, &created); err != nil {
		return nil, fmt.Errorf("client service: failed to create client %q: %w", req.CompanyName, err)
	}

	return &created, nil
}

// Update полностью заменяет клиента; настройки перевозчиков сохраняются
func (s *ClientService) Update(ctx context.Context, id string, req domain.ClientRequest) (*domain.Client, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	client, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClientRequest(client, req)

	return s.put(ctx, client)
}

// Delete удаляет клиента
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}

	if err := s.api.Delete(ctx, resourcePath(clientsPath, id)); err != nil {
		return fmt.Errorf("client service: failed to delete client %s: %w", id, notFound(err))
	}

	s.cache.Invalidate(id, cache.KeyLoggedClient)
	return nil
}

// SaveCarrierConfigs заменяет массив настроек перевозчиков целиком.
// Неактивные строки не сохраняются. Проверяются только строки, отличающиеся
// от сохраненных. Конкурентные сохранения: побеждает последнее.
func (s *ClientService) SaveCarrierConfigs(ctx context.Context, clientID string, configs []domain.CarrierConfig) (*domain.Client, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]domain.CarrierConfig, len(client.CarrierConfigs))
	for _, cfg := range client.CarrierConfigs {
		stored[cfg.CarrierID] = cfg
	}

	var errs validation.Errors
	active := make([]domain.CarrierConfig, 0, len(configs))
	for i, cfg := range configs {
		if !cfg.Active {
			continue
		}
		if prev, ok := stored[cfg.CarrierID]; ok && sameCarrierConfig(prev, cfg) {
			active = append(active, cfg)
			continue
		}
		if cfg.SurchargeValue > 0 {
			if err := validation.Struct(validation.FormFromConfig(cfg, client.Settings.RequireSizeLimits)); err != nil {
				var formErrs validation.Errors
				if !errors.As(err, &formErrs) {
					return nil, err
				}
				for _, fe := range formErrs {
					fe.Field = fmt.Sprintf("transportadora_configuracoes[%d].%s", i, fe.Field)
					errs = append(errs, fe)
				}
			}
		}
		active = append(active, cfg)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	client.CarrierConfigs = active
	return s.put(ctx, client)
}

func sameCarrierConfig(a, b domain.CarrierConfig) bool {
	return a.Active == b.Active &&
		a.SurchargeType == b.SurchargeType &&
		a.SurchargeValue == b.SurchargeValue &&
		sameLimit(a.MaxHeight, b.MaxHeight) &&
		sameLimit(a.MaxWidth, b.MaxWidth) &&
		sameLimit(a.MaxLength, b.MaxLength) &&
		sameLimit(a.MaxWeight, b.MaxWeight)
}

func sameLimit(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *ClientService) put(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	var saved domain.Client
	if err := s.api.Put(ctx, resourcePath(clientsPath, client.ID), client, &saved); err != nil {
		return nil, fmt.Errorf("client service: failed to save client %s: %w", client.ID, notFound(err))
	}
	if saved.ID == "" {
		saved = *client
	}

	s.cache.Invalidate(client.ID, cache.KeyLoggedClient)
	return &saved, nil
}

func applyClientRequest(client *domain.Client, req domain.ClientRequest) {
	client.CompanyName = strings.TrimSpace(req.CompanyName)
	client.Document = cpfcnpj.Normalize(req.Document)
	client.Email = strings.ToLower(strings.TrimSpace(req.Email))
	client.Phone = req.Phone
	client.Address = domain.Address{
		ZipCode:    req.Address.ZipCode,
		Street:     req.Address.Street,
		Number:     req.Address.Number,
		Complement: req.Address.Complement,
		District:   req.Address.District,
		City:       req.Address.City,
		State:      strings.ToUpper(req.Address.State),
	}
	client.Settings = req.Settings
	client.Active = req.Active
	client.PlanID = req.PlanID
	if client.CarrierConfigs == nil {
		client.CarrierConfigs = []domain.CarrierConfig{}
	}
}
