package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
)

const usersPath = "/usuarios"

// UserService реализует domain.UserService
type UserService struct {
	api RESTClient
}

// NewUserService создает новый UserService
func NewUserService(api RESTClient) *UserService {
	return &UserService{api: api}
}

// List возвращает пользователей
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.api.Get(ctx, usersPath, url.Values{"order": {"nome.asc"}}, &users); err != nil {
		return nil, fmt.Errorf("user service: failed to list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Create создает пользователя
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == domain.RoleAdmin {
		req.ClientID = nil
	}

	var user domain.User
	if err := s.api.Post(ctx, usersPath, req, &user); err != nil {
		return nil, fmt.Errorf("user service: failed to create user %q: %w", req.Email, err)
	}
	return &user, nil
}

// Update изменяет пользователя
func (s *UserService) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == domain.RoleAdmin {
		req.ClientID = nil
	}

	var user domain.User
	if err := s.api.Put(ctx, resourcePath(usersPath, id), req, &user); err != nil {
		return nil, fmt.Errorf("user service: failed to update user %s: %w", id, notFound(err))
	}
	return &user, nil
}

// Delete удаляет пользователя
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.api.Delete(ctx, resourcePath(usersPath, id)); err != nil {
		return fmt.Errorf("user service: failed to delete user %s: %w", id, notFound(err))
	}
	return nil
}
