package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/validation"
)

const jobsPath = "/jobs"

// JobService реализует domain.JobService
type JobService struct {
	api RESTClient
}

// NewJobService создает новый JobService
func NewJobService(api RESTClient) *JobService {
	return &JobService{api: api}
}

// List возвращает задачи, опционально по клиенту
func (s *JobService) List(ctx context.Context, clientID string) ([]domain.Job, error) {
	query := url.Values{"order": {"created_at.desc"}}
	if clientID != "" {
		query.Set("cliente_id", "eq."+clientID)
	}

	var jobs []domain.Job
	if err := s.api.Get(ctx, jobsPath, query, &jobs); err != nil {
		return nil, fmt.Errorf("job service: failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return jobs, nil
}

// Get возвращает задачу
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	var job domain.Job
	if err := s.api.Get(ctx, resourcePath(jobsPath, id), nil, &job); err != nil {
		return nil, fmt.Errorf("job service: failed to get job %s: %w", id, notFound(err))
	}
	return &job, nil
}

// Create ставит задачу в очередь backend
func (s *JobService) Create(ctx context.Context, req domain.JobRequest) (*domain.Job, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var job domain.Job
	if err := s.api.Post(ctx, jobsPath, req, &job); err != nil {
		return nil, fmt.Errorf("job service: failed to create job %q: %w", req.Type, err)
	}
	return &job, nil
}
