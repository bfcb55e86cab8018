package scheduler

import (
	"context"
	"time"

	"github.com/avc/frete-console/internal/domain"
	"go.uber.org/zap"
)

// ClosingJob закрывает предыдущий месяц для всех клиентов
type ClosingJob struct {
	closing domain.ClosingService
	logger  *zap.Logger
	now     func() time.Time
}

// NewClosingJob создает новый ClosingJob
func NewClosingJob(closing domain.ClosingService, logger *zap.Logger) *ClosingJob {
	return &ClosingJob{
		closing: closing,
		logger:  logger,
		now:     time.Now,
	}
}

func (j *ClosingJob) Name() string {
	return "fechamento-mensal"
}

func (j *ClosingJob) Run(ctx context.Context) error {
	result, err := j.closing.Close(ctx, domain.ClosingRequest{Period: PreviousPeriod(j.now())})
	if err != nil {
		return err
	}

	j.logger.Info("scheduled closing finished",
		zap.String("periodo", result.Period),
		zap.Int("clientes", result.ClientsCount),
	)
	return nil
}

// PreviousPeriod месяц, предшествующий t, в формате 2006-01
func PreviousPeriod(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, -1, 0).Format("2006-01")
}

// Sweeper удаляет истекшие сессии
type Sweeper interface {
	Sweep() int
}

// SessionSweepJob периодическая очистка истекших сессий
type SessionSweepJob struct {
	sessions Sweeper
	logger   *zap.Logger
}

// NewSessionSweepJob создает новый SessionSweepJob
func NewSessionSweepJob(sessions Sweeper, logger *zap.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		sessions: sessions,
		logger:   logger,
	}
}

func (j *SessionSweepJob) Name() string {
	return "limpeza-sessoes"
}

func (j *SessionSweepJob) Run(ctx context.Context) error {
	if removed := j.sessions.Sweep(); removed > 0 {
		j.logger.Info("expired sessions removed", zap.Int("count", removed))
	}
	return nil
}

// RedirectPurger удаляет просроченные адреса возврата
type RedirectPurger interface {
	PurgeExpiredRedirects(ctx context.Context) (int64, error)
}

// RedirectPurgeJob очистка адресов возврата, которые так и не использовали
type RedirectPurgeJob struct {
	redirects RedirectPurger
	logger    *zap.Logger
}

// NewRedirectPurgeJob создает новый RedirectPurgeJob
func NewRedirectPurgeJob(redirects RedirectPurger, logger *zap.Logger) *RedirectPurgeJob {
	return &RedirectPurgeJob{
		redirects: redirects,
		logger:    logger,
	}
}

func (j *RedirectPurgeJob) Name() string {
	return "limpeza-redirecionamentos"
}

func (j *RedirectPurgeJob) Run(ctx context.Context) error {
	removed, err := j.redirects.PurgeExpiredRedirects(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logger.Info("expired login redirects removed", zap.Int64("count", removed))
	}
	return nil
}
