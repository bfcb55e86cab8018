package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job фоновая задача по расписанию
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler запускает задачи по cron расписанию
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// New создает новый Scheduler; timeout ограничивает один запуск задачи
func New(logger *zap.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With(zap.String("component", "scheduler")),
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start запускает планировщик
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop отменяет выполняющиеся задачи и ждет их завершения
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// AddJob регистрирует задачу. Примеры расписаний:
//   - "0 0 3 1 * *" - первого числа в 03:00
//   - "@every 10m"  - каждые 10 минут
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(s.ctx, job); err != nil {
			s.logger.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("job registered",
		zap.String("schedule", schedule),
		zap.String("job", job.Name()),
	)
	return nil
}

// RunNow выполняет задачу сразу, вне расписания
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Debug("running job", zap.String("job", job.Name()))
	if err := job.Run(ctx); err != nil {
		return err
	}
	s.logger.Debug("job completed",
		zap.String("job", job.Name()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
