package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"
)

// ErrPoolStopped возвращается при отправке задачи в остановленный пул
var ErrPoolStopped = errors.New("worker pool stopped")

// ErrQueueFull возвращается, когда очередь воркера заполнена
var ErrQueueFull = errors.New("worker queue is full")

// Task единица работы пула
type Task func(ctx context.Context)

// Pool пул воркеров с шардированием по ключу.
// Задачи с одинаковым ключом всегда выполняет один и тот же воркер в порядке отправки.
type Pool struct {
	workers int
	queues  []chan Task
	logger  *zap.Logger
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool создает новый worker pool
func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	queues := make([]chan Task, workers)
	for i := range queues {
		queues[i] = make(chan Task, queueSize)
	}

	return &Pool{
		workers: workers,
		queues:  queues,
		logger:  logger,
	}
}

// Start запускает worker pool
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop останавливает прием задач и дожидается выполнения уже поставленных
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Submit ставит задачу в очередь воркера, выбранного по ключу.
// Не блокируется: при заполненной очереди возвращает ErrQueueFull.
func (p *Pool) Submit(key string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queues[p.shard(key)] <- task:
		return nil
	default:
		p.logger.Warn("queue is full, dropping task", zap.String("key", key))
		return ErrQueueFull
	}
}

func (p *Pool) shard(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.workers))
}

// worker выполняет задачи своей очереди
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Info("worker started", zap.Int("worker_id", id))

	queue := p.queues[id]
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping", zap.Int("worker_id", id))
			return
		case task, ok := <-queue:
			if !ok {
				return
			}
			p.run(ctx, id, task)
		}
	}
}

// run выполняет задачу, паника в обработчике не останавливает воркер
func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("task panicked",
				zap.Int("worker_id", id),
				zap.Any("panic", rec),
			)
		}
	}()

	task(ctx)
}
