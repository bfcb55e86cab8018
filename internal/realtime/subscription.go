package realtime

import (
	"context"
	"sync"
)

// Handler обработчик изменений подписки.
// Обработчик не должен синхронно закрывать собственную подписку.
type Handler func(ctx context.Context, change Change)

// Subscription подписка на именованный канал.
// После возврата из Close обработчик не выполняется и новые события не доставляются.
type Subscription struct {
	name    string
	topic   string
	filter  Filter
	handler Handler
	feed    *Feed

	mu     sync.RWMutex
	closed bool
}

// Name имя канала
func (s *Subscription) Name() string {
	return s.name
}

// deliver вызывает обработчик, если подписка еще открыта
func (s *Subscription) deliver(ctx context.Context, change Change) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	s.handler(ctx, change)
}

// Close закрывает подписку, дожидаясь завершения выполняющегося обработчика
func (s *Subscription) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.feed.leave(ctx, s)
}

func (s *Subscription) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
