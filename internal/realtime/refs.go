package realtime

import (
	"context"
	"sync"
)

// Subscriber открывает подписки; реализуется Feed
type Subscriber interface {
	Subscribe(ctx context.Context, name string, filter Filter, handler Handler) (*Subscription, error)
}

// refCounted подписки по ключу со счетчиком ссылок:
// открывается при первом acquire, закрывается при последнем release
type refCounted struct {
	mu   sync.Mutex
	subs map[string]*refSub
}

type refSub struct {
	sub  *Subscription
	refs int
}

func newRefCounted() *refCounted {
	return &refCounted{subs: make(map[string]*refSub)}
}

func (r *refCounted) acquire(ctx context.Context, key string, open func(ctx context.Context) (*Subscription, error)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rs, ok := r.subs[key]; ok {
		rs.refs++
		return false, nil
	}

	sub, err := open(ctx)
	if err != nil {
		return false, err
	}
	r.subs[key] = &refSub{sub: sub, refs: 1}
	return true, nil
}

func (r *refCounted) release(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	rs, ok := r.subs[key]
	if !ok {
		r.mu.Unlock()
		return false, nil
	}
	rs.refs--
	if rs.refs > 0 {
		r.mu.Unlock()
		return false, nil
	}
	delete(r.subs, key)
	r.mu.Unlock()

	return true, rs.sub.Close(ctx)
}

func (r *refCounted) active(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[key]
	return ok
}

func (r *refCounted) closeAll(ctx context.Context) {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*refSub)
	r.mu.Unlock()

	for _, rs := range subs {
		rs.sub.Close(ctx)
	}
}
