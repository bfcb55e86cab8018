package cache

import (
	"context"
	"sync"
	"time"
)

// Key имя запроса в кэше (совпадает с ключами запросов интерфейса)
type Key string

const (
	KeyRechargeBalance  Key = "cliente-saldo-recarga"
	KeyAvailableBalance Key = "cliente-saldo-disponivel"
	KeyLoggedClient     Key = "cliente-logado"
	KeyRechargeHistory  Key = "recargas-historico"
	KeyStatement        Key = "extrato-creditos"
	KeyCarriers         Key = "transportadoras"
	KeyClients          Key = "clientes"
)

// PaymentConfirmedKeys ключи, сбрасываемые после подтверждения оплаты PIX
var PaymentConfirmedKeys = []Key{
	KeyRechargeBalance,
	KeyAvailableBalance,
	KeyLoggedClient,
	KeyRechargeHistory,
	KeyStatement,
}

// LedgerChangedKeys ключи, сбрасываемые при новой записи журнала
var LedgerChangedKeys = []Key{
	KeyStatement,
	KeyAvailableBalance,
}

// DefaultTTL время жизни записи без инвалидации
const DefaultTTL = 5 * time.Minute

// InvalidateFunc получает уведомление о сброшенных ключах области
type InvalidateFunc func(scope string, keys []Key)

type entryKey struct {
	key   Key
	scope string
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache кэш результатов запросов с явной инвалидацией.
// scope - область данных (обычно id клиента).
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[entryKey]entry
	listeners []InvalidateFunc
	now       func() time.Time
}

// New создает новый Cache
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[entryKey]entry),
		now:     time.Now,
	}
}

// OnInvalidate регистрирует слушателя инвалидаций
func (c *Cache) OnInvalidate(fn InvalidateFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Get возвращает значение, если оно есть и не устарело
func (c *Cache) Get(key Key, scope string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[entryKey{key, scope}]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, entryKey{key, scope})
		return nil, false
	}
	return e.value, true
}

// Set сохраняет значение
func (c *Cache) Set(key Key, scope string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entryKey{key, scope}] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate сбрасывает ключи области и уведомляет слушателей
func (c *Cache) Invalidate(scope string, keys ...Key) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, entryKey{key, scope})
	}
	listeners := append([]InvalidateFunc(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(scope, keys)
	}
}

// Fetch возвращает значение из кэша или загружает и сохраняет его.
// Ошибки загрузки не кэшируются.
func Fetch[T any](ctx context.Context, c *Cache, key Key, scope string, load func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key, scope); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, scope, value)
	return value, nil
}
