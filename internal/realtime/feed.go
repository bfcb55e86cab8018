package realtime

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avc/frete-console/internal/worker"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	writeWait         = 10 * time.Second
	dialTimeout       = 30 * time.Second
	heartbeatInterval = 25 * time.Second
	readLimit         = 1 << 20

	baseReconnectDelay = 2 * time.Second
	maxReconnectDelay  = time.Minute
)

// События протокола каналов
const (
	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"

	phoenixTopic = "phoenix"
)

var (
	// ErrAlreadySubscribed канал с таким именем уже открыт
	ErrAlreadySubscribed = errors.New("realtime: channel already subscribed")
	errNotConnected      = errors.New("realtime: not connected")
)

// Dispatcher выполняет доставку событий; события одного ключа доставляются по порядку
type Dispatcher interface {
	Submit(key string, task worker.Task) error
}

// FeedConfig параметры подключения к потоку изменений
type FeedConfig struct {
	URL    string
	APIKey string
}

type frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
}

type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// Feed клиент websocket потока изменений backend
type Feed struct {
	url        string
	apiKey     string
	httpClient *http.Client
	dispatcher Dispatcher
	logger     *zap.Logger
	heartbeat  time.Duration
	ref        atomic.Uint64

	mu   sync.Mutex
	conn *websocket.Conn
	subs map[string]*Subscription

	writeMu sync.Mutex
}

// NewFeed создает новый Feed
func NewFeed(cfg FeedConfig, dispatcher Dispatcher, logger *zap.Logger) *Feed {
	return &Feed{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: newHTTP1Client(),
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("component", "realtime_feed")),
		heartbeat:  heartbeatInterval,
		subs:       make(map[string]*Subscription),
	}
}

// newHTTP1Client websocket upgrade требует HTTP/1.1
func newHTTP1Client() *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	transport.ForceAttemptHTTP2 = false
	transport.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}
	return &http.Client{Transport: transport}
}

// Run держит соединение открытым до отмены ctx, переподключаясь с паузой.
// После успешного подключения пауза снова начинается с baseReconnectDelay.
func (f *Feed) Run(ctx context.Context) error {
	var backoff reconnectBackoff

	for {
		connected, err := f.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			backoff.reset()
		}

		delay := backoff.next()
		f.logger.Warn("realtime connection lost, reconnecting",
			zap.Error(err),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// reconnectBackoff экспоненциальная пауза между попытками подключения
type reconnectBackoff struct {
	delay time.Duration
}

func (b *reconnectBackoff) next() time.Duration {
	if b.delay == 0 {
		b.delay = baseReconnectDelay
		return b.delay
	}
	b.delay *= 2
	if b.delay > maxReconnectDelay {
		b.delay = maxReconnectDelay
	}
	return b.delay
}

func (b *reconnectBackoff) reset() {
	b.delay = 0
}

// Connected есть ли сейчас соединение с потоком изменений
func (f *Feed) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn != nil
}

// Subscribe открывает подписку на канал name.
// Если соединение еще не установлено, join будет отправлен после подключения.
func (f *Feed) Subscribe(ctx context.Context, name string, filter Filter, handler Handler) (*Subscription, error) {
	sub := &Subscription{
		name:    name,
		topic:   "realtime:" + name,
		filter:  filter,
		handler: handler,
		feed:    f,
	}

	f.mu.Lock()
	if _, ok := f.subs[sub.topic]; ok {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadySubscribed, name)
	}
	f.subs[sub.topic] = sub
	conn := f.conn
	f.mu.Unlock()

	if conn != nil {
		if err := f.join(ctx, conn, sub); err != nil {
			f.logger.Warn("failed to join channel, will retry on reconnect",
				zap.String("channel", name),
				zap.Error(err),
			)
		}
	}

	f.logger.Info("subscribed to channel",
		zap.String("channel", name),
		zap.String("table", filter.Table),
		zap.String("event", string(filter.Event)),
	)

	return sub, nil
}

// leave удаляет подписку и отправляет phx_leave
func (f *Feed) leave(ctx context.Context, sub *Subscription) error {
	f.mu.Lock()
	if f.subs[sub.topic] == sub {
		delete(f.subs, sub.topic)
	}
	conn := f.conn
	f.mu.Unlock()

	f.logger.Info("unsubscribed from channel", zap.String("channel", sub.name))

	if conn == nil {
		return nil
	}

	err := f.write(ctx, conn, frame{Topic: sub.topic, Event: eventLeave, Payload: json.RawMessage("{}"), Ref: f.nextRef()})
	if err != nil {
		f.logger.Debug("failed to send leave", zap.String("channel", sub.name), zap.Error(err))
	}
	return nil
}

// session одно соединение: dial, join всех подписок, heartbeat и чтение до ошибки.
// connected true, если соединение было установлено.
func (f *Feed) session(ctx context.Context) (connected bool, err error) {
	conn, err := f.dial(ctx)
	if err != nil {
		return false, err
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	f.conn = conn
	subs := make([]*Subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		if f.conn == conn {
			f.conn = nil
		}
		f.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	f.logger.Info("connected to realtime feed", zap.Int("channels", len(subs)))

	for _, sub := range subs {
		if err := f.join(connCtx, conn, sub); err != nil {
			return true, err
		}
	}

	go f.heartbeatLoop(connCtx, conn)

	return true, f.readLoop(connCtx, conn)
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(f.url)
	if err != nil {
		return nil, fmt.Errorf("realtime: invalid url: %w", err)
	}
	q := u.Query()
	if f.apiKey != "" {
		q.Set("apikey", f.apiKey)
	}
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, u.String(), &websocket.DialOptions{
		HTTPClient: f.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("realtime: failed to dial: %w", err)
	}
	conn.SetReadLimit(readLimit)

	return conn, nil
}

func (f *Feed) join(ctx context.Context, conn *websocket.Conn, sub *Subscription) error {
	payload, err := json.Marshal(map[string]any{
		"config": map[string]any{
			"postgres_changes": []Filter{sub.filter},
		},
		"access_token": f.apiKey,
	})
	if err != nil {
		return fmt.Errorf("realtime: failed to encode join: %w", err)
	}

	return f.write(ctx, conn, frame{Topic: sub.topic, Event: eventJoin, Payload: payload, Ref: f.nextRef()})
}

func (f *Feed) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(f.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := f.write(ctx, conn, frame{Topic: phoenixTopic, Event: eventHeartbeat, Payload: json.RawMessage("{}"), Ref: f.nextRef()})
			if err != nil {
				f.logger.Warn("heartbeat failed", zap.Error(err))
				conn.Close(websocket.StatusGoingAway, "heartbeat failed")
				return
			}
		}
	}
}

func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("realtime: read failed: %w", err)
		}

		var fr frame
		if err := json.Unmarshal(data, &fr); err != nil {
			f.logger.Warn("failed to decode realtime frame", zap.Error(err))
			continue
		}

		f.handleFrame(fr)
	}
}

func (f *Feed) handleFrame(fr frame) {
	switch fr.Event {
	case eventChanges:
		f.dispatch(fr)

	case eventReply:
		var reply replyPayload
		if err := json.Unmarshal(fr.Payload, &reply); err == nil && reply.Status != "ok" {
			f.logger.Warn("realtime request rejected",
				zap.String("topic", fr.Topic),
				zap.String("status", reply.Status),
				zap.ByteString("response", reply.Response),
			)
		}

	case eventError, eventClose:
		f.logger.Warn("realtime channel event",
			zap.String("topic", fr.Topic),
			zap.String("event", fr.Event),
		)

	default:
		f.logger.Debug("ignoring realtime frame",
			zap.String("topic", fr.Topic),
			zap.String("event", fr.Event),
		)
	}
}

func (f *Feed) dispatch(fr frame) {
	f.mu.Lock()
	sub, ok := f.subs[fr.Topic]
	f.mu.Unlock()
	if !ok || sub.isClosed() {
		return
	}

	var payload struct {
		Data Change `json:"data"`
	}
	if err := json.Unmarshal(fr.Payload, &payload); err != nil {
		f.logger.Warn("failed to decode change",
			zap.String("channel", sub.name),
			zap.Error(err),
		)
		return
	}

	change := payload.Data
	err := f.dispatcher.Submit(sub.topic, func(ctx context.Context) {
		sub.deliver(ctx, change)
	})
	if err != nil {
		f.logger.Warn("failed to dispatch change",
			zap.String("channel", sub.name),
			zap.Error(err),
		)
	}
}

func (f *Feed) write(ctx context.Context, conn *websocket.Conn, fr frame) error {
	if conn == nil {
		return errNotConnected
	}

	data, err := json.Marshal(fr)
	if err != nil {
		return fmt.Errorf("realtime: failed to encode frame: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (f *Feed) nextRef() string {
	return strconv.FormatUint(f.ref.Add(1), 10)
}
