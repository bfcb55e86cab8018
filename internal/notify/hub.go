package notify

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/avc/frete-console/internal/cache"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// ErrNoListeners нет подключенных клиентов для адресата
var ErrNoListeners = errors.New("no websocket listeners")

// MessageType тип сообщения для интерфейса
type MessageType string

const (
	TypeToast      MessageType = "toast"
	TypeSound      MessageType = "sound"
	TypeCloseModal MessageType = "close_modal"
	TypeInvalidate MessageType = "invalidate"
	TypeLogout     MessageType = "logout"
)

// Уровни toast
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// Message сообщение, отправляемое браузеру
type Message struct {
	Type    MessageType `json:"type"`
	Level   string      `json:"nivel,omitempty"`
	Title   string      `json:"titulo,omitempty"`
	Text    string      `json:"mensagem,omitempty"`
	Keys    []cache.Key `json:"chaves,omitempty"`
	Sound   string      `json:"som,omitempty"`
	Payload any         `json:"dados,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub рассылает UI эффекты подключенным браузерам.
// Клиенты адресуются по области (id клиента) и по сессии.
type Hub struct {
	mu      sync.RWMutex
	scopes  map[string]map[*conn]struct{}
	session map[string]map[*conn]struct{}
	logger  *zap.Logger
}

type conn struct {
	ws        *websocket.Conn
	sessionID string
	scope     string
	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub создает новый Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		scopes:  make(map[string]map[*conn]struct{}),
		session: make(map[string]map[*conn]struct{}),
		logger:  logger,
	}
}

// SetCheckOrigin задает проверку Origin при upgrade
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// Serve переводит запрос в websocket и блокируется до отключения клиента
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID, scope string) error {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &conn{
		ws:        ws,
		sessionID: sessionID,
		scope:     scope,
		send:      make(chan Message, sendBuffer),
		done:      make(chan struct{}),
	}

	h.register(c)
	defer h.unregister(c)

	go h.writePump(c)
	h.readPump(c)

	return nil
}

// Send отправляет сообщение всем подключениям области
func (h *Hub) Send(scope string, msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.deliver(h.scopes[scope], msg)
}

// SendToSession отправляет сообщение всем подключениям сессии
func (h *Hub) SendToSession(sessionID string, msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.deliver(h.session[sessionID], msg)
}

// Invalidate сообщает браузерам области о сброшенных ключах кэша
func (h *Hub) Invalidate(scope string, keys []cache.Key) {
	if err := h.Send(scope, Message{Type: TypeInvalidate, Keys: keys}); err != nil && !errors.Is(err, ErrNoListeners) {
		h.logger.Warn("failed to push invalidation", zap.String("scope", scope), zap.Error(err))
	}
}

// Connections количество подключений области
func (h *Hub) Connections(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scopes[scope])
}

func (h *Hub) deliver(conns map[*conn]struct{}, msg Message) error {
	if len(conns) == 0 {
		return ErrNoListeners
	}

	for c := range conns {
		select {
		case c.send <- msg:
		case <-c.done:
		default:
			h.logger.Warn("websocket send buffer full, dropping message",
				zap.String("session_id", c.sessionID),
				zap.String("type", string(msg.Type)),
			)
		}
	}
	return nil
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.scopes[c.scope] == nil {
		h.scopes[c.scope] = make(map[*conn]struct{})
	}
	h.scopes[c.scope][c] = struct{}{}

	if h.session[c.sessionID] == nil {
		h.session[c.sessionID] = make(map[*conn]struct{})
	}
	h.session[c.sessionID][c] = struct{}{}

	h.logger.Info("websocket client registered",
		zap.String("session_id", c.sessionID),
		zap.String("scope", c.scope),
		zap.Int("connection_count", len(h.scopes[c.scope])),
	)
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	if conns, ok := h.scopes[c.scope]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.scopes, c.scope)
		}
	}
	if conns, ok := h.session[c.sessionID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.session, c.sessionID)
		}
	}
	h.mu.Unlock()

	c.close()
	h.logger.Info("websocket client unregistered",
		zap.String("session_id", c.sessionID),
		zap.String("scope", c.scope),
	)
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// readPump читает входящие кадры только для обработки pong и закрытия
func (h *Hub) readPump(c *conn) {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.String("session_id", c.sessionID), zap.Error(err))
			}
			return
		}
	}
}

// writePump единственный писатель в соединение
func (h *Hub) writePump(c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				h.logger.Warn("failed to send websocket message",
					zap.String("session_id", c.sessionID),
					zap.String("type", string(msg.Type)),
					zap.Error(err),
				)
				return
			}
			if msg.Type == TypeLogout {
				c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "logout"))
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
