package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avc/frete-console/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// fakeRealtime минимальный сервер каналов для тестов
type fakeRealtime struct {
	server *httptest.Server
	joins  chan frame
	leaves chan frame

	mu   sync.Mutex
	conn *websocket.Conn
}

func newFakeRealtime(t *testing.T) *fakeRealtime {
	t.Helper()
	fr := &fakeRealtime{
		joins:  make(chan frame, 16),
		leaves: make(chan frame, 16),
	}

	fr.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		fr.mu.Lock()
		fr.conn = conn
		fr.mu.Unlock()

		ctx := r.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var in frame
			if err := json.Unmarshal(data, &in); err != nil {
				continue
			}
			switch in.Event {
			case eventJoin:
				fr.reply(ctx, in)
				fr.joins <- in
			case eventLeave:
				fr.reply(ctx, in)
				fr.leaves <- in
			case eventHeartbeat:
				fr.reply(ctx, in)
			}
		}
	}))
	t.Cleanup(fr.server.Close)

	return fr
}

func (fr *fakeRealtime) url() string {
	return "ws" + strings.TrimPrefix(fr.server.URL, "http")
}

func (fr *fakeRealtime) reply(ctx context.Context, in frame) {
	fr.write(ctx, frame{Topic: in.Topic, Event: eventReply, Ref: in.Ref, Payload: json.RawMessage(`{"status":"ok","response":{}}`)})
}

func (fr *fakeRealtime) write(ctx context.Context, out frame) error {
	fr.mu.Lock()
	conn := fr.conn
	fr.mu.Unlock()

	data, _ := json.Marshal(out)
	return conn.Write(ctx, websocket.MessageText, data)
}

func (fr *fakeRealtime) push(t *testing.T, topic string, change Change) {
	t.Helper()
	payload, err := json.Marshal(map[string]Change{"data": change})
	require.NoError(t, err)
	require.NoError(t, fr.write(context.Background(), frame{Topic: topic, Event: eventChanges, Payload: payload}))
}

func (fr *fakeRealtime) pushRaw(t *testing.T, topic, payload string) {
	t.Helper()
	require.NoError(t, fr.write(context.Background(), frame{Topic: topic, Event: eventChanges, Payload: json.RawMessage(payload)}))
}

func waitFrame(t *testing.T, ch chan frame) frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
		return frame{}
	}
}

func startFeed(t *testing.T, fr *fakeRealtime) *Feed {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	pool := worker.NewPool(2, 16, logger)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	feed := NewFeed(FeedConfig{URL: fr.url(), APIKey: "anon"}, pool, logger)
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		pool.Stop()
	})
	return feed
}

func updateChange(t *testing.T, oldStatus, newStatus, txid string) Change {
	t.Helper()
	old, _ := json.Marshal(map[string]any{"txid": txid, "cliente_id": "c1", "status": oldStatus, "valor": 150.00})
	cur, _ := json.Marshal(map[string]any{"txid": txid, "cliente_id": "c1", "status": newStatus, "valor": 150.00})
	return Change{EventType: EventUpdate, Table: TablePixRecharges, Old: old, New: cur}
}

func TestFeed_SubscribeAndDeliver(t *testing.T) {
	fr := newFakeRealtime(t)
	feed := startFeed(t, fr)
	ctx := context.Background()

	received := make(chan Change, 4)
	sub, err := feed.Subscribe(ctx, "recargas-pix-changes:c1",
		ClientFilter(EventUpdate, TablePixRecharges, "c1"),
		func(ctx context.Context, change Change) { received <- change },
	)
	require.NoError(t, err)

	join := waitFrame(t, fr.joins)
	assert.Equal(t, "realtime:recargas-pix-changes:c1", join.Topic)
	assert.Contains(t, string(join.Payload), `"filter":"cliente_id=eq.c1"`)
	assert.Contains(t, string(join.Payload), `"table":"recargas_pix"`)

	fr.push(t, join.Topic, updateChange(t, "pendente_pagamento", "pago", "tx1"))

	select {
	case change := <-received:
		assert.Equal(t, EventUpdate, change.EventType)
		var row struct {
			Status string `json:"status"`
		}
		require.NoError(t, change.DecodeNew(&row))
		assert.Equal(t, "pago", row.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("change not delivered")
	}

	require.NoError(t, sub.Close(ctx))
	leave := waitFrame(t, fr.leaves)
	assert.Equal(t, join.Topic, leave.Topic)

	fr.push(t, join.Topic, updateChange(t, "pendente_pagamento", "pago", "tx2"))
	select {
	case <-received:
		t.Fatal("change delivered after close")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFeed_DuplicateChannel(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	feed := NewFeed(FeedConfig{URL: "ws://127.0.0.1:0"}, worker.NewPool(1, 1, logger), logger)
	handler := func(ctx context.Context, change Change) {}

	_, err := feed.Subscribe(context.Background(), "a", Filter{Table: "t"}, handler)
	require.NoError(t, err)

	_, err = feed.Subscribe(context.Background(), "a", Filter{Table: "t"}, handler)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestSubscription_CloseWaitsForRunningHandler(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	feed := NewFeed(FeedConfig{URL: "ws://127.0.0.1:0"}, worker.NewPool(1, 1, logger), logger)

	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	sub, err := feed.Subscribe(context.Background(), "slow", Filter{Table: "t"}, func(ctx context.Context, change Change) {
		calls++
		close(started)
		<-release
	})
	require.NoError(t, err)

	go sub.deliver(context.Background(), Change{})
	<-started

	closed := make(chan struct{})
	go func() {
		sub.Close(context.Background())
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while handler was running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	<-closed

	sub.deliver(context.Background(), Change{})
	assert.Equal(t, 1, calls)
}

func TestFeed_DeliversServerShapedChange(t *testing.T) {
	fr := newFakeRealtime(t)
	feed := startFeed(t, fr)

	received := make(chan Change, 1)
	_, err := feed.Subscribe(context.Background(), "recargas-pix-changes:c1",
		ClientFilter(EventUpdate, TablePixRecharges, "c1"),
		func(ctx context.Context, change Change) { received <- change },
	)
	require.NoError(t, err)
	join := waitFrame(t, fr.joins)

	fr.pushRaw(t, join.Topic, `{"data":{"type":"UPDATE","table":"recargas_pix",`+
		`"old_record":{"txid":"tx1","status":"pendente_pagamento"},"record":{"txid":"tx1","status":"pago"}}}`)

	select {
	case change := <-received:
		assert.Equal(t, EventUpdate, change.EventType)
		var row struct {
			Status string `json:"status"`
		}
		require.NoError(t, change.DecodeNew(&row))
		assert.Equal(t, "pago", row.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("change not delivered")
	}
}

func TestReconnectBackoff(t *testing.T) {
	var b reconnectBackoff

	assert.Equal(t, baseReconnectDelay, b.next())
	assert.Equal(t, 2*baseReconnectDelay, b.next())
	for i := 0; i < 10; i++ {
		b.next()
	}
	assert.Equal(t, maxReconnectDelay, b.next())

	// После рабочего соединения пауза начинается заново
	b.reset()
	assert.Equal(t, baseReconnectDelay, b.next())
}
