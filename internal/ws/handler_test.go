package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/physics"
)

type received struct {
	Type    string        `json:"type"`
	Data    game.Snapshot `json:"data"`
	Message string        `json:"message"`
}

func setup(t *testing.T) (*Hub, *game.Session, *websocket.Conn) {
	t.Helper()
	manager := game.NewManager(game.NewEngine(physics.DefaultParams(), zap.NewNop()),
		game.DefaultSessionConfig(), nil, nil, zap.NewNop())
	session := manager.Create(context.Background(), nil)
	t.Cleanup(session.Close)

	hub := NewHub(manager, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, session.ID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return hub, session, conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	m := map[string]any{"type": msgType}
	if data != nil {
		m["data"] = data
	}
	require.NoError(t, conn.WriteJSON(m))
}

func TestConnectSendsState(t *testing.T) {
	_, session, conn := setup(t)

	msg := read(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	assert.Equal(t, session.ID, msg.Data.SessionID)
	assert.Equal(t, game.ModeLayout, msg.Data.Mode)

	send(t, conn, "get_state", nil)
	msg = read(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
}

func TestKeyMessages(t *testing.T) {
	_, session, conn := setup(t)
	read(t, conn)

	send(t, conn, "key_down", map[string]string{"key": "a"})
	assert.Eventually(t, func() bool {
		return session.Keys().Sample()[game.KeyAlphaLeft]
	}, time.Second, 5*time.Millisecond)

	send(t, conn, "key_up", map[string]string{"key": "a"})
	assert.Eventually(t, func() bool {
		return !session.Keys().Sample()[game.KeyAlphaLeft]
	}, time.Second, 5*time.Millisecond)

	send(t, conn, "key_down", map[string]string{"key": "q"})
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
}

func TestControlErrors(t *testing.T) {
	_, _, conn := setup(t)
	read(t, conn)

	send(t, conn, "pause", nil)
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "session is not playing", msg.Message)

	send(t, conn, "dance", nil)
	msg = read(t, conn)
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	msg = read(t, conn)
	assert.Equal(t, "invalid message", msg.Message)
}

func TestPublishReachesRoom(t *testing.T) {
	hub, session, conn := setup(t)
	read(t, conn)
	require.Eventually(t, func() bool { return hub.Clients(session.ID) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), game.Snapshot{SessionID: session.ID, Tick: 7}))
	msg := read(t, conn)
	assert.Equal(t, uint64(7), msg.Data.Tick)

	// other sessions are not delivered here
	hub.Broadcast(game.Snapshot{SessionID: "elsewhere", Tick: 8})
	send(t, conn, "get_state", nil)
	msg = read(t, conn)
	assert.Zero(t, msg.Data.Tick)
}

func TestMessageEnvelope(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"type":"key_down","data":{"key":"l"}}`), &m))
	assert.Equal(t, "key_down", m.Type)
	assert.JSONEq(t, `{"key":"l"}`, string(m.Data))
}
