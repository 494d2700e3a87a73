package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/game"
)

// Sessions is what the hub needs from the session manager.
type Sessions interface {
	Get(id string) (*game.Session, error)
	Touch(ctx context.Context, id string)
}

// Hub maintains the set of active clients, grouped by session.
type Hub struct {
	rooms      map[string]map[string]*Client // sessionID -> clientID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	sessions   Sessions
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	mu         sync.RWMutex
}

// NewHub creates a new Hub. allowOrigin decides cross-origin upgrades; nil
// allows all origins.
func NewHub(sessions Sessions, allowOrigin func(r *http.Request) bool, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sessions:   sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		logger: logger.Named("ws"),
	}
}

// Message is an envelope for everything sent over the socket.
type Message struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Serve upgrades the request and attaches the connection to sessionID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.String("session", sessionID), zap.Error(err))
		return
	}
	client := &Client{
		hub:       h,
		conn:      conn,
		id:        uuid.NewString(),
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Run processes registrations until ctx is done, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, room := range h.rooms {
				for _, c := range room {
					close(c.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.sessionID]
			if !ok {
				room = make(map[string]*Client)
				h.rooms[client.sessionID] = room
			}
			room[client.id] = client
			size := len(room)
			h.mu.Unlock()
			h.logger.Info("client connected",
				zap.String("session", client.sessionID), zap.String("client", client.id), zap.Int("room_size", size))

			if s, err := h.sessions.Get(client.sessionID); err == nil {
				client.sendSnapshot(s.State())
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.sessionID]; ok {
				if cur, ok := room[client.id]; ok && cur == client {
					delete(room, client.id)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.sessionID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info("client disconnected", zap.String("session", client.sessionID), zap.String("client", client.id))
		}
	}
}

// Clients reports how many sockets watch sessionID.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastToSession sends a message to every client of a session.
func (h *Hub) BroadcastToSession(sessionID string, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[sessionID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full, dropping message",
				zap.String("session", sessionID), zap.String("client", client.id))
		}
	}
}

// Broadcast sends a snapshot to the clients of its session.
func (h *Hub) Broadcast(s game.Snapshot) {
	h.BroadcastToSession(s.SessionID, snapshotMessage(s))
}

// Publish implements game.Publisher.
func (h *Hub) Publish(_ context.Context, s game.Snapshot) error {
	h.Broadcast(s)
	return nil
}

func snapshotMessage(s game.Snapshot) map[string]any {
	return map[string]any{"type": "snapshot", "data": s}
}
