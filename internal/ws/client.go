package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Client is one socket watching a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	id        string
	sessionID string
	send      chan []byte
}

type keyData struct {
	Key string `json:"key"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("write failed", zap.String("client", c.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.logger.Debug("ping failed", zap.String("client", c.id), zap.Error(err))
				return
			}
		}
	}
}

// readPump reads control messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected close", zap.String("client", c.id), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg Message) {
	s, err := c.hub.sessions.Get(c.sessionID)
	if err != nil {
		c.sendError("session not found")
		return
	}
	c.hub.sessions.Touch(context.Background(), c.sessionID)

	switch msg.Type {
	case "key_down", "key_up":
		var data keyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid key data")
			return
		}
		key, err := game.ParseBaffleKey(data.Key)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		if msg.Type == "key_down" {
			s.Keys().Press(key)
		} else {
			s.Keys().Release(key)
		}

	case "pause":
		c.reportError(s.Pause())

	case "resume":
		c.reportError(s.Resume())

	case "get_state":
		c.sendSnapshot(s.State())

	default:
		c.sendError("unknown message type")
	}
}

func (c *Client) reportError(err error) {
	switch {
	case err == nil:
	case errors.Is(err, game.ErrNotInPlayMode):
		c.sendError("session is not playing")
	default:
		c.sendError(err.Error())
	}
}

func (c *Client) sendSnapshot(s game.Snapshot) {
	c.sendJSON(snapshotMessage(s))
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]any{"type": "error", "message": message})
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	// send is closed once the hub drops the client
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.hub.rooms[c.sessionID][c.id] != c {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("client send buffer full, dropping message", zap.String("client", c.id))
	}
}
