package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/auth"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/physics"
	"github.com/playmatatu/gizmoball/internal/store"
	"github.com/playmatatu/gizmoball/internal/ws"
)

// lookupSession fetches the :id session and records activity on it.
func lookupSession(c *gin.Context, m *game.Manager, logger *zap.Logger) (*game.Session, bool) {
	s, err := m.Get(c.Param("id"))
	if err != nil {
		respondError(c, logger, err)
		return nil, false
	}
	m.Touch(c.Request.Context(), s.ID)
	return s, true
}

func sessionBody(s *game.Session) gin.H {
	return gin.H{
		"session_id": s.ID,
		"mode":       s.Mode(),
		"items":      s.Items(),
		"state":      s.State(),
	}
}

// CreateSession starts a session from a saved layout, inline items, or an
// empty board, and hands back the token that controls it.
func CreateSession(m *game.Manager, repo store.Repository, secret string, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			LayoutID string          `json:"layout_id"`
			Items    json.RawMessage `json:"items"`
		}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		var items []game.MapItem
		switch {
		case req.LayoutID != "":
			l, err := repo.Get(c.Request.Context(), req.LayoutID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			if items, err = store.LoadItems(l); err != nil {
				respondError(c, logger, err)
				return
			}
		case len(req.Items) > 0:
			var err error
			if items, err = game.DecodeLayout(req.Items); err != nil {
				respondError(c, logger, err)
				return
			}
		}

		s := m.Create(c.Request.Context(), items)
		token, err := auth.IssueControlToken(secret, s.ID, ttl)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		body := sessionBody(s)
		body["control_token"] = token
		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, body)
	}
}

func GetSession(m *game.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := lookupSession(c, m, logger); ok {
			c.JSON(http.StatusOK, sessionBody(s))
		}
	}
}

// SnapshotReader serves the last snapshot published for a session.
type SnapshotReader interface {
	Latest(ctx context.Context, sessionID string) (game.Snapshot, error)
}

// GetSnapshot is the read-only view for spectators. The shared cache is
// tried first so sessions hosted on another instance can be watched too.
func GetSnapshot(snapshots SnapshotReader, m *game.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if snapshots != nil {
			snap, err := snapshots.Latest(c.Request.Context(), id)
			if err == nil {
				c.JSON(http.StatusOK, snap)
				return
			}
			logger.Debug("snapshot cache miss", zap.String("session", id), zap.Error(err))
		}
		s, err := m.Get(id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, s.State())
	}
}

func CloseSession(m *game.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.Close(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SessionControl runs a mode change (play, pause, resume, layout) and
// returns the resulting state.
func SessionControl(m *game.Manager, logger *zap.Logger, action func(*game.Session) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, m, logger)
		if !ok {
			return
		}
		if err := action(s); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, s.State())
	}
}

// SaveSession stores the session layout as a new layout, or overwrites
// layout_id when given.
func SaveSession(m *game.Manager, repo store.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			LayoutID string   `json:"layout_id"`
			Name     string   `json:"name"`
			Tags     []string `json:"tags"`
			EditKey  string   `json:"edit_key"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		s, ok := lookupSession(c, m, logger)
		if !ok {
			return
		}
		if s.Mode() != game.ModeLayout {
			respondError(c, logger, game.ErrNotInLayoutMode)
			return
		}

		ctx := c.Request.Context()
		if req.LayoutID != "" {
			l, err := repo.Overwrite(ctx, req.LayoutID, s.Items(), req.EditKey)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			writeLayout(c, http.StatusOK, l)
			return
		}
		l, err := repo.Save(ctx, req.Name, s.Items(), req.Tags, req.EditKey)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		writeLayout(c, http.StatusCreated, l)
	}
}

func PlaceItem(m *game.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Kind string `json:"kind" binding:"required"`
			X    int    `json:"x"`
			Y    int    `json:"y"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind, x and y required"})
			return
		}
		kind, err := game.ParseItemKind(req.Kind)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		s, ok := lookupSession(c, m, logger)
		if !ok {
			return
		}
		item, err := s.PlaceItem(kind, req.X, req.Y)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func RemoveItem(m *game.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, m, logger)
		if !ok {
			return
		}
		id, err := parseItem(c)
		if err == nil {
			err = s.RemoveItem(id)
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ItemAction applies an edit to the :item item and returns it.
func ItemAction(m *game.Manager, logger *zap.Logger, action func(*game.Session, *gin.Context) (game.MapItem, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, m, logger)
		if !ok {
			return
		}
		item, err := action(s, c)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// errBadRequest marks a malformed body inside an ItemAction.
type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

func Rotate(s *game.Session, c *gin.Context) (game.MapItem, error) {
	id, err := parseItem(c)
	if err != nil {
		return game.MapItem{}, err
	}
	return s.RotateItem(id)
}

func Zoom(reduce game.ScaleReducer) func(*game.Session, *gin.Context) (game.MapItem, error) {
	return func(s *game.Session, c *gin.Context) (game.MapItem, error) {
		id, err := parseItem(c)
		if err != nil {
			return game.MapItem{}, err
		}
		return s.ZoomItem(id, reduce)
	}
}

func Move(s *game.Session, c *gin.Context) (game.MapItem, error) {
	id, err := parseItem(c)
	if err != nil {
		return game.MapItem{}, err
	}
	var req struct {
		Center *physics.Vec2 `json:"center" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return game.MapItem{}, errBadRequest("center required")
	}
	return s.MoveItem(id, *req.Center)
}

// ServeWebSocket attaches a socket to an existing session.
func ServeWebSocket(m *game.Manager, hub *ws.Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, m, logger)
		if !ok {
			return
		}
		hub.Serve(c.Writer, c.Request, s.ID)
	}
}
