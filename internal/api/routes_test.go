package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/api/handlers"
	"github.com/playmatatu/gizmoball/internal/auth"
	"github.com/playmatatu/gizmoball/internal/config"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/models"
	"github.com/playmatatu/gizmoball/internal/physics"
	"github.com/playmatatu/gizmoball/internal/store"
	"github.com/playmatatu/gizmoball/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryLayouts keeps layouts in a map; edit keys are compared in plain text.
type memoryLayouts struct {
	mu      sync.Mutex
	layouts map[string]*models.Layout
	keys    map[string]string
}

func newMemoryLayouts() *memoryLayouts {
	return &memoryLayouts{layouts: map[string]*models.Layout{}, keys: map[string]string{}}
}

func (m *memoryLayouts) Save(_ context.Context, name string, items []game.MapItem, tags []string, editKey string) (*models.Layout, error) {
	if name == "" {
		return nil, store.ErrEmptyName
	}
	if editKey == "" {
		return nil, auth.ErrEmptyEditKey
	}
	data, err := game.EncodeLayout(items)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l := &models.Layout{ID: uuid.NewString(), Name: name, Items: data, ItemCount: len(items),
		Checksum: store.Checksum(data), Tags: tags, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.layouts[l.ID] = l
	m.keys[l.ID] = editKey
	return l, nil
}

func (m *memoryLayouts) Overwrite(_ context.Context, id string, items []game.MapItem, editKey string) (*models.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layouts[id]
	if !ok {
		return nil, store.ErrLayoutNotFound
	}
	if m.keys[id] != editKey {
		return nil, auth.ErrEditKeyMismatch
	}
	data, err := game.EncodeLayout(items)
	if err != nil {
		return nil, err
	}
	l.Items, l.ItemCount, l.Checksum = data, len(items), store.Checksum(data)
	return l, nil
}

func (m *memoryLayouts) Get(_ context.Context, id string) (*models.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layouts[id]
	if !ok {
		return nil, store.ErrLayoutNotFound
	}
	return l, nil
}

func (m *memoryLayouts) List(_ context.Context, limit, offset int) ([]models.LayoutSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.LayoutSummary{}
	for _, l := range m.layouts {
		out = append(out, models.LayoutSummary{ID: l.ID, Name: l.Name, ItemCount: l.ItemCount, Checksum: l.Checksum})
	}
	return out, nil
}

type testServer struct {
	router  *gin.Engine
	manager *game.Manager
	layouts *memoryLayouts
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, snapshots handlers.SnapshotReader) *testServer {
	cfg := &config.Config{Environment: "test", JWTSecret: "secret", ControlTokenMinutes: 5}
	logger := zap.NewNop()
	manager := game.NewManager(game.NewEngine(physics.DefaultParams(), logger),
		game.DefaultSessionConfig(), nil, nil, logger)
	t.Cleanup(func() { manager.CloseAll(context.Background()) })
	layouts := newMemoryLayouts()

	router := gin.New()
	SetupRoutes(router, Deps{
		Config:    cfg,
		Manager:   manager,
		Layouts:   layouts,
		Hub:       ws.NewHub(manager, nil, logger),
		Snapshots: snapshots,
		Logger:    logger,
	})
	return &testServer{router: router, manager: manager, layouts: layouts}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type createdSession struct {
	SessionID    string          `json:"session_id"`
	ControlToken string          `json:"control_token"`
	Mode         game.Mode       `json:"mode"`
	Items        json.RawMessage `json:"items"`
}

func (s *testServer) createSession(t *testing.T, body any) createdSession {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out createdSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSessionEditing(t *testing.T) {
	s := newTestServer(t)
	sess := s.createSession(t, nil)
	assert.Equal(t, game.ModeLayout, sess.Mode)
	base := "/api/v1/sessions/" + sess.SessionID

	w := s.do(t, http.MethodPost, base+"/items", "", map[string]any{"kind": "square", "x": 3, "y": 3})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, base+"/items", sess.ControlToken, map[string]any{"kind": "square", "x": 3, "y": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var square game.MapItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &square))
	assert.Equal(t, game.KindSquare, square.Kind)

	w = s.do(t, http.MethodPost, base+"/items", sess.ControlToken, map[string]any{"kind": "circle", "x": 3, "y": 3})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, base+"/items", sess.ControlToken, map[string]any{"kind": "spring", "x": 1, "y": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, base+"/items", sess.ControlToken, map[string]any{"kind": "border", "x": 1, "y": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	item := base + "/items/" + square.ID.String()
	w = s.do(t, http.MethodPost, item+"/zoom-in", sess.ControlToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var zoomed game.MapItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zoomed))
	assert.Equal(t, 2, zoomed.Scale)

	w = s.do(t, http.MethodPost, item+"/move", sess.ControlToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, item+"/rotate", sess.ControlToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, item, sess.ControlToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, item, sess.ControlToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, base+"/items/nope", sess.ControlToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionModes(t *testing.T) {
	s := newTestServer(t)
	sess := s.createSession(t, nil)
	base := "/api/v1/sessions/" + sess.SessionID

	w := s.do(t, http.MethodPost, base+"/pause", sess.ControlToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, base+"/play", sess.ControlToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"play"`)

	w = s.do(t, http.MethodPost, base+"/items", sess.ControlToken, map[string]any{"kind": "ball", "x": 1, "y": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, base+"/pause", sess.ControlToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paused":true`)

	w = s.do(t, http.MethodPost, base+"/resume", sess.ControlToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"/layout", sess.ControlToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"layout"`)

	w = s.do(t, http.MethodDelete, base, sess.ControlToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, base, sess.ControlToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestControlTokenIsPerSession(t *testing.T) {
	s := newTestServer(t)
	a := s.createSession(t, nil)
	b := s.createSession(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/sessions/"+b.SessionID, a.ControlToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/sessions/"+b.SessionID, b.ControlToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLayoutLifecycle(t *testing.T) {
	s := newTestServer(t)
	sess := s.createSession(t, nil)
	base := "/api/v1/sessions/" + sess.SessionID

	w := s.do(t, http.MethodPost, base+"/items", sess.ControlToken, map[string]any{"kind": "ball", "x": 2, "y": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, base+"/save", sess.ControlToken, map[string]any{"name": "first", "edit_key": "k1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var saved models.Layout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, 1, saved.ItemCount)
	assert.Equal(t, strconv.Quote(saved.Checksum), w.Header().Get("ETag"))
	assert.NotContains(t, w.Body.String(), "edit_key")

	w = s.do(t, http.MethodGet, "/api/v1/layouts/"+saved.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/layouts/"+saved.ID, nil)
	req.Header.Set("If-None-Match", strconv.Quote(saved.Checksum))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	w = s.do(t, http.MethodPut, "/api/v1/layouts/"+saved.ID, "", map[string]any{"edit_key": "wrong", "items": []any{}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/layouts/"+saved.ID, "", map[string]any{"edit_key": "k1", "items": []any{}})
	assert.Equal(t, http.StatusOK, w.Code)

	// a session started from the saved layout sees its items
	w = s.do(t, http.MethodPut, "/api/v1/layouts/"+saved.ID, "", map[string]any{"edit_key": "k1", "items": json.RawMessage(saved.Items)})
	require.Equal(t, http.StatusOK, w.Code)
	loaded := s.createSession(t, map[string]any{"layout_id": saved.ID})
	items, err := game.DecodeLayout(loaded.Items)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	w = s.do(t, http.MethodGet, "/api/v1/layouts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), saved.ID)

	w = s.do(t, http.MethodGet, "/api/v1/layouts/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSessionRejectsBadItems(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/sessions", "", map[string]any{"items": []any{map[string]any{"name": "ball"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/layouts", "", map[string]any{"name": "x", "edit_key": "k", "items": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// cachedSnapshots answers from a map, like a shared cache filled by other instances.
type cachedSnapshots map[string]game.Snapshot

func (c cachedSnapshots) Latest(_ context.Context, id string) (game.Snapshot, error) {
	snap, ok := c[id]
	if !ok {
		return game.Snapshot{}, errors.New("not cached")
	}
	return snap, nil
}

func TestSessionSnapshot(t *testing.T) {
	remote := game.Snapshot{SessionID: "elsewhere", Tick: 7, Mode: game.ModePlay}
	s := newTestServerWith(t, cachedSnapshots{"elsewhere": remote})

	// hosted on another instance, served from the cache without a token
	w := s.do(t, http.MethodGet, "/api/v1/sessions/elsewhere/snapshot", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got game.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, remote.SessionID, got.SessionID)
	assert.Equal(t, uint64(7), got.Tick)

	// not cached yet, answered by the local session
	sess := s.createSession(t, nil)
	w = s.do(t, http.MethodGet, "/api/v1/sessions/"+sess.SessionID+"/snapshot", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, sess.SessionID, got.SessionID)
	assert.Equal(t, game.ModeLayout, got.Mode)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/missing/snapshot", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
