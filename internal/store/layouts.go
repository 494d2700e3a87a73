package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/auth"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/models"
)

var (
	ErrLayoutNotFound = errors.New("layout not found")
	ErrEmptyName      = errors.New("layout name is empty")
)

// Repository is the layout persistence the API depends on.
type Repository interface {
	Save(ctx context.Context, name string, items []game.MapItem, tags []string, editKey string) (*models.Layout, error)
	Overwrite(ctx context.Context, id string, items []game.MapItem, editKey string) (*models.Layout, error)
	Get(ctx context.Context, id string) (*models.Layout, error)
	List(ctx context.Context, limit, offset int) ([]models.LayoutSummary, error)
}

// LayoutStore keeps layouts in postgres.
type LayoutStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLayoutStore(db *sqlx.DB, logger *zap.Logger) *LayoutStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayoutStore{db: db, logger: logger.Named("store")}
}

// Checksum is the hex xxhash of an encoded layout. It doubles as the ETag.
func Checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// encode serializes items and hashes the result.
func encode(items []game.MapItem) ([]byte, string, error) {
	data, err := game.EncodeLayout(items)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode layout: %w", err)
	}
	return data, Checksum(data), nil
}

// LoadItems decodes the items of a stored layout.
func LoadItems(l *models.Layout) ([]game.MapItem, error) {
	return game.DecodeLayout(l.Items)
}

func (s *LayoutStore) Save(ctx context.Context, name string, items []game.MapItem, tags []string, editKey string) (*models.Layout, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	data, sum, err := encode(items)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashEditKey(editKey)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	l := &models.Layout{
		ID:          uuid.NewString(),
		Name:        name,
		Items:       data,
		ItemCount:   len(items),
		Checksum:    sum,
		Tags:        pq.StringArray(tags),
		EditKeyHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// items go over as text: pq would send a []byte as bytea
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO layouts (id, name, items, item_count, checksum, tags, edit_key_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.Name, string(l.Items), l.ItemCount, l.Checksum, l.Tags, l.EditKeyHash, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert layout: %w", err)
	}
	s.logger.Info("layout saved", zap.String("layout", l.ID), zap.Int("items", l.ItemCount))
	return l, nil
}

// Overwrite replaces the items of an existing layout once editKey checks out.
func (s *LayoutStore) Overwrite(ctx context.Context, id string, items []game.MapItem, editKey string) (*models.Layout, error) {
	data, sum, err := encode(items)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var l models.Layout
	if err := tx.GetContext(ctx, &l, `SELECT * FROM layouts WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	if err := auth.VerifyEditKey(l.EditKeyHash, editKey); err != nil {
		return nil, err
	}

	l.Items, l.ItemCount, l.Checksum, l.UpdatedAt = data, len(items), sum, time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE layouts SET items = $1, item_count = $2, checksum = $3, updated_at = $4 WHERE id = $5`,
		string(l.Items), l.ItemCount, l.Checksum, l.UpdatedAt, id); err != nil {
		return nil, fmt.Errorf("failed to update layout: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.logger.Info("layout overwritten", zap.String("layout", id), zap.Int("items", l.ItemCount))
	return &l, nil
}

func (s *LayoutStore) Get(ctx context.Context, id string) (*models.Layout, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrLayoutNotFound
	}
	var l models.Layout
	if err := s.db.GetContext(ctx, &l, `SELECT * FROM layouts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLayoutNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns layouts, most recently updated first.
func (s *LayoutStore) List(ctx context.Context, limit, offset int) ([]models.LayoutSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	out := []models.LayoutSummary{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, name, item_count, checksum, tags, updated_at
		FROM layouts ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return out, nil
}
