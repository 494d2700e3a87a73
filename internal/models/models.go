package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Layout is a saved board.
type Layout struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Items       json.RawMessage `db:"items" json:"items"`
	ItemCount   int             `db:"item_count" json:"item_count"`
	Checksum    string          `db:"checksum" json:"checksum"`
	Tags        pq.StringArray  `db:"tags" json:"tags"`
	EditKeyHash string          `db:"edit_key_hash" json:"-"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// LayoutSummary is a Layout without its items, for listings.
type LayoutSummary struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	ItemCount int            `db:"item_count" json:"item_count"`
	Checksum  string         `db:"checksum" json:"checksum"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
