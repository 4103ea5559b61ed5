package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents one catalog item known to the system. Name is the
// natural reconciliation key: no two stored products share a name after a
// sync cycle.
type Product struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	URL          string          `json:"url" db:"url"`
	Rating       *int            `json:"rating,omitempty" db:"rating"`
	ImageURL     *string         `json:"image_url,omitempty" db:"image_url"`
	SourceURL    *string         `json:"source_url,omitempty" db:"source_url"`
	LastSyncedAt *time.Time      `json:"last_synced_at,omitempty" db:"last_synced_at"`
	LastUpdated  time.Time       `json:"last_updated" db:"last_updated"`
}

// RawProduct is the fetcher's output unit: a scraped record before price
// parsing. It exists only within one pipeline run and is never persisted.
type RawProduct struct {
	Name      string
	Price     string
	Rating    int
	Stock     int
	ImageURL  string
	SourceURL string
}
