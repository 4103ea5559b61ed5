package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

// ProductStore defines the product data access interface consumed by SyncService.
type ProductStore interface {
	ListNames(ctx context.Context) (map[string]struct{}, error)
	BulkInsert(ctx context.Context, products []domain.Product) (int64, error)
	BulkUpdate(ctx context.Context, products []domain.Product) (int64, error)
}

// SyncResult summarizes one reconciliation run.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// SyncService merges scraped records into persisted products by name-keyed
// upsert. Re-running with overlapping input is safe: inserts ignore name
// conflicts and updates overwrite the synced fields.
type SyncService struct {
	products ProductStore
	now      func() time.Time
}

// NewSyncService creates a new SyncService.
func NewSyncService(products ProductStore) *SyncService {
	return &SyncService{products: products, now: time.Now}
}

// Sync loads the set of existing product names once, partitions the records
// into creates and updates, and applies each group as a bulk operation.
// Records that fail to parse are skipped and counted, never abort the batch.
func (s *SyncService) Sync(ctx context.Context, records []domain.RawProduct) (SyncResult, error) {
	existing, err := s.products.ListNames(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load existing names: %w", err)
	}

	plan := buildPlan(records, existing, s.now().UTC())

	// Creates are applied before updates so that a within-batch duplicate
	// name lands its later values on the freshly inserted row.
	created, err := s.products.BulkInsert(ctx, plan.creates)
	if err != nil {
		return SyncResult{}, fmt.Errorf("apply creates: %w", err)
	}

	updated, err := s.products.BulkUpdate(ctx, plan.updates)
	if err != nil {
		return SyncResult{}, fmt.Errorf("apply updates: %w", err)
	}

	return SyncResult{
		Created: int(created),
		Updated: int(updated),
		Skipped: plan.skipped,
	}, nil
}

type syncPlan struct {
	creates []domain.Product
	updates []domain.Product
	skipped int
}

// buildPlan is the pure planning phase: no storage access, no side effects.
// All planned entities carry the same syncedAt so every row touched by one
// run is identifiable. A name that repeats within the batch becomes an
// update candidate after its first occurrence, so the last record wins.
func buildPlan(records []domain.RawProduct, existing map[string]struct{}, syncedAt time.Time) syncPlan {
	seen := make(map[string]struct{}, len(existing)+len(records))
	for name := range existing {
		seen[name] = struct{}{}
	}

	var plan syncPlan
	for _, record := range records {
		product, err := buildProduct(record, syncedAt)
		if err != nil {
			plan.skipped++
			slog.Warn("skipping unparseable record", "name", record.Name, "error", err)
			continue
		}

		if _, ok := seen[record.Name]; ok {
			plan.updates = append(plan.updates, product)
		} else {
			plan.creates = append(plan.creates, product)
			seen[record.Name] = struct{}{}
		}
	}
	return plan
}

func buildProduct(record domain.RawProduct, syncedAt time.Time) (domain.Product, error) {
	if record.Name == "" {
		return domain.Product{}, fmt.Errorf("missing name")
	}

	price, err := decimal.NewFromString(record.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q: %w", record.Price, err)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("negative price %q", record.Price)
	}

	if record.Rating < 0 || record.Rating > 5 {
		return domain.Product{}, fmt.Errorf("rating %d out of range", record.Rating)
	}
	if record.Stock < 0 {
		return domain.Product{}, fmt.Errorf("negative stock %d", record.Stock)
	}

	rating := record.Rating
	synced := syncedAt
	return domain.Product{
		Name:         record.Name,
		Price:        price,
		Stock:        record.Stock,
		URL:          record.SourceURL,
		Rating:       &rating,
		ImageURL:     optional(record.ImageURL),
		SourceURL:    optional(record.SourceURL),
		LastSyncedAt: &synced,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
