package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

const productColumns = `id, name, price, stock, url, rating, image_url, source_url, last_synced_at, last_updated`

// ProductRepository handles product data access operations.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List retrieves all products ordered by last_updated descending.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products ORDER BY last_updated DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by its ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.GetContext(ctx, &product,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find product by id %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product. A duplicate name maps to domain.ErrConflict.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var result domain.Product
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO products (name, price, stock, url, rating, image_url, source_url, last_synced_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+productColumns,
		product.Name, product.Price, product.Stock, product.URL,
		product.Rating, product.ImageURL, product.SourceURL, product.LastSyncedAt,
	).StructScan(&result)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &result, nil
}

// Update overwrites the mutable fields of an existing product.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var result domain.Product
	err := r.db.QueryRowxContext(ctx,
		`UPDATE products
		 SET name = $1, price = $2, stock = $3, url = $4, rating = $5,
		     image_url = $6, source_url = $7, last_updated = NOW()
		 WHERE id = $8
		 RETURNING `+productColumns,
		product.Name, product.Price, product.Stock, product.URL,
		product.Rating, product.ImageURL, product.SourceURL, product.ID,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("update product %d: %w", product.ID, err)
	}
	return &result, nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListNames returns the set of all stored product names in a single query.
func (r *ProductRepository) ListNames(ctx context.Context) (map[string]struct{}, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM products`); err != nil {
		return nil, fmt.Errorf("list product names: %w", err)
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set, nil
}

// BulkInsert inserts products in one statement, silently dropping rows whose
// name already exists. Returns the number of rows actually inserted.
func (r *ProductRepository) BulkInsert(ctx context.Context, products []domain.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(products))
	args := make([]any, 0, len(products)*8)
	for i, p := range products {
		base := i * 8
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, p.Name, p.Price, p.Stock, p.URL, p.Rating, p.ImageURL, p.SourceURL, p.LastSyncedAt)
	}

	query := `INSERT INTO products (name, price, stock, url, rating, image_url, source_url, last_synced_at)
		 VALUES ` + strings.Join(placeholders, ", ") + `
		 ON CONFLICT (name) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk insert products: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk insert products: %w", err)
	}
	return inserted, nil
}

// BulkUpdate overwrites the synced fields of existing products by name,
// all within one transaction.
func (r *ProductRepository) BulkUpdate(ctx context.Context, products []domain.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var updated int64
	for _, p := range products {
		res, execErr := tx.ExecContext(ctx,
			`UPDATE products
			 SET price = $1, stock = $2, rating = $3, image_url = $4,
			     source_url = $5, url = $6, last_synced_at = $7, last_updated = NOW()
			 WHERE name = $8`,
			p.Price, p.Stock, p.Rating, p.ImageURL, p.SourceURL, p.URL, p.LastSyncedAt, p.Name)
		if execErr != nil {
			return 0, fmt.Errorf("bulk update product %q: %w", p.Name, execErr)
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return 0, fmt.Errorf("bulk update product %q: %w", p.Name, raErr)
		}
		updated += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk update: %w", err)
	}
	return updated, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
