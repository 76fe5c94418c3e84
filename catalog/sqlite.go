/*
sqlite.go - SQLiteCatalog, the default storeext.Catalog implementation

GROUNDED ON:
  store/sqlite/sqlite.go's Store struct: db *sql.DB plus sync.RWMutex,
  constructed via New(dbPath) with the same WAL/foreign-key connection
  string convention, and prepared-statement query methods.
*/
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/posware/kernel/storeext"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCatalog implements storeext.Catalog against the products table
// (spec.md §6's schema contract).
type SQLiteCatalog struct {
	mu sync.RWMutex
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath, matching the
// teacher's connection-string convention of enabling foreign keys and
// WAL journaling.
func New(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: ping %q: %w", dbPath, err)
	}
	return &SQLiteCatalog{db: db}, nil
}

// NewFromDB wraps an already-open connection (e.g. shared with the
// migration runner and modifier loader for the same store database).
func NewFromDB(db *sql.DB) *SQLiteCatalog {
	return &SQLiteCatalog{db: db}
}

// Close releases the underlying connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func (c *SQLiteCatalog) lookup(ctx context.Context, sku string) (storeext.ProductInfo, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRowContext(ctx,
		`SELECT sku, name, description, category_id, base_price, is_active
		 FROM products WHERE sku = ?`, sku)

	var p storeext.ProductInfo
	var basePriceCents int64
	var isActive int
	err := row.Scan(&p.SKU, &p.Name, &p.Description, &p.Category, &basePriceCents, &isActive)
	if err == sql.ErrNoRows {
		return storeext.ProductInfo{}, false, nil
	}
	if err != nil {
		return storeext.ProductInfo{}, false, fmt.Errorf("catalog: lookup %q: %w", sku, err)
	}
	p.BasePrice = decimal.NewFromInt(basePriceCents).Div(decimal.NewFromInt(100))
	p.IsActive = isActive != 0
	return p, true, nil
}

// ValidateProduct implements storeext.Catalog.
func (c *SQLiteCatalog) ValidateProduct(ctx context.Context, productId string) (storeext.ProductValidation, error) {
	product, found, err := c.lookup(ctx, productId)
	if err != nil {
		return storeext.ProductValidation{}, err
	}
	if !found {
		return storeext.ProductValidation{IsValid: false, ErrorMessage: fmt.Sprintf("product %q not found", productId)}, nil
	}
	if !product.IsActive {
		return storeext.ProductValidation{IsValid: false, ErrorMessage: fmt.Sprintf("product %q is inactive", productId)}, nil
	}
	return storeext.ProductValidation{IsValid: true, Product: &product, EffectivePrice: product.BasePrice}, nil
}

// SearchProducts implements storeext.Catalog.
func (c *SQLiteCatalog) SearchProducts(ctx context.Context, term string, maxResults int) ([]storeext.ProductInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 20
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT sku, name, description, category_id, base_price, is_active
		 FROM products WHERE is_active = 1 AND name LIKE ? LIMIT ?`,
		"%"+term+"%", maxResults)
	if err != nil {
		return nil, fmt.Errorf("catalog: search %q: %w", term, err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetPopularItems implements storeext.Catalog. Popularity tracking is a
// Non-goal of the kernel (spec.md §1); this returns the first active
// products by sku as a stand-in ordering until a real ranking signal is
// wired by a richer store extension.
func (c *SQLiteCatalog) GetPopularItems(ctx context.Context) ([]storeext.ProductInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx,
		`SELECT sku, name, description, category_id, base_price, is_active
		 FROM products WHERE is_active = 1 ORDER BY sku LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("catalog: popular items: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]storeext.ProductInfo, error) {
	var out []storeext.ProductInfo
	for rows.Next() {
		var p storeext.ProductInfo
		var basePriceCents int64
		var isActive int
		if err := rows.Scan(&p.SKU, &p.Name, &p.Description, &p.Category, &basePriceCents, &isActive); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		p.BasePrice = decimal.NewFromInt(basePriceCents).Div(decimal.NewFromInt(100))
		p.IsActive = isActive != 0
		out = append(out, p)
	}
	return out, rows.Err()
}
