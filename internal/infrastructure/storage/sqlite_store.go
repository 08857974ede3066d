package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pricelens/backend/internal/domain"
)

// SQLiteStore persists validated datasets in a local SQLite database, one row
// per canonical record, keyed by market. Each save replaces the market's
// previous snapshot.
type SQLiteStore struct {
	db *sql.DB
}

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	market              TEXT NOT NULL,
	product_name        TEXT NOT NULL,
	current_price       REAL,
	price_per_unit      REAL,
	unit                TEXT NOT NULL,
	category            TEXT NOT NULL,
	discount_percentage REAL NOT NULL,
	store_location      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_market ON products(market);
`

// NewSQLiteStore opens (creating if necessary) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(createProductsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveDataset replaces the stored snapshot for a market with the given
// records inside a single transaction.
func (s *SQLiteStore) SaveDataset(ctx context.Context, market string, records []domain.CanonicalProduct) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE market = ?`, market); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products
		(market, product_name, current_price, price_per_unit, unit, category, discount_percentage, store_location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			market,
			r.ProductName,
			nullableFloat(r.CurrentPrice),
			nullableFloat(r.PricePerUnit),
			r.Unit,
			r.Category,
			r.DiscountPercentage,
			r.StoreLocation,
		); err != nil {
			return fmt.Errorf("failed to insert record %q: %w", r.ProductName, err)
		}
	}

	return tx.Commit()
}

// LoadDataset reads back the stored snapshot for a market in insertion order.
func (s *SQLiteStore) LoadDataset(ctx context.Context, market string) ([]domain.CanonicalProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_name, current_price, price_per_unit, unit, category, discount_percentage, store_location
		FROM products WHERE market = ? ORDER BY rowid`, market)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}
	defer rows.Close()

	var records []domain.CanonicalProduct
	for rows.Next() {
		var r domain.CanonicalProduct
		var currentPrice, pricePerUnit sql.NullFloat64
		if err := rows.Scan(
			&r.ProductName,
			&currentPrice,
			&pricePerUnit,
			&r.Unit,
			&r.Category,
			&r.DiscountPercentage,
			&r.StoreLocation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if currentPrice.Valid {
			v := currentPrice.Float64
			r.CurrentPrice = &v
		}
		if pricePerUnit.Valid {
			v := pricePerUnit.Float64
			r.PricePerUnit = &v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullableFloat converts a nullable float for driver binding.
func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
