package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/user/storefront-go/db"
)

// PostgresStore implements Store on the products table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}

const (
	productColumns     = `id, name, price, description, image_url`
	selectProducts     = `SELECT ` + productColumns + ` FROM products`
	insertProductQuery = `INSERT INTO products (name, price, description, image_url) VALUES ($1, $2, $3, $4) RETURNING id`
	lockProductQuery   = selectProducts + ` WHERE id = $1 FOR UPDATE`
	updateProductQuery = `UPDATE products SET name = $1, price = $2, description = $3, image_url = $4 WHERE id = $5`
	deleteProductQuery = `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.ImageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, selectProducts+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, selectProducts+` WHERE id = $1`, id))
}

func (s *PostgresStore) Create(ctx context.Context, p Product) (*Product, error) {
	err := s.db.QueryRowContext(ctx, insertProductQuery, p.Name, p.Price, p.Description, p.ImageURL).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

// Update locks the row, applies the partial update and writes it back.
func (s *PostgresStore) Update(ctx context.Context, id int64, upd ProductUpdate) (*Product, *Product, error) {
	var before, after *Product
	err := db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		current, err := scanProduct(tx.QueryRowContext(ctx, lockProductQuery, id))
		if err != nil {
			return err
		}
		before = current
		next := *current
		upd.apply(&next)
		if _, err := tx.ExecContext(ctx, updateProductQuery, next.Name, next.Price, next.Description, next.ImageURL, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		after = &next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) (*Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, deleteProductQuery, id))
}
