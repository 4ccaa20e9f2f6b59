package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/storefront-go/db"
)

const pgUniqueViolation = "23505"

// PostgresStore implements Store on the orders and order_items tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}

const (
	insertOrderQuery = `INSERT INTO orders (user_id, total, payment_intent_id, created_at) VALUES ($1, $2, NULLIF($3, ''), $4) RETURNING id`
	insertItemQuery  = `INSERT INTO order_items (order_id, position, product_id, name, price) VALUES ($1, $2, $3, $4, $5)`
	listOrdersQuery  = `SELECT o.id, o.user_id, o.total, COALESCE(o.payment_intent_id, ''), o.created_at, i.product_id, i.name, i.price
FROM orders o
JOIN order_items i ON i.order_id = o.id
WHERE o.user_id = $1
ORDER BY o.id DESC, i.position`
)

// Create writes the order and its line items in one transaction.
func (s *PostgresStore) Create(ctx context.Context, o Order) (*Order, error) {
	err := db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, insertOrderQuery, o.UserID, o.Total, o.PaymentIntentID, o.CreatedAt).
			Scan(&o.OrderID); err != nil {
			return err
		}
		for pos, item := range o.LineItems {
			if _, err := tx.ExecContext(ctx, insertItemQuery, o.OrderID, pos, item.ProductID, item.Name, item.Price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicatePaymentIntent
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, listOrdersQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var (
			o    Order
			item LineItem
		)
		if err := rows.Scan(&o.OrderID, &o.UserID, &o.Total, &o.PaymentIntentID, &o.CreatedAt,
			&item.ProductID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		// Rows arrive grouped by order.
		if n := len(orders); n > 0 && orders[n-1].OrderID == o.OrderID {
			orders[n-1].LineItems = append(orders[n-1].LineItems, item)
			continue
		}
		o.LineItems = []LineItem{item}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return orders, nil
}
