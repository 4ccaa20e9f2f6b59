package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/storefront-go/db"
)

const pgUniqueViolation = "23505"

// PostgresUserStore implements UserStore on the users table.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore wraps an open database handle.
func NewPostgresUserStore(conn *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: conn}
}

const (
	lockUsersQuery   = `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`
	usersEmptyQuery  = `SELECT NOT EXISTS (SELECT 1 FROM users)`
	insertUserQuery  = `INSERT INTO users (email, password_hash, is_admin) VALUES ($1, $2, $3) RETURNING id, created_at`
	selectUserFields = `SELECT id, email, password_hash, is_admin, created_at FROM users`
)

// Create inserts a user. For GrantIfFirst the table is locked so that two
// concurrent first registrations cannot both observe an empty table.
func (s *PostgresUserStore) Create(ctx context.Context, email, passwordHash string, grant AdminGrant) (*User, error) {
	u := &User{Email: email, PasswordHash: passwordHash}

	err := db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		switch grant {
		case GrantAlways:
			u.IsAdmin = true
		case GrantIfFirst:
			if _, err := tx.ExecContext(ctx, lockUsersQuery); err != nil {
				return fmt.Errorf("lock users: %w", err)
			}
			if err := tx.QueryRowContext(ctx, usersEmptyQuery).Scan(&u.IsAdmin); err != nil {
				return fmt.Errorf("count users: %w", err)
			}
		}
		return tx.QueryRowContext(ctx, insertUserQuery, u.Email, u.PasswordHash, u.IsAdmin).
			Scan(&u.ID, &u.CreatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, selectUserFields+` WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, selectUserFields+` WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresUserStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresUserStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, selectUserFields+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}
