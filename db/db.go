// Package db provides database connectivity and migration functionality for the storefront.
// It establishes the pgx connection pool, exposes it as a *sql.DB for the
// repositories, and applies the embedded schema migrations.
//
// The Postgres backend is optional: with STORE_DRIVER=memory nothing in this
// package is used.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// registers the "pgx5" database driver used by the migrator
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewPool establishes a pgxpool connection pool and verifies it with a ping.
func NewPool(ctx context.Context, cfg *config.PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(poolDSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create connection pool", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", cfg.DBName), err)
	}

	return pool, nil
}

// SQLDB exposes the pool through database/sql. The repositories are written
// against database/sql so they can be exercised with sqlmock.
func SQLDB(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

func poolDSN(cfg *config.PoolConfig) string {
	return buildDSN("postgres", cfg)
}

// migrateDSN uses the pgx5 scheme that golang-migrate's pgx/v5 driver registers.
func migrateDSN(cfg *config.PoolConfig) string {
	return buildDSN("pgx5", cfg)
}

func buildDSN(scheme string, cfg *config.PoolConfig) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// RunMigrations applies any pending migrations embedded in the binary.
// Files follow golang-migrate naming: {version}_{description}.up.sql
func RunMigrations(cfg *config.PoolConfig, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return apperror.NewDatabaseError("failed to open embedded migrations", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateDSN(cfg))
	if err != nil {
		return apperror.NewDatabaseError("failed to create migrator", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("error closing migrator", "source_err", srcErr, "db_err", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewDatabaseError("failed to run migrations", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		logger.Info("database schema ready", "version", version, "dirty", dirty)
	}
	return nil
}
