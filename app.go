package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
	"github.com/user/storefront-go/catalog"
	"github.com/user/storefront-go/config"
	"github.com/user/storefront-go/db"
	"github.com/user/storefront-go/events"
	"github.com/user/storefront-go/orders"
	"github.com/user/storefront-go/payment"
	"github.com/user/storefront-go/users"
)

// app holds the wired services and handlers.
type app struct {
	cfg    *config.AppConfig
	logger *slog.Logger

	tokens      *auth.TokenService
	broadcaster *events.Broadcaster
	sqlDB       *sql.DB // nil with the memory store

	authHandlers    *auth.Handlers
	userHandlers    *users.Handlers
	catalogHandlers *catalog.Handlers
	orderHandlers   *orders.Handlers
	eventHandlers   *events.Handlers

	closers []func()
}

type stores struct {
	users    auth.UserStore
	products catalog.Store
	orders   orders.Store
}

// newApp opens the backing stores and wires every service. The payment
// gateway talks to cfg.Payment.StripeAPIURL when it is set.
func newApp(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	st, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	images, err := a.openImageStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		a.Close()
		return nil, apperror.NewConfigError("invalid bcrypt cost", err)
	}
	a.tokens, err = auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		a.Close()
		return nil, apperror.NewConfigError("invalid JWT secret", err)
	}
	authService, err := auth.NewService(st.users, hasher, a.tokens, cfg.Auth.FirstUserIsAdmin, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Auth.AdminEmail != "" {
		if _, err := authService.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.broadcaster = events.NewBroadcaster(events.DefaultBufferSize, logger)
	gateway := payment.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeAPIURL, logger)
	reconciler := orders.NewReconciler(st.products, gateway, st.orders, orders.Options{
		Currency:            cfg.Payment.Currency,
		RequireConfirmation: cfg.Payment.RequireConfirmation,
		Notifier:            events.NewOrderFeed(a.broadcaster, logger),
	}, logger)
	if !cfg.Payment.RequireConfirmation {
		logger.Warn("payment confirmation disabled; orders are recorded without checking the payment intent")
	}

	a.authHandlers = auth.NewHandlers(authService)
	a.userHandlers = users.NewHandlers(users.NewService(st.users, logger))
	a.catalogHandlers = catalog.NewHandlers(catalog.NewService(st.products, images, logger))
	a.orderHandlers = orders.NewHandlers(reconciler)
	a.eventHandlers = events.NewHandlers(a.broadcaster, events.DefaultHeartbeat)
	return a, nil
}

func (a *app) openStores(ctx context.Context) (*stores, error) {
	if a.cfg.Store.Driver != config.StorePostgres {
		a.logger.Warn("using in-memory store; data is lost on restart")
		return &stores{
			users:    auth.NewMemoryUserStore(),
			products: catalog.NewMemoryStore(catalog.SeedProducts()...),
			orders:   orders.NewMemoryStore(),
		}, nil
	}

	if err := db.RunMigrations(a.cfg.Store.Pool, a.logger); err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, a.cfg.Store.Pool)
	if err != nil {
		return nil, err
	}
	a.sqlDB = db.SQLDB(pool)
	a.closers = append(a.closers, pool.Close, func() { _ = a.sqlDB.Close() })

	return &stores{
		users:    auth.NewPostgresUserStore(a.sqlDB),
		products: catalog.NewPostgresStore(a.sqlDB),
		orders:   orders.NewPostgresStore(a.sqlDB),
	}, nil
}

func (a *app) openImageStore(ctx context.Context) (catalog.ImageStore, error) {
	if a.cfg.Images.Backend == config.ImageStorageS3 {
		s3Store, err := catalog.NewS3ImageStore(ctx, a.cfg.Images.S3)
		if err != nil {
			return nil, apperror.NewConfigError("failed to configure S3 image storage", err)
		}
		return s3Store, nil
	}
	local, err := catalog.NewLocalImageStore(a.cfg.Server.UploadsDir)
	if err != nil {
		return nil, apperror.NewConfigError("failed to prepare uploads directory", err)
	}
	return local, nil
}

// Close releases the database pool, most recently opened first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
