package main

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
	"github.com/user/storefront-go/config"
	_ "github.com/user/storefront-go/docs" // registers the swagger spec
	"github.com/user/storefront-go/logging"
)

const requestTimeout = 60 * time.Second

// routes builds the HTTP router. Chi requires middleware before routes.
func (a *app) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(a.logger))
	r.Use(recoverPanics(a.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.Server.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	authenticate := auth.Authenticate(a.tokens, a.logger)

	r.Get("/healthz", a.handleHealth())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			auth.WriteError(w, r, apperror.NewNotFoundError("Route not found.", nil))
		})

		// Mounted outside the request timeout: the stream stays open.
		r.With(authenticate, auth.RequireAdmin()).
			Get("/admin/orders/stream", a.eventHandlers.HandleOrderStream())

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Post("/users/register", a.authHandlers.HandleRegister())
			r.Post("/users/login", a.authHandlers.HandleLogin())
			r.With(authenticate).Get("/users/me", a.authHandlers.HandleMe())

			r.Get("/products", a.catalogHandlers.HandleListProducts())
			r.Get("/products/{id}", a.catalogHandlers.HandleGetProduct())

			// Signed-in customers.
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/create-payment-intent", a.orderHandlers.HandleCreatePaymentIntent())
				r.Post("/orders", a.orderHandlers.HandleCreateOrder())
				r.Get("/orders", a.orderHandlers.HandleListOrders())
			})

			// Admins.
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(auth.RequireAdmin())
				r.Post("/products", a.catalogHandlers.HandleCreateProduct())
				r.Put("/products/{id}", a.catalogHandlers.HandleUpdateProduct())
				r.Delete("/products/{id}", a.catalogHandlers.HandleDeleteProduct())
				r.Get("/admin/users", a.userHandlers.HandleListUsers())
				r.Delete("/admin/users/{id}", a.userHandlers.HandleDeleteUser())
			})
		})
	})

	if a.cfg.Images.Backend == config.ImageStorageLocal {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.cfg.Server.UploadsDir))))
	}
	r.Handle("/*", http.FileServer(http.Dir(a.cfg.Server.StaticDir)))

	return r
}

// recoverPanics converts a handler panic into an InternalError response.
func recoverPanics(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rvr,
					"stack", string(debug.Stack()),
					"request_id", middleware.GetReqID(r.Context()),
				)
				auth.WriteError(w, r, apperror.NewInternalError("internal server error", nil))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth reports readiness; with Postgres it also pings the database.
func (a *app) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.sqlDB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := a.sqlDB.PingContext(ctx); err != nil {
				a.logger.WarnContext(ctx, "health check failed", "error", err)
				auth.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		auth.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
