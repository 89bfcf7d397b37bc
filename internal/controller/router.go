package controller

import (
	"time"

	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	customMW "github.com/booklend/booklend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Tokens      *auth.TokenService
	Books       *BookController
	Borrowings  *BorrowingController
	Payments    *PaymentController
	Users       *UserController
	Metrics     *observability.Metrics
	CORSConfig  config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		requireAuth := customMW.RequireAuth(deps.Tokens)

		// Registration and login are the only open endpoints.
		r.Post("/users", deps.Users.Register)
		r.Post("/auth/token", deps.Users.Login)
		r.Post("/auth/refresh", deps.Users.Refresh)
		r.Post("/auth/verify", deps.Users.Verify)

		// The gateway redirects browsers here after checkout.
		r.Get("/payments/success", deps.Payments.Success)
		r.Get("/payments/cancel", deps.Payments.Cancel)

		// Catalog reads are public; writes are staff-only below.
		r.Get("/books", deps.Books.List)
		r.Get("/books/{id}", deps.Books.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/users/me", deps.Users.Me)
			r.Put("/users/me", deps.Users.UpdateMe)
			r.Patch("/users/me", deps.Users.UpdateMe)

			// Catalog writes
			r.Group(func(r chi.Router) {
				r.Use(customMW.RequireStaff)
				r.Post("/books", deps.Books.Create)
				r.Patch("/books/{id}", deps.Books.Update)
				r.Delete("/books/{id}", deps.Books.Delete)
			})

			// Borrowings
			r.Post("/borrowings", deps.Borrowings.Create)
			r.Get("/borrowings", deps.Borrowings.List)
			r.Get("/borrowings/{id}", deps.Borrowings.Get)
			r.Post("/borrowings/{id}/return", deps.Borrowings.Return)

			// Payments
			r.Get("/payments", deps.Payments.List)
			r.Get("/payments/{id}", deps.Payments.Get)
			r.Post("/payments/{id}/renew", deps.Payments.Renew)
		})
	})

	return r
}
