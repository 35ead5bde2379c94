package api

import (
	"delivery-intake-service/internal/api/handlers"
	"delivery-intake-service/internal/ports"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterOptions struct {
	Logger         zerolog.Logger
	RequestTimeout time.Duration
	Limiter        *ClientRateLimiter // optional; nil disables rate limiting
	TrustProxy     bool               // honour X-Forwarded-For / X-Real-IP
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.DeliveryRepository, gen ports.TrackingNumberGenerator, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(opts.Logger))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	deliveryHandler := &handlers.DeliveryHandler{
		Repo:      repo,
		Generator: gen,
	}

	r.Get("/health", handlers.Health)

	r.Route("/deliveries", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		r.Post("/", deliveryHandler.Create)
		r.Get("/{trackingNumber}", deliveryHandler.Get)
	})

	return r
}
