// Package api provides the HTTP API for RideWake.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/account"
	"github.com/ridewake/ridewake/internal/api/handler"
	"github.com/ridewake/ridewake/internal/api/middleware"
	"github.com/ridewake/ridewake/internal/auth"
	"github.com/ridewake/ridewake/internal/geocode"
	"github.com/ridewake/ridewake/internal/provider/resilience"
	"github.com/ridewake/ridewake/internal/trip"
	"github.com/ridewake/ridewake/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	ServiceName    string
	Metrics        *middleware.Metrics
	AuthService    *auth.Service
	AccountService *account.Service
	TripService    *trip.Service
	TripManager    *trip.Manager
	WeatherService *weather.Service
	GeocodeService *geocode.Service
	Registry       *resilience.Registry
	Pool           *pgxpool.Pool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ridewake-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.Pool)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	guardianHandler := handler.NewGuardianHandler(cfg.AccountService)
	tripsHandler := handler.NewTripsHandler(cfg.TripService)
	sessionHandler := handler.NewSessionHandler(cfg.TripManager)
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService)
	placesHandler := handler.NewPlacesHandler(cfg.GeocodeService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit) // 10 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/recover", authHandler.Recover)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			// logout-all requires authentication
			r.With(authMiddleware).Post("/logout-all", authHandler.LogoutAll)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Place search (authenticated) - backs the destination picker
		r.Route("/places", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/search", placesHandler.Search)
			r.Get("/reverse", placesHandler.Reverse)
		})

		// Weather endpoints (authenticated) - provider-backed, stricter limit
		r.Route("/weather", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.ExpensiveRateLimit)) // 30 req/min per user
			r.Get("/current", weatherHandler.Current)
			r.Get("/forecast", weatherHandler.Forecast)
		})

		// Guardian contact (authenticated)
		r.Route("/me/guardian", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/", guardianHandler.GetGuardian)
			r.Put("/", guardianHandler.UpsertGuardian)
			r.Delete("/", guardianHandler.DeleteGuardian)
		})

		// Trips (authenticated) - user-based rate limiting
		r.Route("/trips", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))

			// Active trip session
			r.Route("/active", func(r chi.Router) {
				r.Get("/", sessionHandler.GetActiveTrip)
				r.Delete("/", sessionHandler.Cancel)
				r.Post("/destination", sessionHandler.SetDestination)
				r.Put("/destination", sessionHandler.UpdateDestination)
				r.Post("/start", sessionHandler.Start)
				r.Post("/schedule", sessionHandler.ScheduleLater)
				r.Post("/position", sessionHandler.UpdatePosition)
				r.Post("/awake", sessionHandler.ConfirmAwake)
				// Route recomputation calls the routing provider
				r.With(middleware.RateLimitByUser(middleware.ExpensiveRateLimit)).
					Post("/route/retry", sessionHandler.RetryRoute)
			})

			// Scheduled trips
			r.Get("/", tripsHandler.ListTrips)
			r.Post("/", tripsHandler.CreateTrip)
			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", tripsHandler.GetTrip)
				r.Put("/", tripsHandler.UpdateTrip)
				r.Delete("/", tripsHandler.DeleteTrip)
			})
		})
	})

	return r
}
