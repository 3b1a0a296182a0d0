// Package main provides the entrypoint for the RideWake API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/account"
	"github.com/ridewake/ridewake/internal/api"
	"github.com/ridewake/ridewake/internal/api/middleware"
	"github.com/ridewake/ridewake/internal/auth"
	"github.com/ridewake/ridewake/internal/database"
	"github.com/ridewake/ridewake/internal/geocode"
	"github.com/ridewake/ridewake/internal/geocode/nominatim"
	"github.com/ridewake/ridewake/internal/notify"
	"github.com/ridewake/ridewake/internal/notify/smsgateway"
	"github.com/ridewake/ridewake/internal/provider/resilience"
	"github.com/ridewake/ridewake/internal/routing"
	"github.com/ridewake/ridewake/internal/routing/tomtom"
	"github.com/ridewake/ridewake/internal/telemetry"
	"github.com/ridewake/ridewake/internal/trip"
	"github.com/ridewake/ridewake/internal/weather"
	"github.com/ridewake/ridewake/internal/weather/weatherapi"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ridewake-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RideWake API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Provider health registry, shared by all outbound clients
	registry := resilience.NewRegistry()

	// Initialize auth repositories and service
	authUserRepo := auth.NewPostgresUserRepository(pool)
	authRefreshRepo := auth.NewPostgresRefreshTokenRepository(pool)

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    authUserRepo,
		RefreshRepo: authRefreshRepo,
	})
	log.Info().Msg("auth service initialized")

	// Initialize guardian contact service
	accountService := account.NewService(account.NewPostgresRepository(pool), log)
	log.Info().Msg("account service initialized")

	// Initialize routing provider and service
	tomtomClient := tomtom.NewClient(tomtom.ClientConfig{
		APIKey:   os.Getenv("TOMTOM_API_KEY"),
		Registry: registry,
		Logger:   log,
	})
	routingService := routing.NewService(routing.ServiceConfig{
		Provider: tomtomClient,
		Logger:   log,
	})
	log.Info().Msg("routing service initialized")

	// Initialize weather provider and service
	weatherClient := weatherapi.NewClient(weatherapi.ClientConfig{
		APIKey:   os.Getenv("WEATHERAPI_KEY"),
		Registry: registry,
		Logger:   log,
	})
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherClient,
		Logger:   log,
	})
	log.Info().Msg("weather service initialized")

	// Initialize geocoding provider and service
	nominatimClient := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
		UserAgent: "ridewake/" + Version,
		Registry:  registry,
		Logger:    log,
	})
	geocodeService := geocode.NewService(geocode.ServiceConfig{
		Provider: nominatimClient,
		Logger:   log,
	})
	log.Info().Msg("geocode service initialized")

	// Initialize notification service
	smsClient := smsgateway.NewClient(smsgateway.ClientConfig{
		BaseURL:  os.Getenv("SMS_GATEWAY_URL"),
		APIKey:   os.Getenv("SMS_GATEWAY_KEY"),
		From:     os.Getenv("SMS_GATEWAY_FROM"),
		Registry: registry,
		Logger:   log,
	})
	notifyService := notify.NewService(notify.ServiceConfig{
		Sender: smsClient,
		Pusher: &notify.LogPusher{Logger: log},
		Logger: log,
	})
	log.Info().Msg("notify service initialized")

	// Initialize trip schedule store, scheduled-trip service, and the
	// per-user session manager
	scheduleStore := trip.NewPostgresScheduleStore(pool)
	tripService := trip.NewService(trip.ServiceConfig{
		Store:  scheduleStore,
		Logger: log,
	})
	tripManager := trip.NewManager(trip.ManagerConfig{
		Router:    routingService,
		Weather:   weatherService,
		Notifier:  notifyService,
		Guardians: accountService,
		Store:     scheduleStore,
		Logger:    log,
	})
	log.Info().Msg("trip services initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		AuthService:    authService,
		AccountService: accountService,
		TripService:    tripService,
		TripManager:    tripManager,
		WeatherService: weatherService,
		GeocodeService: geocodeService,
		Registry:       registry,
		Pool:           pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
