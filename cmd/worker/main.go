// Package main provides the entrypoint for the RideWake schedule worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/database"
	"github.com/ridewake/ridewake/internal/notify"
	"github.com/ridewake/ridewake/internal/provider/resilience"
	"github.com/ridewake/ridewake/internal/trip"
	"github.com/ridewake/ridewake/internal/weather"
	"github.com/ridewake/ridewake/internal/weather/weatherapi"
	"github.com/ridewake/ridewake/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "ridewake-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RideWake worker")

	// Worker also exposes a health endpoint for the container platform
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	registry := resilience.NewRegistry()

	// Weather service backs the departure-time rain advisories
	weatherClient := weatherapi.NewClient(weatherapi.ClientConfig{
		APIKey:   os.Getenv("WEATHERAPI_KEY"),
		Registry: registry,
		Logger:   log,
	})
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherClient,
		Logger:   log,
	})

	sweepJob := worker.NewSweepJob(worker.SweepJobConfig{
		Config:         worker.DefaultSweepConfig(),
		Logger:         log,
		Store:          trip.NewPostgresScheduleStore(pool),
		Pusher:         &notify.LogPusher{Logger: log},
		WeatherService: weatherService,
	})

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"OK","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub triggers when configured; otherwise run on a ticker.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			SweepJob:         sweepJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub handler stopped")
			}
		}()
		log.Info().
			Str("subscription", subscription).
			Msg("worker listening for pubsub jobs")
	} else {
		interval := 1 * time.Minute
		if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
			if parsed, parseErr := time.ParseDuration(v); parseErr == nil {
				interval = parsed
			}
		}

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			log.Info().Dur("interval", interval).Msg("worker sweeping on a timer")
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := sweepJob.Run(ctx); err != nil && ctx.Err() == nil {
						log.Error().Err(err).Msg("schedule sweep failed")
					}
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
