package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/notify"
	"github.com/ridewake/ridewake/internal/trip"
	"github.com/ridewake/ridewake/internal/weather"
)

// SweepJob finds scheduled trips whose departure is imminent and pushes
// a reminder to the rider. Each trip is claimed in the store before the
// push, so a reminder goes out at most once no matter how many workers
// sweep concurrently.
type SweepJob struct {
	config SweepConfig
	logger zerolog.Logger

	store  trip.ScheduleStore
	pusher notify.Pusher

	// weatherService is optional; without it advisories are skipped.
	weatherService *weather.Service

	now func() time.Time

	metrics *SweepMetrics
}

// SweepMetrics tracks sweep job statistics.
type SweepMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalSweeps    int64
	TripsNotified  int64
	AdvisoriesSent int64
	FailedPushes   int64

	// Timings
	LastSweepAt       time.Time
	LastSweepDuration time.Duration
	TotalDuration     time.Duration
}

// SweepJobConfig holds configuration for creating a SweepJob.
type SweepJobConfig struct {
	Config         SweepConfig
	Logger         zerolog.Logger
	Store          trip.ScheduleStore
	Pusher         notify.Pusher
	WeatherService *weather.Service

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewSweepJob creates a new sweep job processor.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &SweepJob{
		config:         cfg.Config.withDefaults(),
		logger:         cfg.Logger,
		store:          cfg.Store,
		pusher:         cfg.Pusher,
		weatherService: cfg.WeatherService,
		now:            now,
		metrics:        &SweepMetrics{},
	}
}

// SweepResult contains the result of one sweep.
type SweepResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Due            int
	Notified       int
	AlreadyClaimed int
	AdvisoriesSent int
	PushFailures   int
	Failed         int
	Errors         []SweepError
}

// SweepError represents an error while processing one trip.
type SweepError struct {
	TripID string
	Error  string
}

// Run executes one sweep over the schedule store.
func (j *SweepJob) Run(ctx context.Context) (*SweepResult, error) {
	startTime := j.now()
	result := &SweepResult{StartTime: startTime}

	cutoff := startTime.Add(j.config.Lookahead)
	due, err := j.store.ListDueBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("listing due trips: %w", err)
	}
	result.Due = len(due)

	j.logger.Info().
		Int("due", len(due)).
		Time("cutoff", cutoff).
		Int("concurrency", j.config.Concurrency).
		Msg("starting schedule sweep")

	tripsChan := make(chan *trip.ScheduledTrip, len(due))
	resultsChan := make(chan tripResult, len(due))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.sweepWorker(ctx, tripsChan, resultsChan)
		}()
	}

	for _, t := range due {
		tripsChan <- t
	}
	close(tripsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		switch {
		case tr.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, SweepError{TripID: tr.tripID, Error: tr.err.Error()})
		case !tr.claimed:
			result.AlreadyClaimed++
		default:
			result.Notified++
			if tr.advisory {
				result.AdvisoriesSent++
			}
			if tr.pushFailed {
				result.PushFailures++
			}
		}
	}

	result.EndTime = j.now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("notified", result.Notified).
		Int("already_claimed", result.AlreadyClaimed).
		Int("advisories", result.AdvisoriesSent).
		Int("failed", result.Failed).
		Msg("schedule sweep completed")

	return result, nil
}

type tripResult struct {
	tripID     string
	claimed    bool
	advisory   bool
	pushFailed bool
	err        error
}

func (j *SweepJob) sweepWorker(ctx context.Context, trips <-chan *trip.ScheduledTrip, results chan<- tripResult) {
	for t := range trips {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.processTrip(ctx, t)
		}
	}
}

// processTrip claims the trip and pushes the departure reminder. The
// claim happens first: a push failure after a successful claim is logged
// and counted, but the trip is never re-notified.
func (j *SweepJob) processTrip(ctx context.Context, t *trip.ScheduledTrip) tripResult {
	result := tripResult{tripID: t.ID}

	tripCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	claimed, err := j.store.MarkNotified(tripCtx, t.ID)
	if err != nil {
		result.err = fmt.Errorf("claiming trip: %w", err)
		return result
	}
	if !claimed {
		// Another sweep got there first.
		return result
	}
	result.claimed = true

	body := fmt.Sprintf("Your trip to %s departs at %s.", t.Label, t.DepartAt.Format("15:04"))

	if advisory := j.weatherAdvisory(tripCtx, t); advisory != "" {
		body += " " + advisory
		result.advisory = true
	}

	alert := notify.WakeAlert{
		TripID: t.ID,
		Title:  "Time to get going",
		Body:   body,
	}
	if err := j.pusher.Push(tripCtx, t.UserID, alert); err != nil {
		// The claim stands; log and count rather than risk a duplicate.
		result.pushFailed = true
		j.logger.Error().Err(err).
			Str("scheduled_id", t.ID).
			Str("user_id", t.UserID).
			Msg("departure reminder push failed")
	}

	return result
}

// weatherAdvisory returns an advisory sentence when the trip opted in
// and the forecast at departure crosses the rain threshold. Advisory
// failures never block the reminder.
func (j *SweepJob) weatherAdvisory(ctx context.Context, t *trip.ScheduledTrip) string {
	if !j.config.SendWeatherAdvisories || !t.WeatherAdvisoryEnabled || j.weatherService == nil {
		return ""
	}
	if !j.weatherService.InForecastWindow(t.DepartAt) {
		return ""
	}

	pt := geo.Point{Lat: t.Lat, Lon: t.Lon}
	window, err := j.weatherService.ForecastForDateTime(ctx, pt, t.DepartAt)
	if err != nil {
		j.logger.Warn().Err(err).
			Str("scheduled_id", t.ID).
			Msg("advisory forecast fetch failed")
		return ""
	}

	hour := window.At(t.DepartAt)
	if hour == nil || hour.ChanceOfRainPct < j.config.RainThresholdPct {
		return ""
	}

	return fmt.Sprintf("Heads up: %d%% chance of rain at your destination.", hour.ChanceOfRainPct)
}

func (j *SweepJob) updateMetrics(result *SweepResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalSweeps++
	j.metrics.TripsNotified += int64(result.Notified)
	j.metrics.AdvisoriesSent += int64(result.AdvisoriesSent)
	j.metrics.FailedPushes += int64(result.PushFailures)
	j.metrics.LastSweepAt = result.EndTime
	j.metrics.LastSweepDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *SweepJob) GetMetrics() SweepMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return SweepMetrics{
		TotalSweeps:       j.metrics.TotalSweeps,
		TripsNotified:     j.metrics.TripsNotified,
		AdvisoriesSent:    j.metrics.AdvisoriesSent,
		FailedPushes:      j.metrics.FailedPushes,
		LastSweepAt:       j.metrics.LastSweepAt,
		LastSweepDuration: j.metrics.LastSweepDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *SweepJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_sweeps":        m.TotalSweeps,
		"trips_notified":      m.TripsNotified,
		"advisories_sent":     m.AdvisoriesSent,
		"failed_pushes":       m.FailedPushes,
		"last_sweep_at":       m.LastSweepAt,
		"last_sweep_duration": m.LastSweepDuration.String(),
		"total_duration":      m.TotalDuration.String(),
	}
}
