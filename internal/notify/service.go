package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the notification service.
type ServiceConfig struct {
	// Sender dispatches guardian SMS messages.
	Sender SMSSender

	// Pusher delivers wake alerts to rider devices.
	Pusher Pusher

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service coordinates the wake alarm and guardian SMS. It owns the alarm
// state exclusively: callers request transitions, never touch the handle.
type Service struct {
	sender SMSSender
	pusher Pusher
	logger zerolog.Logger

	mu     sync.Mutex
	active map[string]bool // trip id -> alarm ringing
}

// NewService creates a new notification service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		sender: cfg.Sender,
		pusher: cfg.Pusher,
		logger: cfg.Logger,
		active: make(map[string]bool),
	}
}

// PlayAlarm starts the wake alarm for a trip. Idempotent: a second call
// while the alarm is already ringing does nothing, so repeated proximity
// hits cannot stack alerts.
func (s *Service) PlayAlarm(ctx context.Context, userID, tripID string) error {
	s.mu.Lock()
	if s.active[tripID] {
		s.mu.Unlock()
		return nil
	}
	s.active[tripID] = true
	s.mu.Unlock()

	alert := WakeAlert{
		TripID:     tripID,
		Title:      "You're almost there",
		Body:       "Wake up! Your destination is within 2 km.",
		RequireAck: true,
	}

	if err := s.pusher.Push(ctx, userID, alert); err != nil {
		// The alarm stays marked active: the rider-side sound loop is
		// already requested and a later StopAlarm must still clear it.
		s.logger.Error().Err(err).
			Str("trip_id", tripID).
			Msg("failed to push wake alert")
	}

	s.logger.Info().
		Str("trip_id", tripID).
		Str("user_id", userID).
		Msg("wake alarm started")

	return nil
}

// StopAlarm stops the wake alarm for a trip. Safe to call when no alarm
// is ringing.
func (s *Service) StopAlarm(tripID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active[tripID] {
		return
	}
	delete(s.active, tripID)

	s.logger.Info().
		Str("trip_id", tripID).
		Msg("wake alarm stopped")
}

// AlarmActive reports whether the alarm is ringing for a trip.
func (s *Service) AlarmActive(tripID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[tripID]
}

// SendGuardianSMS dispatches one SMS to the guardian contact. Exactly one
// attempt is made; on failure the caller keeps its sent flag unset and may
// try again later.
func (s *Service) SendGuardianSMS(ctx context.Context, to, message string) error {
	if to == "" {
		return ErrNoGuardian
	}
	if message == "" {
		message = DefaultGuardianMessage
	}

	if err := s.sender.SendSMS(ctx, SMS{To: to, Message: message}); err != nil {
		s.logger.Error().Err(err).
			Str("gateway", s.sender.Name()).
			Msg("guardian sms dispatch failed")
		return err
	}

	s.logger.Info().
		Str("gateway", s.sender.Name()).
		Msg("guardian sms dispatched")

	return nil
}
