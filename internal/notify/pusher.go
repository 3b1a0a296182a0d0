package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPusher logs wake alerts instead of delivering them. Used in local
// development and tests where no push transport is configured.
type LogPusher struct {
	Logger zerolog.Logger
}

// Push logs the alert.
func (p *LogPusher) Push(_ context.Context, userID string, alert WakeAlert) error {
	p.Logger.Info().
		Str("user_id", userID).
		Str("trip_id", alert.TripID).
		Str("title", alert.Title).
		Bool("require_ack", alert.RequireAck).
		Msg("wake alert (log only)")
	return nil
}
