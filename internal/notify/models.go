// Package notify owns the wake alarm and guardian SMS side effects of a
// trip. The alarm handle is accessed only through PlayAlarm/StopAlarm.
package notify

import (
	"context"
	"errors"
)

// Notification errors.
var (
	// ErrSendFailed indicates the SMS gateway rejected or failed the
	// dispatch. The message was not sent; the caller decides whether to
	// retry.
	ErrSendFailed = errors.New("sms send failed")
	// ErrNoGuardian indicates no guardian contact is configured.
	ErrNoGuardian = errors.New("no guardian contact configured")
)

// DefaultGuardianMessage is sent when the guardian contact has no custom
// message configured.
const DefaultGuardianMessage = "I'm within 2km of my destination."

// SMS is a single outbound text message.
type SMS struct {
	To      string
	Message string
}

// SMSSender dispatches a single SMS. Implementations make exactly one
// attempt; there is no built-in retry.
type SMSSender interface {
	SendSMS(ctx context.Context, msg SMS) error
	Name() string
}

// WakeAlert is the payload pushed to the rider's device when the
// destination proximity threshold is reached.
type WakeAlert struct {
	TripID     string
	Title      string
	Body       string
	RequireAck bool
}

// Pusher delivers wake alerts to a rider's device.
type Pusher interface {
	Push(ctx context.Context, userID string, alert WakeAlert) error
}

// Error provides detailed error information from the notification gateway.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
