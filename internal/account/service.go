package account

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/notify"
)

// phoneRe accepts E.164-style numbers with an optional leading plus.
var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Service manages guardian contacts.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new account service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetGuardian retrieves the user's guardian contact.
func (s *Service) GetGuardian(ctx context.Context, userID string) (*GuardianContact, error) {
	return s.repo.Get(ctx, userID)
}

// UpsertInput describes a guardian contact to save.
type UpsertInput struct {
	Name    string
	Phone   string
	Message string
}

// UpsertGuardian creates or replaces the user's guardian contact.
func (s *Service) UpsertGuardian(ctx context.Context, userID string, input UpsertInput) (*GuardianContact, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if !phoneRe.MatchString(input.Phone) {
		return nil, ErrInvalidPhone
	}

	now := time.Now()
	contact := &GuardianContact{
		UserID:    userID,
		Name:      input.Name,
		Phone:     input.Phone,
		Message:   input.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if existing, err := s.repo.Get(ctx, userID); err == nil {
		contact.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, contact); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("guardian contact saved")

	return contact, nil
}

// DeleteGuardian removes the user's guardian contact.
func (s *Service) DeleteGuardian(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// GuardianFor resolves the guardian phone and arrival message for a user.
// Used by the trip session when the rider confirms they are awake.
func (s *Service) GuardianFor(ctx context.Context, userID string) (string, string, error) {
	contact, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrGuardianNotFound) {
			return "", "", notify.ErrNoGuardian
		}
		return "", "", err
	}

	message := contact.Message
	if message == "" {
		message = notify.DefaultGuardianMessage
	}
	return contact.Phone, message, nil
}
