package account

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/notify"
)

func newService() *Service {
	return NewService(NewInMemoryRepository(), zerolog.Nop())
}

func TestService_UpsertGuardian(t *testing.T) {
	svc := newService()

	contact, err := svc.UpsertGuardian(context.Background(), "usr_1", UpsertInput{
		Name:  "Amara",
		Phone: "+94771234567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contact.Name != "Amara" {
		t.Errorf("unexpected name %q", contact.Name)
	}

	got, err := svc.GetGuardian(context.Background(), "usr_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phone != "+94771234567" {
		t.Errorf("unexpected phone %q", got.Phone)
	}
}

func TestService_UpsertGuardian_Validation(t *testing.T) {
	svc := newService()

	tests := []struct {
		name    string
		input   UpsertInput
		wantErr error
	}{
		{"missing name", UpsertInput{Phone: "+94771234567"}, ErrNameRequired},
		{"bad phone", UpsertInput{Name: "Amara", Phone: "not-a-number"}, ErrInvalidPhone},
		{"too short", UpsertInput{Name: "Amara", Phone: "12345"}, ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertGuardian(context.Background(), "usr_1", tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_GuardianFor_DefaultMessage(t *testing.T) {
	svc := newService()

	_, err := svc.UpsertGuardian(context.Background(), "usr_1", UpsertInput{
		Name:  "Amara",
		Phone: "+94771234567",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	phone, message, err := svc.GuardianFor(context.Background(), "usr_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if phone != "+94771234567" {
		t.Errorf("unexpected phone %q", phone)
	}
	if message != notify.DefaultGuardianMessage {
		t.Errorf("expected default message, got %q", message)
	}
}

func TestService_GuardianFor_CustomMessage(t *testing.T) {
	svc := newService()

	_, err := svc.UpsertGuardian(context.Background(), "usr_1", UpsertInput{
		Name:    "Amara",
		Phone:   "+94771234567",
		Message: "Arriving soon, start the rice",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	_, message, err := svc.GuardianFor(context.Background(), "usr_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message != "Arriving soon, start the rice" {
		t.Errorf("unexpected message %q", message)
	}
}

func TestService_GuardianFor_NoContact(t *testing.T) {
	svc := newService()

	_, _, err := svc.GuardianFor(context.Background(), "usr_1")
	if !errors.Is(err, notify.ErrNoGuardian) {
		t.Errorf("expected ErrNoGuardian, got %v", err)
	}
}
