package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
)

func newScheduleService() (*Service, *InMemoryScheduleStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	store := NewInMemoryScheduleStore()
	svc := NewService(ServiceConfig{Store: store, Logger: zerolog.Nop(), Now: clock.Now})
	return svc, store, clock
}

func TestService_Create(t *testing.T) {
	svc, store, clock := newScheduleService()

	created, err := svc.Create(context.Background(), "usr_1", CreateInput{
		Label:                  "Kandy",
		Point:                  geo.Point{Lat: 7.2906, Lon: 80.6337},
		DepartAt:               clock.Now().Add(24 * time.Hour),
		WeatherAdvisoryEnabled: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ID == "" {
		t.Error("expected an id")
	}
	if created.NotificationSent {
		t.Error("new trip must start unnotified")
	}

	stored, err := store.Get(context.Background(), "usr_1", created.ID)
	if err != nil {
		t.Fatalf("expected stored trip: %v", err)
	}
	if stored.Label != "Kandy" {
		t.Errorf("unexpected label %q", stored.Label)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, clock := newScheduleService()
	future := clock.Now().Add(time.Hour)
	valid := geo.Point{Lat: 7.2906, Lon: 80.6337}

	tests := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{"missing label", CreateInput{Point: valid, DepartAt: future}, ErrNoLabel},
		{"bad coordinates", CreateInput{Label: "x", Point: geo.Point{Lat: 95}, DepartAt: future}, ErrInvalidDestination},
		{"past departure", CreateInput{Label: "x", Point: valid, DepartAt: clock.Now().Add(-time.Minute)}, ErrPastSchedule},
		{"departure right now", CreateInput{Label: "x", Point: valid, DepartAt: clock.Now()}, ErrPastSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "usr_1", tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_Update_ResetsNotificationOnNewDeparture(t *testing.T) {
	svc, store, clock := newScheduleService()

	created, err := svc.Create(context.Background(), "usr_1", CreateInput{
		Label:    "Kandy",
		Point:    geo.Point{Lat: 7.2906, Lon: 80.6337},
		DepartAt: clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.MarkNotified(context.Background(), created.ID); err != nil {
		t.Fatalf("mark notified: %v", err)
	}

	newDepart := clock.Now().Add(48 * time.Hour)
	updated, err := svc.Update(context.Background(), "usr_1", created.ID, UpdateInput{DepartAt: &newDepart})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.NotificationSent {
		t.Error("moving the departure must reset the notification flag")
	}
	if !updated.DepartAt.Equal(newDepart) {
		t.Errorf("expected new departure %v, got %v", newDepart, updated.DepartAt)
	}
}

func TestService_Update_PastDepartureRejected(t *testing.T) {
	svc, _, clock := newScheduleService()

	created, err := svc.Create(context.Background(), "usr_1", CreateInput{
		Label:    "Kandy",
		Point:    geo.Point{Lat: 7.2906, Lon: 80.6337},
		DepartAt: clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	past := clock.Now().Add(-time.Hour)
	_, err = svc.Update(context.Background(), "usr_1", created.ID, UpdateInput{DepartAt: &past})
	if !errors.Is(err, ErrPastSchedule) {
		t.Errorf("expected ErrPastSchedule, got %v", err)
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, _, _ := newScheduleService()

	err := svc.Delete(context.Background(), "usr_1", "sch_missing")
	if !errors.Is(err, ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestService_Get_WrongUser(t *testing.T) {
	svc, _, clock := newScheduleService()

	created, err := svc.Create(context.Background(), "usr_1", CreateInput{
		Label:    "Kandy",
		Point:    geo.Point{Lat: 7.2906, Lon: 80.6337},
		DepartAt: clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Get(context.Background(), "usr_2", created.ID)
	if !errors.Is(err, ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound for another user's trip, got %v", err)
	}
}

func TestInMemoryScheduleStore_MarkNotified_AtMostOnce(t *testing.T) {
	store := NewInMemoryScheduleStore()
	trip := &ScheduledTrip{ID: "sch_1", UserID: "usr_1", Label: "x", DepartAt: time.Now()}
	if err := store.Save(context.Background(), trip); err != nil {
		t.Fatalf("save: %v", err)
	}

	first, err := store.MarkNotified(context.Background(), "sch_1")
	if err != nil || !first {
		t.Fatalf("expected first claim to win, got %v/%v", first, err)
	}

	second, err := store.MarkNotified(context.Background(), "sch_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second {
		t.Error("second claim must lose")
	}
}

func TestInMemoryScheduleStore_ListDueBefore(t *testing.T) {
	store := NewInMemoryScheduleStore()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	trips := []*ScheduledTrip{
		{ID: "sch_due", UserID: "u", Label: "a", DepartAt: now.Add(-time.Hour)},
		{ID: "sch_future", UserID: "u", Label: "b", DepartAt: now.Add(time.Hour)},
		{ID: "sch_done", UserID: "u", Label: "c", DepartAt: now.Add(-2 * time.Hour), NotificationSent: true},
	}
	for _, tr := range trips {
		if err := store.Save(context.Background(), tr); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	due, err := store.ListDueBefore(context.Background(), now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(due) != 1 || due[0].ID != "sch_due" {
		t.Errorf("expected only sch_due, got %+v", due)
	}
}
