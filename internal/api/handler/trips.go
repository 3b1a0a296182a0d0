package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ridewake/ridewake/internal/api/models"
	"github.com/ridewake/ridewake/internal/api/response"
	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/trip"
)

// TripsHandler handles scheduled trip endpoints.
type TripsHandler struct {
	trips *trip.Service
}

// NewTripsHandler creates a new TripsHandler.
func NewTripsHandler(trips *trip.Service) *TripsHandler {
	return &TripsHandler{trips: trips}
}

func toScheduledTrip(t *trip.ScheduledTrip) models.ScheduledTrip {
	return models.ScheduledTrip{
		ID:                     t.ID,
		Label:                  t.Label,
		Lat:                    t.Lat,
		Lon:                    t.Lon,
		DepartAt:               models.Timestamp(t.DepartAt),
		WeatherAdvisoryEnabled: t.WeatherAdvisoryEnabled,
		NotificationSent:       t.NotificationSent,
		CreatedAt:              models.Timestamp(t.CreatedAt),
		UpdatedAt:              models.Timestamp(t.UpdatedAt),
	}
}

// writeScheduleError maps scheduled-trip service errors to problem responses.
func writeScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, trip.ErrNoLabel):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "label", Message: "label is required", Code: "REQUIRED"},
		})
	case errors.Is(err, trip.ErrInvalidDestination):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "lat", Message: "coordinates are out of range", Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, trip.ErrPastSchedule):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "departAt", Message: "departure must be in the future", Code: "PAST"},
		})
	case errors.Is(err, trip.ErrTripNotFound):
		response.NotFound(w, r, "scheduled trip not found")
	default:
		response.InternalError(w, r, "scheduled trip operation failed")
	}
}

// ListTrips handles GET /v1/trips - list scheduled trips.
func (h *TripsHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	trips, err := h.trips.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to list scheduled trips")
		return
	}

	items := make([]models.ScheduledTrip, len(trips))
	for i, t := range trips {
		items[i] = toScheduledTrip(t)
	}
	response.JSON(w, r, http.StatusOK, models.ScheduledTripList{Items: items})
}

// CreateTrip handles POST /v1/trips - schedule a trip.
func (h *TripsHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req models.ScheduledTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	created, err := h.trips.Create(r.Context(), userID, trip.CreateInput{
		Label:                  req.Label,
		Point:                  geo.Point{Lat: req.Lat, Lon: req.Lon},
		DepartAt:               time.Time(req.DepartAt),
		WeatherAdvisoryEnabled: req.WeatherAdvisoryEnabled,
	})
	if err != nil {
		writeScheduleError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/trips/%s", created.ID)
	response.Created(w, r, location, toScheduledTrip(created))
}

// GetTrip handles GET /v1/trips/{tripId} - fetch one scheduled trip.
func (h *TripsHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	t, err := h.trips.Get(r.Context(), userID, tripID)
	if err != nil {
		writeScheduleError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toScheduledTrip(t))
}

// UpdateTrip handles PUT /v1/trips/{tripId} - edit a scheduled trip.
func (h *TripsHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	var req models.ScheduledTripUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	input := trip.UpdateInput{
		Label:                  req.Label,
		WeatherAdvisoryEnabled: req.WeatherAdvisoryEnabled,
	}
	if req.DepartAt != nil {
		departAt := time.Time(*req.DepartAt)
		input.DepartAt = &departAt
	}

	updated, err := h.trips.Update(r.Context(), userID, tripID, input)
	if err != nil {
		writeScheduleError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toScheduledTrip(updated))
}

// DeleteTrip handles DELETE /v1/trips/{tripId} - remove a scheduled trip.
func (h *TripsHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripId")

	if err := h.trips.Delete(r.Context(), userID, tripID); err != nil {
		writeScheduleError(w, r, err)
		return
	}

	response.NoContent(w, r)
}
