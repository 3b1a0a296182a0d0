package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ridewake/ridewake/internal/api/models"
	"github.com/ridewake/ridewake/internal/api/response"
	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/notify"
	"github.com/ridewake/ridewake/internal/trip"
)

// SessionHandler handles the active trip session endpoints.
type SessionHandler struct {
	manager *trip.Manager
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *trip.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

func toActiveTrip(t *trip.Trip) models.ActiveTrip {
	out := models.ActiveTrip{
		TripID:           t.ID,
		State:            string(t.State),
		GuardianNotified: t.SMSSent,
		CreatedAt:        models.Timestamp(t.CreatedAt),
		UpdatedAt:        models.Timestamp(t.UpdatedAt),
	}

	if t.Destination != nil {
		out.Destination = &models.TripDestination{
			Label: t.Destination.Label,
			Point: models.Point{Lat: t.Destination.Point.Lat, Lon: t.Destination.Point.Lon},
		}
	}
	if t.Route != nil {
		out.Route = &models.RouteSummary{
			Polyline:         t.Route.GeometryPolyline,
			TotalDistanceKm:  t.Route.TotalDistanceKm,
			EstimatedMinutes: t.Route.EstimatedMinutes,
			Provider:         t.Route.Provider,
			FetchedAt:        models.Timestamp(t.Route.FetchedAt),
		}
	}
	if t.Weather != nil {
		out.Weather = &models.WeatherSummary{
			TemperatureC:    t.Weather.TemperatureC,
			Condition:       t.Weather.Condition,
			WindKph:         t.Weather.WindKph,
			HumidityPct:     t.Weather.HumidityPct,
			ChanceOfRainPct: t.Weather.ChanceOfRainPct,
			FetchedAt:       models.Timestamp(t.Weather.FetchedAt),
		}
	}
	if t.DistanceKm >= 0 {
		distance := t.DistanceKm
		out.DistanceKm = &distance
	}
	if !t.UpdateLockUntil.IsZero() {
		ts := models.Timestamp(t.UpdateLockUntil)
		out.UpdateLockUntil = &ts
	}

	return out
}

// writeSessionError maps trip session errors to problem responses.
func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, trip.ErrInvalidDestination):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "lat", Message: "coordinates are out of range", Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, trip.ErrInvalidTransition):
		response.Conflict(w, r, "operation not allowed in the current trip state")
	case errors.Is(err, trip.ErrUpdateLocked):
		response.Conflict(w, r, "destination changes are locked for a few more minutes")
	case errors.Is(err, trip.ErrNoRoute):
		response.Conflict(w, r, "route is still being computed")
	case errors.Is(err, trip.ErrNoDestination):
		response.Conflict(w, r, "no destination set")
	case errors.Is(err, trip.ErrNoLabel):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "label", Message: "destination label required to schedule", Code: "REQUIRED"},
		})
	case errors.Is(err, trip.ErrPastSchedule):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "departAt", Message: "departure must be in the future", Code: "PAST"},
		})
	case errors.Is(err, trip.ErrNoActiveTrip):
		response.NotFound(w, r, "no active trip")
	case errors.Is(err, notify.ErrNoGuardian):
		response.Conflict(w, r, "no guardian contact configured")
	case errors.Is(err, notify.ErrSendFailed):
		response.ServiceUnavailable(w, r, "guardian SMS could not be sent; confirm again to retry")
	default:
		response.InternalError(w, r, "trip operation failed")
	}
}

// GetActiveTrip handles GET /v1/trips/active - current trip snapshot.
func (h *SessionHandler) GetActiveTrip(w http.ResponseWriter, r *http.Request) {
	session, ok := h.manager.Active(GetUserID(r.Context()))
	if !ok {
		response.NotFound(w, r, "no active trip")
		return
	}

	snapshot, err := session.Snapshot()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toActiveTrip(snapshot))
}

// SetDestination handles POST /v1/trips/active/destination - choose the
// destination and start route/weather planning.
func (h *SessionHandler) SetDestination(w http.ResponseWriter, r *http.Request) {
	var req models.SetDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	session := h.manager.Session(GetUserID(r.Context()))
	dest := trip.Destination{
		Label: req.Label,
		Point: geo.Point{Lat: req.Lat, Lon: req.Lon},
	}

	if err := session.SetDestination(dest); err != nil {
		writeSessionError(w, r, err)
		return
	}

	snapshot, err := session.Snapshot()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toActiveTrip(snapshot))
}

// UpdateDestination handles PUT /v1/trips/active/destination - move the
// destination of a live trip after the cool-down.
func (h *SessionHandler) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	var req models.SetDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	session, ok := h.manager.Active(GetUserID(r.Context()))
	if !ok {
		response.NotFound(w, r, "no active trip")
		return
	}

	dest := trip.Destination{
		Label: req.Label,
		Point: geo.Point{Lat: req.Lat, Lon: req.Lon},
	}
	if err := session.UpdateDestination(dest); err != nil {
		writeSessionError(w, r, err)
		return
	}

	snapshot, err := session.Snapshot()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toActiveTrip(snapshot))
}

// Start handles POST /v1/trips/active/start - begin live tracking.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, ok := h.manager.Active(GetUserID(r.Context()))
	if !ok {
		response.NotFound(w, r, "no active trip")
		return
	}

	if err := session.ScheduleNow(); err != nil {
		writeSessionError(w, r, err)
		return
	}

	snapshot, err := session.Snapshot()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toActiveTrip(snapshot))
}

// ScheduleLater handles POST /v1/trips/active/schedule - save the planned
// trip for a future departure and end the session.
func (h *SessionHandler) ScheduleLater(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleLaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	userID := GetUserID(r.Context())
	session, ok := h.manager.Active(userID)
	if !ok {
		response.NotFound(w, r, "no active trip")
		return
	}

	scheduled, err := session.ScheduleLater(r.Context(), time.Time(req.DepartAt), req.WeatherAdvisoryEnabled)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	// The planned trip became a stored record; the live session is done.
	h.manager.End(userID)

	response.Created(w, r, "/v1/trips/"+scheduled.ID, toScheduledTrip(scheduled))
}

// UpdatePosition handles POST /v1/trips/active/position - report a
// position fix.
func (h *SessionHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req models.PositionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	pt := geo.Point{Lat: req.Lat, Lon: req.Lon}
	if !pt.Valid() {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "lat", Message: "coordinates are out of range", Code: "OUT_OF_RANGE"},
		})
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = time.Time(*req.RecordedAt)
	}

	session := h.manager.Session(GetUserID(r.Context()))
	if err := session.UpdatePosition(geo.Position{Point: pt, Timestamp: recordedAt}); err != nil {
		writeSessionError(w, r, err)
		return
	}

	snapshot, err := session.Snapshot()
	if err != nil {
		// No trip yet: the fix was recorded for later use as route origin.
		response.NoContent(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, toActiveTrip(snapshot))
}

// ConfirmAwake handles POST /v1/trips/active/awake - acknowledge the wake
// alarm and notify the guardian.
func (h *SessionHandler) ConfirmAwake(w http.ResponseWriter, r *http.Request) {
	session, ok := h.manager.Active(GetUserID(r.Context()))
	if !ok {
		response.NotFound(w, r, "no active trip")
		return
	}

	if err := session.ConfirmAwake(r.Context()); err != nil {
		writeSessionError(w, r, err)
		return
	}

	snapshot, err := session.Snapshot()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toActiveTrip(snapshot))
}

// RetryRoute handles POST /v1/trips/active/route/retry - re-attempt a
// failed route fetch.
func (h *SessionHandler) RetryRoute(w http.ResponseWriter, r *http.Request) {
	session, ok := h.manager.Active(GetUserID(r.Context()))
	if !ok {
		response.NotFound(w, r, "no active trip")
		return
	}

	if err := session.RetryRoute(); err != nil {
		writeSessionError(w, r, err)
		return
	}

	response.Accepted(w, r, "/v1/trips/active", nil)
}

// Cancel handles DELETE /v1/trips/active - abandon the trip.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	session, ok := h.manager.Active(userID)
	if !ok {
		response.NotFound(w, r, "no active trip")
		return
	}

	if err := session.Cancel(); err != nil {
		writeSessionError(w, r, err)
		return
	}

	h.manager.End(userID)
	response.NoContent(w, r)
}
