package handler

import (
	"errors"
	"net/http"

	"github.com/ridewake/ridewake/internal/api/models"
	"github.com/ridewake/ridewake/internal/api/response"
	"github.com/ridewake/ridewake/internal/geocode"
)

// PlacesHandler handles destination search endpoints.
type PlacesHandler struct {
	geocoder *geocode.Service
}

// NewPlacesHandler creates a new PlacesHandler.
func NewPlacesHandler(geocoder *geocode.Service) *PlacesHandler {
	return &PlacesHandler{geocoder: geocoder}
}

func toPlace(p geocode.Place) models.Place {
	return models.Place{
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Point:       models.Point{Lat: p.Point.Lat, Lon: p.Point.Lon},
		Category:    p.Category,
	}
}

func writeGeocodeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, geocode.ErrInvalidQuery):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "q", Message: "query must be at least 2 characters", Code: "TOO_SHORT"},
		})
	case errors.Is(err, geocode.ErrNoResults):
		response.NotFound(w, r, "no places found")
	case errors.Is(err, geocode.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "place search unavailable")
	default:
		response.InternalError(w, r, "place lookup failed")
	}
}

// Search handles GET /v1/places/search - resolve a free-text query to
// candidate places.
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	places, err := h.geocoder.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeGeocodeError(w, r, err)
		return
	}

	items := make([]models.Place, len(places))
	for i, p := range places {
		items[i] = toPlace(p)
	}
	response.JSON(w, r, http.StatusOK, models.PlaceList{Items: items})
}

// Reverse handles GET /v1/places/reverse - resolve coordinates to the
// nearest place for the map marker.
func (h *PlacesHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	pt, errs := parsePoint(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	place, err := h.geocoder.Reverse(r.Context(), pt)
	if err != nil {
		writeGeocodeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toPlace(*place))
}
