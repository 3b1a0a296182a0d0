package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ridewake/ridewake/internal/api/models"
	"github.com/ridewake/ridewake/internal/api/response"
	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/weather"
)

// WeatherHandler handles destination weather endpoints.
type WeatherHandler struct {
	weather *weather.Service
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{weather: svc}
}

// parsePoint reads lat/lon query parameters.
func parsePoint(r *http.Request) (geo.Point, []models.FieldError) {
	var errs []models.FieldError

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be a number", Code: "INVALID"})
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be a number", Code: "INVALID"})
	}
	if len(errs) > 0 {
		return geo.Point{}, errs
	}

	pt := geo.Point{Lat: lat, Lon: lon}
	if !pt.Valid() {
		errs = append(errs, models.FieldError{Field: "lat", Message: "coordinates are out of range", Code: "OUT_OF_RANGE"})
	}
	return pt, errs
}

func writeWeatherError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "lat", Message: "coordinates are out of range", Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, weather.ErrOutOfForecastRange):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "at", Message: "date is outside the forecast window", Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, weather.ErrNoDataForLocation):
		response.NotFound(w, r, "no weather data for this location")
	case errors.Is(err, weather.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "weather provider unavailable")
	default:
		response.InternalError(w, r, "weather lookup failed")
	}
}

// Current handles GET /v1/weather/current - current conditions for a point.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	pt, errs := parsePoint(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	snapshot, err := h.weather.CurrentAndForecast(r.Context(), pt)
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.WeatherSummary{
		TemperatureC:    snapshot.TemperatureC,
		Condition:       snapshot.Condition,
		WindKph:         snapshot.WindKph,
		HumidityPct:     snapshot.HumidityPct,
		ChanceOfRainPct: snapshot.ChanceOfRainPct,
		FetchedAt:       models.Timestamp(snapshot.FetchedAt),
	})
}

// Forecast handles GET /v1/weather/forecast - hourly forecast for a
// point and date/time. Dates outside the provider window are rejected
// without calling the provider.
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	pt, errs := parsePoint(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
	if err != nil {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "at", Message: "must be an RFC3339 timestamp", Code: "INVALID"},
		})
		return
	}

	window, err := h.weather.ForecastForDateTime(r.Context(), pt, at)
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}

	hours := make([]models.HourlyForecast, len(window.Hours))
	for i, hr := range window.Hours {
		hours[i] = models.HourlyForecast{
			Time:            models.Timestamp(hr.Time),
			TemperatureC:    hr.TemperatureC,
			Condition:       hr.Condition,
			WindKph:         hr.WindKph,
			ChanceOfRainPct: hr.ChanceOfRainPct,
		}
	}

	response.JSON(w, r, http.StatusOK, models.ForecastResponse{
		Date:  models.Timestamp(window.Date),
		Hours: hours,
	})
}
