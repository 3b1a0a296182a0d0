package models

// SetDestinationRequest sets or replaces the active trip's destination.
type SetDestinationRequest struct {
	Label string  `json:"label,omitempty"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// PositionUpdateRequest reports the rider's current position.
type PositionUpdateRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// RecordedAt is when the fix was taken on the device. Optional; the
	// server clock is used when absent.
	RecordedAt *Timestamp `json:"recordedAt,omitempty"`
}

// ScheduleLaterRequest converts the planned trip into a scheduled one.
type ScheduleLaterRequest struct {
	DepartAt               Timestamp `json:"departAt"`
	WeatherAdvisoryEnabled bool      `json:"weatherAdvisoryEnabled"`
}

// RouteSummary is the route attached to an active trip.
type RouteSummary struct {
	Polyline         string    `json:"polyline"`
	TotalDistanceKm  float64   `json:"totalDistanceKm"`
	EstimatedMinutes int       `json:"estimatedMinutes"`
	Provider         string    `json:"provider"`
	FetchedAt        Timestamp `json:"fetchedAt"`
}

// WeatherSummary is the destination weather attached to an active trip.
type WeatherSummary struct {
	TemperatureC    float64   `json:"temperatureC"`
	Condition       string    `json:"condition"`
	WindKph         float64   `json:"windKph"`
	HumidityPct     int       `json:"humidityPct"`
	ChanceOfRainPct int       `json:"chanceOfRainPct"`
	FetchedAt       Timestamp `json:"fetchedAt"`
}

// TripDestination is the destination of an active trip.
type TripDestination struct {
	Label string `json:"label,omitempty"`
	Point Point  `json:"point"`
}

// ActiveTrip is the state of the user's current trip session.
type ActiveTrip struct {
	TripID      string           `json:"tripId"`
	State       string           `json:"state"`
	Destination *TripDestination `json:"destination,omitempty"`
	Route       *RouteSummary    `json:"route,omitempty"`
	Weather     *WeatherSummary  `json:"weather,omitempty"`

	// DistanceKm is the last known distance to the destination. Absent
	// until the first position fix arrives.
	DistanceKm *float64 `json:"distanceKm,omitempty"`

	GuardianNotified bool       `json:"guardianNotified"`
	UpdateLockUntil  *Timestamp `json:"updateLockUntil,omitempty"`
	CreatedAt        Timestamp  `json:"createdAt"`
	UpdatedAt        Timestamp  `json:"updatedAt"`
}

// ScheduledTripRequest creates a scheduled trip.
type ScheduledTripRequest struct {
	Label                  string    `json:"label"`
	Lat                    float64   `json:"lat"`
	Lon                    float64   `json:"lon"`
	DepartAt               Timestamp `json:"departAt"`
	WeatherAdvisoryEnabled bool      `json:"weatherAdvisoryEnabled"`
}

// ScheduledTripUpdateRequest edits a scheduled trip. Absent fields are
// left unchanged.
type ScheduledTripUpdateRequest struct {
	Label                  *string    `json:"label,omitempty"`
	DepartAt               *Timestamp `json:"departAt,omitempty"`
	WeatherAdvisoryEnabled *bool      `json:"weatherAdvisoryEnabled,omitempty"`
}

// ScheduledTrip is a trip saved for a future date/time.
type ScheduledTrip struct {
	ID                     string    `json:"id"`
	Label                  string    `json:"label"`
	Lat                    float64   `json:"lat"`
	Lon                    float64   `json:"lon"`
	DepartAt               Timestamp `json:"departAt"`
	WeatherAdvisoryEnabled bool      `json:"weatherAdvisoryEnabled"`
	NotificationSent       bool      `json:"notificationSent"`
	CreatedAt              Timestamp `json:"createdAt"`
	UpdatedAt              Timestamp `json:"updatedAt"`
}

// ScheduledTripList is the list of a user's scheduled trips.
type ScheduledTripList struct {
	Items []ScheduledTrip `json:"items"`
}
