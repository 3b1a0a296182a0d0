package tomtom

// calculateRouteResponse is the TomTom Routing API response.
type calculateRouteResponse struct {
	Routes []ttRoute `json:"routes"`
}

type ttRoute struct {
	Summary ttSummary `json:"summary"`
	Legs    []ttLeg   `json:"legs"`
}

type ttSummary struct {
	LengthInMeters      int `json:"lengthInMeters"`
	TravelTimeInSeconds int `json:"travelTimeInSeconds"`
}

type ttLeg struct {
	Points []ttPoint `json:"points"`
}

type ttPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// errorResponse is the TomTom API error envelope.
type errorResponse struct {
	DetailedError struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"detailedError"`
}
