package models

// HourlyForecast is the forecast for a single hour bucket.
type HourlyForecast struct {
	Time            Timestamp `json:"time"`
	TemperatureC    float64   `json:"temperatureC"`
	Condition       string    `json:"condition"`
	WindKph         float64   `json:"windKph"`
	ChanceOfRainPct int       `json:"chanceOfRainPct"`
}

// ForecastResponse is the hourly forecast for a scheduled trip's date.
type ForecastResponse struct {
	Date  Timestamp        `json:"date"`
	Hours []HourlyForecast `json:"hours"`
}

// Place is a resolved location from the destination picker.
type Place struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Point       Point  `json:"point"`
	Category    string `json:"category,omitempty"`
}

// PlaceList is a list of candidate places for a search query.
type PlaceList struct {
	Items []Place `json:"items"`
}
