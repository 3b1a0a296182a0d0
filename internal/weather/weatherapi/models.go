package weatherapi

// forecastResponse is the WeatherAPI forecast.json / history.json response.
type forecastResponse struct {
	Current  *waCurrent `json:"current"`
	Forecast waForecast `json:"forecast"`
}

type waCurrent struct {
	TempC     float64     `json:"temp_c"`
	Condition waCondition `json:"condition"`
	WindKph   float64     `json:"wind_kph"`
	Humidity  int         `json:"humidity"`
}

type waCondition struct {
	Text string `json:"text"`
}

type waForecast struct {
	ForecastDay []waForecastDay `json:"forecastday"`
}

type waForecastDay struct {
	Date string   `json:"date"`
	Hour []waHour `json:"hour"`
}

type waHour struct {
	TimeEpoch    int64       `json:"time_epoch"`
	TempC        float64     `json:"temp_c"`
	Condition    waCondition `json:"condition"`
	WindKph      float64     `json:"wind_kph"`
	ChanceOfRain int         `json:"chance_of_rain"`
}

// errorResponse is the WeatherAPI error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WeatherAPI error codes.
const (
	errCodeNoLocation = 1006
)
