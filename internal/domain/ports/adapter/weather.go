package adapter

import "context"

// Weather is the current-conditions summary used in advisory prompts and
// returned by the weather proxy route.
type Weather struct {
	TempC     float64 `json:"tempC"`
	Humidity  int     `json:"humidity"`
	Condition string  `json:"condition"`
}

type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (*Weather, error)
}
