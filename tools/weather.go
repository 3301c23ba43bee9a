package tools

import "context"

// Weather is the current conditions at a location.
type Weather struct {
	Location       string
	Description    string
	TemperatureC   float64
	HumidityPct    float64
	SolarRadiation float64 // W/m²
}

// WeatherProvider reports current conditions.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (Weather, error)
}

// StaticWeather reports fixed clear-sky conditions for any location.
type StaticWeather struct{}

var _ WeatherProvider = StaticWeather{}

func (StaticWeather) Current(ctx context.Context, location string) (Weather, error) {
	if err := ctx.Err(); err != nil {
		return Weather{}, err
	}
	return Weather{
		Location:       location,
		Description:    "맑음",
		TemperatureC:   25,
		HumidityPct:    60,
		SolarRadiation: 800,
	}, nil
}
