package domain

import "context"

// coatThresholdCelsius is the feels-like temperature below which the advice
// is to wear a coat.
const coatThresholdCelsius = 15.0

// Conditions holds the current weather at a coordinate, as reported by the
// weather provider in metric units.
type Conditions struct {
	Location    string  // place name, e.g. "London"
	ConditionID int     // provider condition code, e.g. 801
	Main        string  // condition group, e.g. "Clouds"
	Description string  // human-readable condition, e.g. "few clouds"
	Icon        string  // provider icon code, e.g. "02d"
	Temp        float64 // °C
	FeelsLike   float64 // °C
	TempMin     float64 // °C
	TempMax     float64 // °C
	Pressure    int     // hPa
	Humidity    int     // percent
	WindSpeed   float64 // m/s
	WindDeg     int     // degrees
	WindGust    float64 // m/s
}

// WeatherProvider supplies current conditions for a coordinate.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (Conditions, error)
}

// ShouldWearCoat applies the coat rule to current conditions.
func ShouldWearCoat(c Conditions) bool {
	return c.FeelsLike < coatThresholdCelsius
}
