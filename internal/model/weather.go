package model

import (
	"encoding/json"
	"fmt"
)

const weatherIconURL = "http://openweathermap.org/img/wn/%s@2x.png"

// WeatherSnapshot is current weather at a coordinate, metric units.
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
}

// IconURL returns the OpenWeatherMap image for the snapshot's icon code.
func (w WeatherSnapshot) IconURL() string {
	if w.Icon == "" {
		return ""
	}
	return fmt.Sprintf(weatherIconURL, w.Icon)
}

// MarshalJSON adds icon_url so clients can render the icon directly.
func (w WeatherSnapshot) MarshalJSON() ([]byte, error) {
	type snapshot WeatherSnapshot
	return json.Marshal(struct {
		snapshot
		IconURL string `json:"icon_url,omitempty"`
	}{snapshot: snapshot(w), IconURL: w.IconURL()})
}
