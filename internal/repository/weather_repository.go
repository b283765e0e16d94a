package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
)

// WeatherRepository fetches current weather for a coordinate.
type WeatherRepository interface {
	GetWeather(ctx context.Context, at model.Coordinate) (*model.WeatherSnapshot, error)
}

// weatherRepository implements WeatherRepository against OpenWeatherMap.
type weatherRepository struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	units      string
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(httpClient ...*http.Client) WeatherRepository {
	return &weatherRepository{
		httpClient: newHTTPClient(httpClient...),
		apiURL:     config.GetOpenWeatherApiUrl(),
		apiKey:     config.GetOpenWeatherMapAPIKey(),
		units:      config.GetOpenWeatherUnits(),
	}
}

// GetWeather retrieves the current weather at a coordinate from OpenWeatherMap.
func (r *weatherRepository) GetWeather(ctx context.Context, at model.Coordinate) (*model.WeatherSnapshot, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	params.Set("appid", r.apiKey)
	params.Set("units", r.units)

	var data model.OpenWeatherMapResponse
	if err := getJSON(ctx, r.httpClient, r.apiURL, params, &data); err != nil {
		return nil, err
	}

	weather := &model.WeatherSnapshot{
		Temperature: data.Main.Temp,
		Humidity:    data.Main.Humidity,
		Pressure:    data.Main.Pressure,
		WindSpeed:   data.Wind.Speed,
	}

	if len(data.Weather) > 0 {
		weather.Description = data.Weather[0].Description
		weather.Icon = data.Weather[0].Icon
	}

	return weather, nil
}
