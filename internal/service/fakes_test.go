package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fakhrymubarak/places-weather-search/internal/model"
)

var errWeatherDown = errors.New("weather down")

type mockPlacesRepository struct {
	mu      sync.Mutex
	calls   int
	queries []string
	fields  []string
	result  *model.PlaceSearch
	err     error
}

func (m *mockPlacesRepository) TextSearch(ctx context.Context, query string, fields []string) (*model.PlaceSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.queries = append(m.queries, query)
	m.fields = fields
	return m.result, m.err
}

func (m *mockPlacesRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockWeatherRepository answers with a snapshot whose temperature is the latitude.
// Coordinates listed in fail return errWeatherDown; delay slows the given latitudes.
type mockWeatherRepository struct {
	mu     sync.Mutex
	calls  []model.Coordinate
	fail   map[float64]bool
	delays map[float64]time.Duration
}

func (m *mockWeatherRepository) GetWeather(ctx context.Context, at model.Coordinate) (*model.WeatherSnapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, at)
	delay := m.delays[at.Lat]
	fail := m.fail[at.Lat]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, errWeatherDown
	}
	return &model.WeatherSnapshot{
		Temperature: at.Lat,
		Description: "clear sky",
		Icon:        "01d",
		Humidity:    50,
		Pressure:    1013,
		WindSpeed:   at.Lon,
	}, nil
}

func (m *mockWeatherRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func placeAt(id string, lat, lon float64) model.Place {
	return model.Place{ID: id, Name: id, FormattedAddress: id + " street", Location: &model.Coordinate{Lat: lat, Lon: lon}}
}

func placeWithoutGeometry(id string) model.Place {
	return model.Place{ID: id, Name: id, FormattedAddress: id + " street"}
}

func okSearch(places ...model.Place) *model.PlaceSearch {
	return &model.PlaceSearch{Status: model.PlacesStatusOK, Places: places}
}
