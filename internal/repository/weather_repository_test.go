package repository

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/fakhrymubarak/places-weather-search/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owmParis = `{
	"name": "Paris",
	"main": {"temp": 18.4, "pressure": 1012, "humidity": 64},
	"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
	"wind": {"speed": 4.1, "deg": 250}
}`

func newTestWeatherRepository(client *http.Client) *weatherRepository {
	return &weatherRepository{
		httpClient: client,
		apiURL:     "https://api.openweathermap.org/data/2.5/weather",
		apiKey:     "testkey",
		units:      "metric",
	}
}

func TestNewWeatherRepository(t *testing.T) {
	repo := NewWeatherRepository()
	if repo == nil {
		t.Error("Expected repository to be created")
	}
}

func TestGetWeather_Success(t *testing.T) {
	var gotQuery map[string]string
	client := newMockHTTPClient(func(req *http.Request) *http.Response {
		q := req.URL.Query()
		gotQuery = map[string]string{
			"lat": q.Get("lat"), "lon": q.Get("lon"), "appid": q.Get("appid"), "units": q.Get("units"),
		}
		return jsonResponse(http.StatusOK, owmParis)
	})
	repo := newTestWeatherRepository(client)

	weather, err := repo.GetWeather(context.Background(), model.Coordinate{Lat: 48.8584, Lon: 2.2945})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"lat": "48.8584", "lon": "2.2945", "appid": "testkey", "units": "metric"}, gotQuery)
	assert.Equal(t, &model.WeatherSnapshot{
		Temperature: 18.4,
		Description: "broken clouds",
		Icon:        "04d",
		Humidity:    64,
		Pressure:    1012,
		WindSpeed:   4.1,
	}, weather)
}

func TestGetWeather_NoWeatherEntries(t *testing.T) {
	client := newMockHTTPClient(func(req *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"main": {"temp": 3}, "weather": []}`)
	})
	weather, err := newTestWeatherRepository(client).GetWeather(context.Background(), model.Coordinate{})
	require.NoError(t, err)
	assert.Equal(t, 3.0, weather.Temperature)
	assert.Empty(t, weather.Description)
	assert.Empty(t, weather.Icon)
}

func TestGetWeather_ErrorCases(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{"cod": "404", "message": "city not found"}`, ErrLocationNotFound},
		{"server error", http.StatusInternalServerError, `{"cod": "500"}`, ErrExternalAPI},
		{"unauthorized", http.StatusUnauthorized, `{"cod": 401}`, ErrExternalAPI},
		{"decode error", http.StatusOK, "not-json", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockHTTPClient(func(req *http.Request) *http.Response {
				return jsonResponse(tt.status, tt.body)
			})
			_, err := newTestWeatherRepository(client).GetWeather(context.Background(), model.Coordinate{Lat: 1, Lon: 2})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestGetWeather_MissingAPIKey(t *testing.T) {
	var calls int32
	client := newMockHTTPClient(func(req *http.Request) *http.Response {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusOK, "{}")
	})
	repo := newTestWeatherRepository(client)
	repo.apiKey = ""

	_, err := repo.GetWeather(context.Background(), model.Coordinate{})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestGetWeather_TransportError(t *testing.T) {
	client := &http.Client{Transport: failingTransport{}}
	_, err := newTestWeatherRepository(client).GetWeather(context.Background(), model.Coordinate{})
	assert.ErrorIs(t, err, ErrExternalAPI)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}
