package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/metrics"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
	"github.com/fakhrymubarak/places-weather-search/internal/repository"
	"golang.org/x/sync/errgroup"
)

// WeatherFailurePolicy decides what a failed per-place weather fetch does to the search.
type WeatherFailurePolicy string

const (
	// PolicyDegrade keeps the place in the results without weather.
	PolicyDegrade WeatherFailurePolicy = "degrade"
	// PolicyAbort fails the whole search.
	PolicyAbort WeatherFailurePolicy = "abort"
)

// ParseWeatherFailurePolicy accepts "degrade" or "abort"; empty means degrade.
func ParseWeatherFailurePolicy(s string) (WeatherFailurePolicy, error) {
	switch p := WeatherFailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyDegrade:
		return PolicyDegrade, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown weather failure policy %q", s)
	}
}

type SearchServiceInterface interface {
	Search(ctx context.Context, location string) (*model.ResultSet, error)
}

// SearchService finds popular places for a location and attaches current weather to each.
type SearchService struct {
	PlacesRepo    repository.PlacesRepository
	WeatherRepo   repository.WeatherRepository
	Policy        WeatherFailurePolicy
	QueryTemplate string
}

// NewSearchService wires the service from config. Nil repositories fall back to the HTTP adapters.
func NewSearchService(places repository.PlacesRepository, weather repository.WeatherRepository) *SearchService {
	if places == nil {
		places = repository.NewPlacesRepository()
	}
	if weather == nil {
		weather = repository.NewWeatherRepository()
	}
	policy, err := ParseWeatherFailurePolicy(config.GetWeatherFailurePolicy())
	if err != nil {
		config.GetLogger().Warnw("Falling back to degrade weather policy", "error", err)
		policy = PolicyDegrade
	}
	return &SearchService{
		PlacesRepo:    places,
		WeatherRepo:   weather,
		Policy:        policy,
		QueryTemplate: config.GetSearchQueryTemplate(),
	}
}

// ValidateQuery trims the location and rejects blank input.
func ValidateQuery(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", ErrEmptyQuery
	}
	return location, nil
}

// Search returns the ranked places for location, each with weather when it has
// coordinates and the fetch succeeded. Errors wrap ErrEmptyQuery,
// ErrNoResultsFound or ErrSearchFailed.
func (s *SearchService) Search(ctx context.Context, location string) (*model.ResultSet, error) {
	location, err := ValidateQuery(location)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	template := s.QueryTemplate
	if template == "" {
		template = "popular places in %s"
	}
	found, err := s.PlacesRepo.TextSearch(ctx, fmt.Sprintf(template, location), repository.PlaceFields)
	if err != nil {
		return nil, fmt.Errorf("%w: places search: %w", ErrSearchFailed, err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: places search returned nothing", ErrSearchFailed)
	}
	if found.Status != model.PlacesStatusOK {
		return nil, fmt.Errorf("%w: places status %s", ErrNoResultsFound, found.Status)
	}

	items, err := s.attachWeather(ctx, found.Places)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	return &model.ResultSet{Location: location, Items: items}, nil
}

// attachWeather fetches weather for every place with geometry concurrently.
// Each result lands in its place's slot so ranking order is kept.
func (s *SearchService) attachWeather(ctx context.Context, places []model.Place) ([]model.PlaceWeather, error) {
	items := make([]model.PlaceWeather, len(places))
	g, gctx := errgroup.WithContext(ctx)

	for i, place := range places {
		i, place := i, place
		items[i].Place = place
		if !place.HasGeometry() {
			continue
		}
		g.Go(func() error {
			weather, err := s.WeatherRepo.GetWeather(gctx, *place.Location)
			if err != nil {
				metrics.WeatherFetchesTotal.WithLabelValues(metrics.OutcomeWeatherError).Inc()
				if s.Policy == PolicyAbort {
					return fmt.Errorf("weather for place %s: %w", place.ID, err)
				}
				config.GetLogger().Warnw("Weather fetch failed, showing place without weather",
					"place_id", place.ID, "error", err)
				return nil
			}
			metrics.WeatherFetchesTotal.WithLabelValues(metrics.OutcomeWeatherOK).Inc()
			items[i].Weather = weather
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
