package service

import (
	"context"
	"strings"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
	"github.com/fakhrymubarak/places-weather-search/internal/repository"
)

// LocationResolver turns partial input into city suggestions and a selected
// suggestion into a location name to search for. It keeps no state.
type LocationResolver struct {
	AutocompleteRepo repository.AutocompleteRepository
}

func NewLocationResolver(repo ...repository.AutocompleteRepository) *LocationResolver {
	var autocomplete repository.AutocompleteRepository
	if len(repo) > 0 && repo[0] != nil {
		autocomplete = repo[0]
	} else {
		autocomplete = repository.NewAutocompleteRepository()
	}
	return &LocationResolver{AutocompleteRepo: autocomplete}
}

// Suggest returns city suggestions for input. enabled is false when the
// autocomplete service is unavailable; callers then fall back to manual search.
func (r *LocationResolver) Suggest(ctx context.Context, input string) (suggestions []model.Suggestion, enabled bool) {
	if r.AutocompleteRepo == nil {
		return nil, false
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return []model.Suggestion{}, true
	}

	suggestions, err := r.AutocompleteRepo.Suggest(ctx, input)
	if err != nil {
		config.GetLogger().Warnw("Autocomplete unavailable, suggestions disabled", "error", err)
		return nil, false
	}
	return suggestions, true
}

// Select resolves placeID and returns its name when it carries geographic data.
func (r *LocationResolver) Select(ctx context.Context, placeID string) (string, bool) {
	if r.AutocompleteRepo == nil || strings.TrimSpace(placeID) == "" {
		return "", false
	}

	selected, err := r.AutocompleteRepo.Details(ctx, placeID)
	if err != nil {
		config.GetLogger().Warnw("Could not resolve selected suggestion", "place_id", placeID, "error", err)
		return "", false
	}
	if selected == nil || selected.Location == nil || selected.Name == "" {
		return "", false
	}
	return selected.Name, true
}
