package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
)

const (
	cityTypes        = "(cities)"
	statusZeroResult = "ZERO_RESULTS"
)

// AutocompleteRepository suggests city-level locations for partial input.
type AutocompleteRepository interface {
	Suggest(ctx context.Context, input string) ([]model.Suggestion, error)
	Details(ctx context.Context, placeID string) (*model.Suggestion, error)
}

type autocompleteRepository struct {
	httpClient      *http.Client
	autocompleteURL string
	detailsURL      string
	apiKey          string
}

// NewAutocompleteRepository creates a Google Places autocomplete client.
func NewAutocompleteRepository(httpClient ...*http.Client) AutocompleteRepository {
	return &autocompleteRepository{
		httpClient:      newHTTPClient(httpClient...),
		autocompleteURL: config.GetPlacesAutocompleteUrl(),
		detailsURL:      config.GetPlacesDetailsUrl(),
		apiKey:          config.GetGooglePlacesAPIKey(),
	}
}

func (r *autocompleteRepository) Suggest(ctx context.Context, input string) ([]model.Suggestion, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("input", input)
	params.Set("types", cityTypes)
	params.Set("key", r.apiKey)

	var data model.GoogleAutocompleteResponse
	if err := getJSON(ctx, r.httpClient, r.autocompleteURL, params, &data); err != nil {
		return nil, err
	}
	switch data.Status {
	case model.PlacesStatusOK:
	case statusZeroResult:
		return []model.Suggestion{}, nil
	default:
		return nil, fmt.Errorf("%w: autocomplete status %s", ErrExternalAPI, data.Status)
	}

	suggestions := make([]model.Suggestion, 0, len(data.Predictions))
	for _, p := range data.Predictions {
		name := p.StructuredFormatting.MainText
		if name == "" {
			name = p.Description
		}
		suggestions = append(suggestions, model.Suggestion{
			PlaceID:     p.PlaceID,
			Name:        name,
			Description: p.Description,
		})
	}
	return suggestions, nil
}

// Details resolves a suggestion's name and geometry.
func (r *autocompleteRepository) Details(ctx context.Context, placeID string) (*model.Suggestion, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,geometry")
	params.Set("key", r.apiKey)

	var data model.GooglePlaceDetailsResponse
	if err := getJSON(ctx, r.httpClient, r.detailsURL, params, &data); err != nil {
		return nil, err
	}
	if data.Status != model.PlacesStatusOK {
		if data.Status == "NOT_FOUND" || data.Status == statusZeroResult {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("%w: details status %s", ErrExternalAPI, data.Status)
	}

	place := (&placesRepository{}).toPlace(data.Result)
	if place.ID == "" {
		place.ID = placeID
	}
	return &model.Suggestion{
		PlaceID:     place.ID,
		Name:        place.Name,
		Description: place.FormattedAddress,
		Location:    place.Location,
	}, nil
}
