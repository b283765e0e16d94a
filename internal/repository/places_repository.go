package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
)

// PlaceFields are the attributes requested for every place in a text search.
var PlaceFields = []string{"name", "geometry", "photos", "place_id", "rating", "formatted_address"}

// PlacesRepository runs ranked text searches against a places service.
// A non-OK vendor status is reported in PlaceSearch.Status, not as an error.
type PlacesRepository interface {
	TextSearch(ctx context.Context, query string, fields []string) (*model.PlaceSearch, error)
}

type placesRepository struct {
	httpClient       *http.Client
	apiURL           string
	apiKey           string
	photoURL         string
	photoMaxWidth    int
	photoPlaceholder string
}

// NewPlacesRepository creates a Google Places text search client.
func NewPlacesRepository(httpClient ...*http.Client) PlacesRepository {
	return &placesRepository{
		httpClient:       newHTTPClient(httpClient...),
		apiURL:           config.GetPlacesTextSearchUrl(),
		apiKey:           config.GetGooglePlacesAPIKey(),
		photoURL:         config.GetPlacesPhotoUrl(),
		photoMaxWidth:    config.GetPlacesPhotoMaxWidth(),
		photoPlaceholder: config.GetPlacesPhotoPlaceholder(),
	}
}

func (r *placesRepository) TextSearch(ctx context.Context, query string, fields []string) (*model.PlaceSearch, error) {
	if r.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("query", query)
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}
	params.Set("key", r.apiKey)

	var data model.GooglePlacesTextSearchResponse
	if err := getJSON(ctx, r.httpClient, r.apiURL, params, &data); err != nil {
		return nil, err
	}

	search := &model.PlaceSearch{Status: data.Status}
	if data.Status != model.PlacesStatusOK {
		if data.ErrorMessage != "" {
			config.GetLogger().Warnw("Places text search returned non-OK status",
				"status", data.Status, "error_message", data.ErrorMessage)
		}
		return search, nil
	}

	search.Places = make([]model.Place, 0, len(data.Results))
	for _, res := range data.Results {
		search.Places = append(search.Places, r.toPlace(res))
	}
	return search, nil
}

func (r *placesRepository) toPlace(res model.GooglePlaceResult) model.Place {
	place := model.Place{
		ID:               res.PlaceID,
		Name:             res.Name,
		FormattedAddress: res.FormattedAddress,
		Rating:           res.Rating,
	}
	if res.Geometry != nil {
		place.Location = &model.Coordinate{
			Lat: res.Geometry.Location.Lat,
			Lon: res.Geometry.Location.Lng,
		}
	}
	if len(res.Photos) > 0 {
		place.PhotoReference = res.Photos[0].PhotoReference
	}
	place.PhotoURL = r.photo(place.PhotoReference)
	return place
}

// photo builds the image URL for a photo reference, falling back to the placeholder.
func (r *placesRepository) photo(reference string) string {
	if reference == "" || r.photoURL == "" {
		return r.photoPlaceholder
	}
	params := url.Values{}
	params.Set("photo_reference", reference)
	if r.photoMaxWidth > 0 {
		params.Set("maxwidth", strconv.Itoa(r.photoMaxWidth))
	}
	params.Set("key", r.apiKey)
	return r.photoURL + "?" + params.Encode()
}
