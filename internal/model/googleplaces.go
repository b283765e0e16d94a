package model

// Google Places REST shapes for text search, autocomplete and details.

type GooglePlacesTextSearchResponse struct {
	HTMLAttributions []string            `json:"html_attributions"`
	NextPageToken    string              `json:"next_page_token"`
	Results          []GooglePlaceResult `json:"results"`
	Status           string              `json:"status"`
	ErrorMessage     string              `json:"error_message,omitempty"`
}

type GooglePlaceResult struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	FormattedAddress string          `json:"formatted_address"`
	Rating           *float64        `json:"rating,omitempty"`
	Geometry         *GoogleGeometry `json:"geometry,omitempty"`
	Photos           []GooglePhoto   `json:"photos,omitempty"`
	Types            []string        `json:"types,omitempty"`
}

type GoogleGeometry struct {
	Location GoogleLatLng `json:"location"`
}

type GoogleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type GooglePhoto struct {
	Height           int      `json:"height"`
	Width            int      `json:"width"`
	HTMLAttributions []string `json:"html_attributions"`
	PhotoReference   string   `json:"photo_reference"`
}

type GoogleAutocompleteResponse struct {
	Predictions  []GooglePrediction `json:"predictions"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

type GooglePrediction struct {
	PlaceID              string `json:"place_id"`
	Description          string `json:"description"`
	StructuredFormatting struct {
		MainText      string `json:"main_text"`
		SecondaryText string `json:"secondary_text"`
	} `json:"structured_formatting"`
	Types []string `json:"types"`
}

type GooglePlaceDetailsResponse struct {
	Result       GooglePlaceResult `json:"result"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
}
