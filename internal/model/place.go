package model

// PlacesStatusOK is the places service status for a successful lookup.
const PlacesStatusOK = "OK"

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is one point of interest returned by the places service. PhotoURL is
// the first photo, or the placeholder image when the place has none.
type Place struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	FormattedAddress string      `json:"formatted_address"`
	Rating           *float64    `json:"rating,omitempty"`
	PhotoReference   string      `json:"photo_reference,omitempty"`
	PhotoURL         string      `json:"photo_url"`
	Location         *Coordinate `json:"location,omitempty"`
}

// HasGeometry reports whether the place carries coordinates.
func (p Place) HasGeometry() bool {
	return p.Location != nil
}

// PlaceSearch is the awaited outcome of a places text search.
type PlaceSearch struct {
	Status string
	Places []Place
}

// Suggestion is an autocomplete candidate for a location.
type Suggestion struct {
	PlaceID     string      `json:"place_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Location    *Coordinate `json:"location,omitempty"`
}
