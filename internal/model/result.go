package model

// PlaceWeather pairs a place with its weather, if any was fetched.
type PlaceWeather struct {
	Place   Place            `json:"place"`
	Weather *WeatherSnapshot `json:"weather,omitempty"`
}

// ResultSet holds one search's places in the places service's ranking order.
type ResultSet struct {
	Location string         `json:"location"`
	Items    []PlaceWeather `json:"items"`
}

// Len returns the number of places in the set.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}
