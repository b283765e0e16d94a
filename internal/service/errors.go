package service

import "errors"

var (
	ErrEmptyQuery     = errors.New("empty query")
	ErrNoResultsFound = errors.New("no results found")
	ErrSearchFailed   = errors.New("search failed")
)

// Messages shown to the user for each failure.
const (
	MsgEmptyQuery   = "Please enter a location"
	MsgNoResults    = "No results found. Please try another location."
	MsgSearchFailed = "An error occurred while searching. Please try again."
)

// UserMessage maps a search error onto one of the three user-visible messages.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return MsgEmptyQuery
	case errors.Is(err, ErrNoResultsFound):
		return MsgNoResults
	default:
		return MsgSearchFailed
	}
}
