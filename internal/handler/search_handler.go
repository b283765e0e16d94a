package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
	"github.com/fakhrymubarak/places-weather-search/internal/service"
	"github.com/fakhrymubarak/places-weather-search/internal/session"
	"github.com/go-chi/chi/v5"
)

// LocationResolver is the autocomplete side of the search box.
type LocationResolver interface {
	Suggest(ctx context.Context, input string) ([]model.Suggestion, bool)
	Select(ctx context.Context, placeID string) (string, bool)
}

type SearchHandler struct {
	Sessions *session.Registry
	Resolver LocationResolver
}

func NewSearchHandler(sessions *session.Registry, resolver LocationResolver) *SearchHandler {
	return &SearchHandler{
		Sessions: sessions,
		Resolver: resolver,
	}
}

// SuggestionsResponse is the data of the suggestions endpoint.
type SuggestionsResponse struct {
	Enabled     bool               `json:"enabled"`
	Suggestions []model.Suggestion `json:"suggestions"`
}

// SelectResponse is the data of the select endpoint.
type SelectResponse struct {
	Selected bool          `json:"selected"`
	State    model.UIState `json:"state"`
}

func (h *SearchHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *SearchHandler) writeError(w http.ResponseWriter, statusCode int, errMsg string) {
	h.writeJSONResponse(w, statusCode, model.Response{
		Error:   &errMsg,
		Message: "Error",
	})
}

// writeState answers with the UIState, using the status code that matches its error, if any.
func (h *SearchHandler) writeState(w http.ResponseWriter, state model.UIState) {
	if state.Status != model.StatusError {
		h.writeJSONResponse(w, http.StatusOK, model.Response{Data: state, Message: "Success"})
		return
	}
	errMsg := state.Error
	h.writeJSONResponse(w, statusForMessage(errMsg), model.Response{
		Data:    state,
		Error:   &errMsg,
		Message: "Error",
	})
}

func statusForMessage(msg string) int {
	switch msg {
	case service.MsgEmptyQuery:
		return http.StatusBadRequest
	case service.MsgNoResults:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (h *SearchHandler) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, ok := h.Sessions.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

// HandleCreateSession starts an idle session.
func (h *SearchHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	h.writeJSONResponse(w, http.StatusCreated, model.Response{
		Data: map[string]interface{}{
			"session_id": s.ID,
			"state":      s.State(),
		},
		Message: "Success",
	})
}

// HandleGetState returns the session's current UIState.
func (h *SearchHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{Data: s.State(), Message: "Success"})
}

// HandleDeleteSession ends the session.
func (h *SearchHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	h.Sessions.Delete(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSearch submits ?location= and answers with the resulting UIState.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	h.writeState(w, s.Submit(r.Context(), r.URL.Query().Get("location")))
}

// HandleSuggestions returns city suggestions for ?input=.
func (h *SearchHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.lookupSession(w, r); !ok {
		return
	}
	suggestions, enabled := h.Resolver.Suggest(r.Context(), r.URL.Query().Get("input"))
	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    SuggestionsResponse{Enabled: enabled, Suggestions: suggestions},
		Message: "Success",
	})
}

// HandleSelect resolves ?place_id= and searches for it when it has geographic data.
func (h *SearchHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	placeID := r.URL.Query().Get("place_id")
	if placeID == "" {
		h.writeError(w, http.StatusBadRequest, "Missing 'place_id' query parameter")
		return
	}

	state, selected := s.Select(r.Context(), h.Resolver, placeID)
	status := http.StatusOK
	if selected && state.Status == model.StatusError {
		status = statusForMessage(state.Error)
	}
	h.writeJSONResponse(w, status, model.Response{
		Data:    SelectResponse{Selected: selected, State: state},
		Message: "Success",
	})
}
