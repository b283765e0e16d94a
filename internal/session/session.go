package session

import (
	"context"
	"sync"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/metrics"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
	"github.com/fakhrymubarak/places-weather-search/internal/service"
)

// Resolver turns a selected suggestion into a location name.
type Resolver interface {
	Select(ctx context.Context, placeID string) (string, bool)
}

// Session owns one client's UIState. Every submission takes a sequence
// number and only the latest one may change the state.
type Session struct {
	ID string

	search    service.SearchServiceInterface
	sequencer Sequencer

	mu    sync.Mutex
	state model.UIState
	// sealed is the highest sequence whose completion may no longer change state.
	sealed uint64
}

func New(id string, search service.SearchServiceInterface, sequencer Sequencer) *Session {
	return &Session{
		ID:        id,
		search:    search,
		sequencer: sequencer,
		state:     model.Idle(),
	}
}

// State returns the current UIState.
func (s *Session) State() model.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit runs a search for location and returns the state it left behind.
// A blank location fails with the empty-query message without calling out.
// The search is not tied to ctx cancellation; a client going away does not
// leave the session stuck in loading.
func (s *Session) Submit(ctx context.Context, location string) model.UIState {
	ctx = context.WithoutCancel(ctx)
	log := config.GetLogger().With("session_id", s.ID)

	seq, err := s.sequencer.Next(ctx, s.ID, s.current())
	if err != nil {
		log.Errorw("Could not issue search sequence", "error", err)
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return s.failUnsequenced(service.MsgSearchFailed)
	}

	if _, err := service.ValidateQuery(location); err != nil {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeEmptyQuery).Inc()
		s.apply(seq, model.Failed(seq, service.UserMessage(err)))
		return s.State()
	}

	s.apply(seq, model.Loading(seq))
	log.Infow("Search started", "sequence", seq, "location", location)

	results, err := s.search.Search(ctx, location)

	if latest, lerr := s.sequencer.Latest(ctx, s.ID); lerr == nil && latest != seq {
		log.Infow("Discarding superseded search", "sequence", seq, "latest", latest)
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeSuperseded).Inc()
		return s.State()
	}

	var next model.UIState
	if err != nil {
		log.Warnw("Search failed", "sequence", seq, "location", location, "error", err)
		metrics.SearchesTotal.WithLabelValues(outcomeFor(err)).Inc()
		next = model.Failed(seq, service.UserMessage(err))
	} else {
		log.Infow("Search completed", "sequence", seq, "location", location, "places", results.Len())
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeReady).Inc()
		next = model.Ready(seq, results)
	}
	if !s.apply(seq, next) {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeSuperseded).Inc()
	}
	return s.State()
}

// Select resolves a suggestion and searches for it. ok is false when the
// suggestion has no geographic data; the state is then left untouched.
func (s *Session) Select(ctx context.Context, resolver Resolver, placeID string) (state model.UIState, ok bool) {
	name, ok := resolver.Select(ctx, placeID)
	if !ok {
		return s.State(), false
	}
	return s.Submit(ctx, name), true
}

func (s *Session) current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Sequence
}

// failUnsequenced records a submission that got no sequence number. It keeps
// the current number and seals it, so a search still running under that
// number cannot replace the error when it completes.
func (s *Session) failUnsequenced(msg string) model.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.Failed(s.state.Sequence, msg)
	s.sealed = s.state.Sequence
	return s.state
}

// apply replaces the state unless a newer search already owns it.
func (s *Session) apply(seq uint64, next model.UIState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.state.Sequence || (s.sealed > 0 && seq <= s.sealed) {
		return false
	}
	s.state = next
	return true
}

func outcomeFor(err error) string {
	switch service.UserMessage(err) {
	case service.MsgEmptyQuery:
		return metrics.OutcomeEmptyQuery
	case service.MsgNoResults:
		return metrics.OutcomeNoResults
	default:
		return metrics.OutcomeFailed
	}
}
