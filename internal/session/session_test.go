package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fakhrymubarak/places-weather-search/internal/model"
	"github.com/fakhrymubarak/places-weather-search/internal/service"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSearchService answers per location. A location with a gate blocks until the gate is closed.
type mockSearchService struct {
	mu      sync.Mutex
	calls   []string
	results map[string]*model.ResultSet
	errs    map[string]error
	gates   map[string]chan struct{}
	started chan string
}

func (m *mockSearchService) Search(ctx context.Context, location string) (*model.ResultSet, error) {
	m.mu.Lock()
	m.calls = append(m.calls, location)
	gate := m.gates[location]
	m.mu.Unlock()

	if m.started != nil {
		m.started <- location
	}
	if gate != nil {
		<-gate
	}
	if err := m.errs[location]; err != nil {
		return nil, err
	}
	return m.results[location], nil
}

func (m *mockSearchService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type mockResolver struct {
	name string
	ok   bool
}

func (m mockResolver) Select(ctx context.Context, placeID string) (string, bool) {
	return m.name, m.ok
}

type failingSequencer struct{}

func (failingSequencer) Next(context.Context, string, uint64) (uint64, error) {
	return 0, errors.New("redis down")
}

func (failingSequencer) Latest(context.Context, string) (uint64, error) {
	return 0, errors.New("redis down")
}

// flakySequencer fails Next while failing is set.
type flakySequencer struct {
	*MemorySequencer
	failing atomic.Bool
}

func (f *flakySequencer) Next(ctx context.Context, id string, after uint64) (uint64, error) {
	if f.failing.Load() {
		return 0, errors.New("redis down")
	}
	return f.MemorySequencer.Next(ctx, id, after)
}

func resultsFor(location string, ids ...string) *model.ResultSet {
	rs := &model.ResultSet{Location: location}
	for _, id := range ids {
		rs.Items = append(rs.Items, model.PlaceWeather{Place: model.Place{ID: id}})
	}
	return rs
}

func TestSession_StartsIdle(t *testing.T) {
	s := New("s1", &mockSearchService{}, NewMemorySequencer())
	assert.Equal(t, model.StatusIdle, s.State().Status)
}

func TestSession_Submit_Ready(t *testing.T) {
	search := &mockSearchService{results: map[string]*model.ResultSet{"Paris": resultsFor("Paris", "eiffel", "louvre")}}
	s := New("s1", search, NewMemorySequencer())

	state := s.Submit(context.Background(), "Paris")

	assert.Equal(t, model.StatusReady, state.Status)
	assert.Equal(t, 2, state.Results.Len())
	assert.Empty(t, state.Error)
	assert.Equal(t, uint64(1), state.Sequence)
}

func TestSession_Submit_EmptyQuery(t *testing.T) {
	search := &mockSearchService{}
	s := New("s1", search, NewMemorySequencer())

	state := s.Submit(context.Background(), "   ")

	assert.Equal(t, model.StatusError, state.Status)
	assert.Equal(t, "Please enter a location", state.Error)
	assert.Nil(t, state.Results)
	assert.Empty(t, search.Calls())
}

func TestSession_Submit_NoResults(t *testing.T) {
	search := &mockSearchService{errs: map[string]error{"Nowhere": service.ErrNoResultsFound}}
	s := New("s1", search, NewMemorySequencer())

	state := s.Submit(context.Background(), "Nowhere")

	assert.Equal(t, model.StatusError, state.Status)
	assert.Equal(t, "No results found. Please try another location.", state.Error)
	assert.Equal(t, 0, state.Results.Len())
}

func TestSession_Submit_FailureDiscardsPreviousResults(t *testing.T) {
	search := &mockSearchService{
		results: map[string]*model.ResultSet{"Paris": resultsFor("Paris", "eiffel")},
		errs:    map[string]error{"Broken": service.ErrSearchFailed},
	}
	s := New("s1", search, NewMemorySequencer())

	require.Equal(t, model.StatusReady, s.Submit(context.Background(), "Paris").Status)
	state := s.Submit(context.Background(), "Broken")

	assert.Equal(t, model.StatusError, state.Status)
	assert.Equal(t, service.MsgSearchFailed, state.Error)
	assert.Nil(t, state.Results)
}

func TestSession_LoadingUntilTerminalEvent(t *testing.T) {
	gate := make(chan struct{})
	search := &mockSearchService{
		results: map[string]*model.ResultSet{"Paris": resultsFor("Paris", "eiffel")},
		gates:   map[string]chan struct{}{"Paris": gate},
		started: make(chan string, 1),
	}
	s := New("s1", search, NewMemorySequencer())

	done := make(chan model.UIState)
	go func() { done <- s.Submit(context.Background(), "Paris") }()

	<-search.started
	state := s.State()
	assert.True(t, state.IsLoading())
	assert.Nil(t, state.Results)
	assert.Empty(t, state.Error)

	close(gate)
	final := <-done
	assert.False(t, final.IsLoading())
	assert.Equal(t, model.StatusReady, final.Status)
}

func TestSession_SupersededSearchIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	search := &mockSearchService{
		results: map[string]*model.ResultSet{
			"Paris":  resultsFor("Paris", "eiffel"),
			"Berlin": resultsFor("Berlin", "reichstag", "museum-island"),
		},
		gates:   map[string]chan struct{}{"Paris": slow},
		started: make(chan string, 2),
	}
	s := New("s1", search, NewMemorySequencer())

	first := make(chan model.UIState)
	go func() { first <- s.Submit(context.Background(), "Paris") }()
	require.Equal(t, "Paris", <-search.started)

	second := s.Submit(context.Background(), "Berlin")
	<-search.started
	require.Equal(t, model.StatusReady, second.Status)
	require.Equal(t, "Berlin", second.Results.Location)

	close(slow)
	select {
	case stale := <-first:
		assert.Equal(t, "Berlin", stale.Results.Location, "stale search returns the newer state")
	case <-time.After(2 * time.Second):
		t.Fatal("first search never returned")
	}

	state := s.State()
	assert.Equal(t, model.StatusReady, state.Status)
	assert.Equal(t, "Berlin", state.Results.Location)
	assert.Equal(t, uint64(2), state.Sequence)
}

func TestSession_EmptyQuerySupersedesInFlightSearch(t *testing.T) {
	slow := make(chan struct{})
	search := &mockSearchService{
		results: map[string]*model.ResultSet{"Paris": resultsFor("Paris", "eiffel")},
		gates:   map[string]chan struct{}{"Paris": slow},
		started: make(chan string, 1),
	}
	s := New("s1", search, NewMemorySequencer())

	first := make(chan model.UIState)
	go func() { first <- s.Submit(context.Background(), "Paris") }()
	<-search.started

	state := s.Submit(context.Background(), "")
	require.Equal(t, service.MsgEmptyQuery, state.Error)

	close(slow)
	<-first
	assert.Equal(t, model.StatusError, s.State().Status)
	assert.Equal(t, service.MsgEmptyQuery, s.State().Error)
}

func TestSession_SequencerFailure(t *testing.T) {
	search := &mockSearchService{}
	s := New("s1", search, failingSequencer{})

	state := s.Submit(context.Background(), "Paris")

	assert.Equal(t, model.StatusError, state.Status)
	assert.Equal(t, service.MsgSearchFailed, state.Error)
	assert.Empty(t, search.Calls())
}

func TestSession_SequencerFailureIsNotOverwrittenByInFlightSearch(t *testing.T) {
	slow := make(chan struct{})
	search := &mockSearchService{
		results: map[string]*model.ResultSet{"Paris": resultsFor("Paris", "eiffel")},
		gates:   map[string]chan struct{}{"Paris": slow},
		started: make(chan string, 1),
	}
	seq := &flakySequencer{MemorySequencer: NewMemorySequencer()}
	s := New("s1", search, seq)

	first := make(chan model.UIState)
	go func() { first <- s.Submit(context.Background(), "Paris") }()
	<-search.started

	seq.failing.Store(true)
	state := s.Submit(context.Background(), "Berlin")
	require.Equal(t, model.StatusError, state.Status)
	require.Equal(t, service.MsgSearchFailed, state.Error)

	close(slow)
	<-first
	assert.Equal(t, model.StatusError, s.State().Status)
	assert.Equal(t, service.MsgSearchFailed, s.State().Error)
	assert.Nil(t, s.State().Results)

	seq.failing.Store(false)
	search.results["Berlin"] = resultsFor("Berlin", "reichstag")
	state = s.Submit(context.Background(), "Berlin")
	assert.Equal(t, model.StatusReady, state.Status)
	assert.Equal(t, uint64(2), state.Sequence)
}

func TestSession_RedisCounterExpiryDoesNotFreezeResults(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	defer client.Close()

	search := &mockSearchService{results: map[string]*model.ResultSet{
		"Paris":  resultsFor("Paris", "eiffel"),
		"Berlin": resultsFor("Berlin", "reichstag"),
	}}
	s := New("s1", search, NewRedisSequencer(client, time.Minute))

	for i := 0; i < 3; i++ {
		require.Equal(t, model.StatusReady, s.Submit(context.Background(), "Paris").Status)
	}
	require.Equal(t, uint64(3), s.State().Sequence)

	mr.FastForward(2 * time.Minute)
	require.False(t, mr.Exists("search:seq:s1"))

	state := s.Submit(context.Background(), "Berlin")
	assert.Equal(t, model.StatusReady, state.Status)
	assert.Equal(t, "Berlin", state.Results.Location)
	assert.Equal(t, uint64(4), state.Sequence)
	assert.Equal(t, []string{"Paris", "Paris", "Paris", "Berlin"}, search.Calls())
}

func TestSession_Select(t *testing.T) {
	search := &mockSearchService{results: map[string]*model.ResultSet{"Paris": resultsFor("Paris", "eiffel")}}
	s := New("s1", search, NewMemorySequencer())

	state, ok := s.Select(context.Background(), mockResolver{}, "no-geometry")
	assert.False(t, ok)
	assert.Equal(t, model.StatusIdle, state.Status)
	assert.Empty(t, search.Calls())

	state, ok = s.Select(context.Background(), mockResolver{name: "Paris", ok: true}, "p1")
	assert.True(t, ok)
	assert.Equal(t, model.StatusReady, state.Status)
	assert.Equal(t, []string{"Paris"}, search.Calls())
}
