package session

import (
	"time"

	"github.com/fakhrymubarak/places-weather-search/internal/service"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Registry keeps live sessions in memory and forgets them after ttl of inactivity.
type Registry struct {
	sessions  *cache.Cache
	search    service.SearchServiceInterface
	sequencer Sequencer
}

func NewRegistry(search service.SearchServiceInterface, sequencer Sequencer, ttl, cleanupInterval time.Duration) *Registry {
	sessions := cache.New(ttl, cleanupInterval)
	if mem, ok := sequencer.(*MemorySequencer); ok {
		sessions.OnEvicted(func(id string, _ interface{}) {
			mem.Forget(id)
		})
	}
	return &Registry{
		sessions:  sessions,
		search:    search,
		sequencer: sequencer,
	}
}

// Create starts a new idle session.
func (r *Registry) Create() *Session {
	s := New(uuid.NewString(), r.search, r.sequencer)
	r.sessions.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

// Get returns the session and extends its lifetime.
func (r *Registry) Get(id string) (*Session, bool) {
	v, found := r.sessions.Get(id)
	if !found {
		return nil, false
	}
	s := v.(*Session)
	r.sessions.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// Delete ends a session.
func (r *Registry) Delete(id string) {
	r.sessions.Delete(id)
}

// Len returns the number of live sessions, including expired ones not yet swept.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
