package memory

import (
	"time"

	"troubleshoot-agent-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// LiveSessionRepository keeps the in-flight troubleshooting state of each
// session. Entries expire after an hour of inactivity; durable chat history
// lives in the database, only the working state is cached here.
type LiveSessionRepository struct {
	cache *cache.Cache
}

func NewLiveSessionRepository() *LiveSessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &LiveSessionRepository{
		cache: c,
	}
}

func (r *LiveSessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// GetOrCreate returns the live state for a session, creating a fresh one if
// none exists or the previous entry expired.
func (r *LiveSessionRepository) GetOrCreate(sessionID string) *store.Session {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session)
	}
	session := store.NewSession(sessionID)
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return session
}

func (r *LiveSessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *LiveSessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
