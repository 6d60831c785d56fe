package services

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"viewer-service/internal/metrics"
)

// SessionStore keeps live viewer sessions in memory with TTL expiry and a
// size cap. Sessions are ephemeral by design: they are rebuilt from the
// scene and the persisted selection whenever a viewer reopens a listing.
type SessionStore struct {
	sessions sync.Map // map[string]*ViewerSession
	ttl      time.Duration
	maxCount int
	count    atomic.Int64
	metrics  *metrics.Metrics
}

// NewSessionStore creates a session store and starts its expiry loop.
func NewSessionStore(ttl time.Duration, maxCount int, m *metrics.Metrics) *SessionStore {
	store := &SessionStore{
		ttl:      ttl,
		maxCount: maxCount,
		metrics:  m,
	}

	// Start cleanup goroutine
	go store.cleanupExpired()

	return store
}

// Put stores a session, evicting the least recently touched one when the
// store is full.
func (st *SessionStore) Put(session *ViewerSession) {
	for st.maxCount > 0 && int(st.count.Load()) >= st.maxCount {
		if !st.evictOldest() {
			break
		}
	}
	st.sessions.Store(session.ID.String(), session)
	st.count.Add(1)
	st.updateGauge()
}

// Get retrieves a session and refreshes its last-access time.
func (st *SessionStore) Get(id uuid.UUID) (*ViewerSession, bool) {
	value, ok := st.sessions.Load(id.String())
	if !ok {
		return nil, false
	}
	session := value.(*ViewerSession)
	session.touch()
	return session, true
}

// Delete removes a session.
func (st *SessionStore) Delete(id uuid.UUID) {
	if _, ok := st.sessions.LoadAndDelete(id.String()); ok {
		st.count.Add(-1)
		st.updateGauge()
	}
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	return int(st.count.Load())
}

func (st *SessionStore) updateGauge() {
	if st.metrics != nil {
		st.metrics.SetActiveSessions(st.Count())
	}
}

func (st *SessionStore) evictOldest() bool {
	var oldestKey string
	var oldestTime time.Time

	st.sessions.Range(func(key, value interface{}) bool {
		session := value.(*ViewerSession)
		accessed := session.lastAccessed()
		if oldestKey == "" || accessed.Before(oldestTime) {
			oldestKey = key.(string)
			oldestTime = accessed
		}
		return true
	})

	if oldestKey == "" {
		return false
	}
	if _, ok := st.sessions.LoadAndDelete(oldestKey); ok {
		st.count.Add(-1)
		st.updateGauge()
		log.Printf("Session store: evicted session %s", oldestKey)
	}
	return true
}

func (st *SessionStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		var expiredKeys []string

		st.sessions.Range(func(key, value interface{}) bool {
			session := value.(*ViewerSession)
			if now.Sub(session.lastAccessed()) > st.ttl {
				expiredKeys = append(expiredKeys, key.(string))
			}
			return true
		})

		for _, key := range expiredKeys {
			if _, ok := st.sessions.LoadAndDelete(key); ok {
				st.count.Add(-1)
			}
		}

		if len(expiredKeys) > 0 {
			st.updateGauge()
			log.Printf("Session store: cleaned up %d expired sessions", len(expiredKeys))
		}
	}
}
