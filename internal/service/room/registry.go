package room

import (
	"sync"
	"time"
)

// registry maps room ids to live sessions. Its lock guards only the map;
// room state is guarded per session, so rooms never serialize on each
// other.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*session)}
}

// getOrCreate returns the live session for roomId, creating it when
// absent. Under concurrent first joins exactly one session wins and the
// rest observe the winner.
func (r *registry) getOrCreate(roomId, sourceType string, now time.Time) *session {
	r.mu.RLock()
	ses, ok := r.sessions[roomId]
	r.mu.RUnlock()
	if ok {
		return ses
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ses, ok := r.sessions[roomId]; ok {
		return ses
	}

	ses = newSession(roomId, sourceType, now)
	r.sessions[roomId] = ses

	return ses
}

func (r *registry) get(roomId string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ses, ok := r.sessions[roomId]

	return ses, ok
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// releaseIfEmpty destroys the session when its participant set is empty.
// The session is marked closed under both locks so a concurrent join
// cannot resurrect a destroyed session.
func (r *registry) releaseIfEmpty(roomId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ses, ok := r.sessions[roomId]
	if !ok {
		return false
	}

	ses.mu.Lock()
	defer ses.mu.Unlock()

	if len(ses.participants) > 0 {
		return false
	}

	ses.closed = true
	for _, timer := range ses.typingTimers {
		timer.Stop()
	}
	clear(ses.typingTimers)
	delete(r.sessions, roomId)

	return true
}
