package chat

import (
	"sync"
	"time"
)

const (
	IntentNormal  = "normal"
	IntentWaiting = "waiting_confirmation"

	ActionNone      = ""
	ActionOrder     = "order"
	ActionRecommend = "recommend"
)

// Session is the per-student conversational state carried across turns.
// Callers hold the session lock (via Acquire/Release) for a whole turn, so
// two near-simultaneous messages from the same student cannot race.
type Session struct {
	mu sync.Mutex

	LastItems      []string
	LastAction     string
	Intent         string
	LastBotMessage string
	Greeted        bool

	lastSeen time.Time
}

// RememberedItem returns the most recently remembered item name.
func (s *Session) RememberedItem() (string, bool) {
	if len(s.LastItems) == 0 {
		return "", false
	}
	return s.LastItems[len(s.LastItems)-1], true
}

func (s *Session) Release() {
	s.mu.Unlock()
}

// SessionStore maps student ids to sessions. Entries expire after ttl of
// inactivity and the map never holds more than capacity entries; when full,
// the least recently used session is evicted.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration, capacity int) *SessionStore {
	if capacity < 1 {
		capacity = 1
	}
	return &SessionStore{
		ttl:      ttl,
		capacity: capacity,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the student's session with its lock held, creating it if
// absent. The second return reports whether this is a brand new session.
func (s *SessionStore) Acquire(studentID string) (*Session, bool) {
	s.mu.Lock()
	now := time.Now()
	s.pruneLocked(now)

	sess, ok := s.sessions[studentID]
	if !ok {
		if len(s.sessions) >= s.capacity {
			s.evictOldestLocked()
		}
		sess = &Session{Intent: IntentNormal}
		s.sessions[studentID] = sess
	}
	sess.lastSeen = now
	s.mu.Unlock()

	sess.mu.Lock()
	return sess, !ok
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(time.Now())
	return len(s.sessions)
}

func (s *SessionStore) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *SessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID = id
			oldest = sess.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}
