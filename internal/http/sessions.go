package http

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"scoresheet/internal/schemas"
	"scoresheet/internal/scores"
)

// session is one reviewer's working set. mu serializes load, edit and save.
type session struct {
	mu sync.Mutex

	id      string
	state   schemas.SessionState
	status  string
	meta    scores.Meta
	baseDir string
	dataset *scores.Dataset
	records []scores.Record
	saved   *scores.SaveResult
	updated time.Time
}

type sessionEntry struct {
	sess     *session
	lastUsed time.Time
}

// sessionStore keeps sessions in memory, dropping the least recently used
// one when full.
type sessionStore struct {
	mu   sync.Mutex
	max  int
	byID map[string]*sessionEntry
	now  func() time.Time
}

func newSessionStore(max int) *sessionStore {
	if max <= 0 {
		max = 64
	}
	return &sessionStore{max: max, byID: make(map[string]*sessionEntry), now: time.Now}
}

func (st *sessionStore) create() *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.byID) >= st.max {
		var oldest string
		var oldestAt time.Time
		for id, e := range st.byID {
			if oldest == "" || e.lastUsed.Before(oldestAt) {
				oldest, oldestAt = id, e.lastUsed
			}
		}
		delete(st.byID, oldest)
	}
	now := st.now()
	s := &session{id: uuid.NewString(), state: schemas.StateEmpty, updated: now}
	st.byID[s.id] = &sessionEntry{sess: s, lastUsed: now}
	return s
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.byID[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = st.now()
	return e.sess, true
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byID)
}
