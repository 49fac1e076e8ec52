package game

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrPlayerBusy = errors.New("player already in a live session")

// Store owns the set of live sessions. Creation and eviction are the only
// mutations of the map; per-session state is serialized by the sessions
// themselves, so handlers for different sessions run independently.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byPlayer map[string]string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
	}
}

// Create registers a new session for the pair. It fails if either player is
// already a member of a live session.
func (st *Store) Create(id string, players [2]string, board []string, roundSeconds int, startedAt time.Time) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, p := range players {
		if sid, ok := st.byPlayer[p]; ok {
			return nil, fmt.Errorf("%w: %s in session %s", ErrPlayerBusy, p, sid)
		}
	}

	sess := NewSession(id, players, board, roundSeconds, startedAt)
	st.sessions[id] = sess
	st.byPlayer[players[0]] = id
	st.byPlayer[players[1]] = id
	return sess, nil
}

// Get returns the live session with the given id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// SessionFor returns the live session the player is a member of, if any.
func (st *Store) SessionFor(playerID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	id, ok := st.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	sess, ok := st.sessions[id]
	return sess, ok
}

// Evict removes an ended session and frees both players for re-pairing.
func (st *Store) Evict(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return
	}
	delete(st.sessions, id)
	for _, p := range sess.Players {
		if st.byPlayer[p] == id {
			delete(st.byPlayer, p)
		}
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
