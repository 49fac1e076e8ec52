package game

import (
	"sync"
	"time"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateCountdown State = "countdown"
	StateActive    State = "active"
	StateEnded     State = "ended"
)

// SelectResult classifies the outcome of one selection action.
type SelectResult int

const (
	// SelectIgnored: invalid or duplicate action, nothing changed.
	SelectIgnored SelectResult = iota
	// SelectPending: first tile of a pair revealed.
	SelectPending
	// SelectMatch: second tile revealed and the symbols matched.
	SelectMatch
	// SelectNoMatch: second tile revealed and the symbols differed.
	SelectNoMatch
)

// Selection is the resolved outcome of one Select call.
type Selection struct {
	Result  SelectResult
	Indices []int          // revealed indices, set for Match and NoMatch
	Scores  map[string]int // score snapshot, set for Match
	Gen     int            // pending generation, used to target a delayed clear
}

// Session is one paired match: two players, a board, scores and a clock.
// All mutable state is guarded by mu; every mutation goes through the
// methods below so concurrent actions from the two players interleave as a
// strict sequence.
type Session struct {
	ID        string
	Players   [2]string
	Board     []string
	StartedAt time.Time

	mu       sync.Mutex
	state    State
	pending  []int
	gen      int
	scores   map[string]int
	timeLeft int
	done     chan struct{}
}

// NewSession creates a session in COUNTDOWN with both scores at zero and the
// clock preloaded with the round length.
func NewSession(id string, players [2]string, board []string, roundSeconds int, startedAt time.Time) *Session {
	return &Session{
		ID:        id,
		Players:   players,
		Board:     board,
		StartedAt: startedAt,
		state:     StateCountdown,
		scores:    map[string]int{players[0]: 0, players[1]: 0},
		timeLeft:  roundSeconds,
		done:      make(chan struct{}),
	}
}

// HasPlayer reports whether the player is a member of this session.
func (s *Session) HasPlayer(playerID string) bool {
	return s.Players[0] == playerID || s.Players[1] == playerID
}

// Opponent returns the other member of the session.
func (s *Session) Opponent(playerID string) (string, bool) {
	switch playerID {
	case s.Players[0]:
		return s.Players[1], true
	case s.Players[1]:
		return s.Players[0], true
	}
	return "", false
}

// Activate moves the session from COUNTDOWN to ACTIVE. It reports false if
// the session is not counting down, e.g. already forfeited.
func (s *Session) Activate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCountdown {
		return false
	}
	s.state = StateActive
	return true
}

// Select applies one selection action. Actions from non-members, out-of-range
// indices, already-pending indices and any action outside ACTIVE are ignored
// without state change. A third selection discards the pending pair and
// starts fresh with the new index. The player completing a matching pair is
// the one credited.
func (s *Session) Select(playerID string, index int) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive || !s.HasPlayer(playerID) || index < 0 || index >= len(s.Board) {
		return Selection{Result: SelectIgnored}
	}
	for _, p := range s.pending {
		if p == index {
			return Selection{Result: SelectIgnored}
		}
	}

	if len(s.pending) >= 2 {
		s.pending = s.pending[:0]
		s.gen++
	}
	s.pending = append(s.pending, index)
	if len(s.pending) < 2 {
		return Selection{Result: SelectPending, Indices: []int{index}}
	}

	a, b := s.pending[0], s.pending[1]
	if s.Board[a] == s.Board[b] {
		s.scores[playerID]++
		// Pair stays revealed; the caller schedules ClearPending with this
		// generation so a later reset is never wiped by the stale clear.
		return Selection{
			Result:  SelectMatch,
			Indices: []int{a, b},
			Scores:  s.scoresLocked(),
			Gen:     s.gen,
		}
	}

	s.pending = s.pending[:0]
	s.gen++
	return Selection{Result: SelectNoMatch, Indices: []int{a, b}}
}

// ClearPending clears the revealed pair, but only if no newer selection has
// replaced it since gen was issued.
func (s *Session) ClearPending(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.pending = s.pending[:0]
		s.gen++
	}
}

// Tick advances the session clock by one second. expired reports that the
// clock just ran out; it fires at most once.
func (s *Session) Tick() (timeLeft int, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return s.timeLeft, false
	}
	if s.timeLeft > 0 {
		s.timeLeft--
		expired = s.timeLeft == 0
	}
	return s.timeLeft, expired
}

// Finish moves the session to ENDED and returns the final scores. It reports
// false if the session already ended, so the end-of-game path runs exactly
// once whether triggered by timeout or forfeit.
func (s *Session) Finish() (map[string]int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEnded {
		return nil, false
	}
	s.state = StateEnded
	s.pending = s.pending[:0]
	close(s.done)
	return s.scoresLocked(), true
}

// Done is closed exactly once, when the session ends. The timer loop selects
// on it so a forfeit cancels the clock without a second end path.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TimeLeft returns the seconds remaining on the session clock.
func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLeft
}

// Scores returns a copy of the current scores.
func (s *Session) Scores() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoresLocked()
}

// Pending returns a copy of the currently revealed indices.
func (s *Session) Pending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.pending...)
}

func (s *Session) scoresLocked() map[string]int {
	out := make(map[string]int, len(s.scores))
	for id, score := range s.scores {
		out[id] = score
	}
	return out
}
