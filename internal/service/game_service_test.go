package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/DaveMolla/Emoji-Game/internal/cache"
	"github.com/DaveMolla/Emoji-Game/internal/model"
)

const waitTimeout = 2 * time.Second

type recordedEvent struct {
	playerID string
	msgType  string
	payload  interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToPlayer(playerID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{playerID, msgType, payload})
}

func (b *recordingBroadcaster) count(playerID, msgType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.playerID == playerID && e.msgType == msgType {
			n++
		}
	}
	return n
}

func (b *recordingBroadcaster) last(playerID, msgType string) (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		e := b.events[i]
		if e.playerID == playerID && e.msgType == msgType {
			return e.payload, true
		}
	}
	return nil, false
}

// waitFor blocks until the player has received an event of the given type
// whose payload satisfies pred (nil pred accepts anything).
func (b *recordingBroadcaster) waitFor(t *testing.T, playerID, msgType string, pred func(interface{}) bool) interface{} {
	t.Helper()
	var got interface{}
	require.Eventuallyf(t, func() bool {
		payload, ok := b.last(playerID, msgType)
		if !ok || (pred != nil && !pred(payload)) {
			return false
		}
		got = payload
		return true
	}, waitTimeout, 2*time.Millisecond, "waiting for %s to %s", msgType, playerID)
	return got
}

type fakeSessionRepo struct {
	mu      sync.Mutex
	records map[string]*model.GameRecord
	fail    bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{records: make(map[string]*model.GameRecord)}
}

func (r *fakeSessionRepo) Create(_ context.Context, record *model.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("store down")
	}
	cp := *record
	r.records[record.SessionID] = &cp
	return nil
}

func (r *fakeSessionRepo) IncrementScore(_ context.Context, sessionID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("store down")
	}
	record, ok := r.records[sessionID]
	if !ok {
		return errors.New("no such record")
	}
	if record.Scores == nil {
		record.Scores = make(map[string]int)
	}
	record.Scores[playerID]++
	return nil
}

func (r *fakeSessionRepo) Finish(_ context.Context, sessionID, winner string, endedAt time.Time) (*model.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errors.New("store down")
	}
	record, ok := r.records[sessionID]
	if !ok {
		return nil, errors.New("no such record")
	}
	record.Winner = winner
	record.EndTime = &endedAt
	cp := *record
	return &cp, nil
}

func (r *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (*model.GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

type fakeLeaderboard struct {
	mu   sync.Mutex
	wins map[string]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{wins: make(map[string]int)}
}

func (l *fakeLeaderboard) IncrementWins(_ context.Context, playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wins[playerID]++
	return nil
}

func (l *fakeLeaderboard) Top(context.Context, int) ([]cache.LeaderboardEntry, error) {
	return nil, nil
}

func (l *fakeLeaderboard) Rank(context.Context, string) (int64, error) {
	return -1, nil
}

func (l *fakeLeaderboard) winsFor(playerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wins[playerID]
}

type fakeRecordCache struct {
	mu      sync.Mutex
	records map[string]*model.GameRecord
}

func newFakeRecordCache() *fakeRecordCache {
	return &fakeRecordCache{records: make(map[string]*model.GameRecord)}
}

func (c *fakeRecordCache) Set(_ context.Context, record *model.GameRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.SessionID] = record
	return nil
}

func (c *fakeRecordCache) Get(_ context.Context, sessionID string) (*model.GameRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[sessionID], nil
}

func (c *fakeRecordCache) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, sessionID)
	return nil
}

type testEnv struct {
	svc   *GameService
	bc    *recordingBroadcaster
	repo  *fakeSessionRepo
	lb    *fakeLeaderboard
	clock *clockwork.FakeClock
}

func newTestEnv(t *testing.T, cfg GameConfig) *testEnv {
	t.Helper()
	env := &testEnv{
		bc:    &recordingBroadcaster{},
		repo:  newFakeSessionRepo(),
		lb:    newFakeLeaderboard(),
		clock: clockwork.NewFakeClock(),
	}
	rng := rand.New(rand.NewSource(42))
	env.svc = NewGameService(env.repo, env.lb, newFakeRecordCache(), env.clock, rng, cfg)
	env.svc.SetBroadcaster(env.bc)
	return env
}

// pairIndices returns the two board positions holding the duplicated symbol.
func pairIndices(t *testing.T, board []string) (int, int) {
	t.Helper()
	seen := make(map[string]int)
	for i, sym := range board {
		if j, ok := seen[sym]; ok {
			return j, i
		}
		seen[sym] = i
	}
	t.Fatal("board has no duplicated symbol")
	return 0, 0
}

func TestStartGameQueuesFirstPlayer(t *testing.T) {
	env := newTestEnv(t, DefaultGameConfig())

	env.svc.HandleStartGame("p1")
	require.Equal(t, 1, env.bc.count("p1", model.EvtWaitingForPlayer))
	require.Zero(t, env.bc.count("p1", model.EvtGameStarted))
}

func TestFullGameFlow(t *testing.T) {
	cfg := DefaultGameConfig()
	env := newTestEnv(t, cfg)

	env.svc.HandleStartGame("p1")
	env.svc.HandleStartGame("p2")

	view1 := env.bc.waitFor(t, "p1", model.EvtGameStarted, nil).(*model.SessionView)
	view2 := env.bc.waitFor(t, "p2", model.EvtGameStarted, nil).(*model.SessionView)
	require.Equal(t, view1.SessionID, view2.SessionID)
	require.Equal(t, view1.Emojis, view2.Emojis)
	require.Equal(t, []string{"p1", "p2"}, view1.Players)
	require.Equal(t, 60, view1.TimeLeft)
	require.Len(t, view1.Emojis, 16)

	// Countdown 3 -> 0, one step per second.
	for want := cfg.CountdownSeconds; want >= 0; want-- {
		for _, p := range []string{"p1", "p2"} {
			env.bc.waitFor(t, p, model.EvtCountdown, func(v interface{}) bool {
				return v.(model.CountdownPayload).Countdown == want
			})
		}
		if want > 0 {
			env.clock.BlockUntil(1)
			env.clock.Advance(time.Second)
		}
	}

	// First tick of the round clock.
	env.clock.BlockUntil(1)
	env.clock.Advance(time.Second)
	env.bc.waitFor(t, "p1", model.EvtTimeUpdate, func(v interface{}) bool {
		return v.(model.TimeUpdatePayload).TimeLeft == 59
	})

	// P1 completes the board's only pair.
	a, b := pairIndices(t, view1.Emojis)
	env.svc.HandleSelectEmoji(view1.SessionID, "p1", a)
	env.svc.HandleSelectEmoji(view1.SessionID, "p1", b)

	for _, p := range []string{"p1", "p2"} {
		payload := env.bc.waitFor(t, p, model.EvtMatchFound, nil).(model.MatchFoundPayload)
		require.Equal(t, []int{a, b}, payload.SelectedEmojis)
		require.Equal(t, "p1", payload.PlayerID)
		require.Equal(t, map[string]int{"p1": 1, "p2": 0}, payload.Scores)
	}

	// Run the clock out. Two waiters now: the ticker and the reveal delay.
	env.clock.BlockUntil(2)
	for left := 58; left >= 0; left-- {
		env.clock.Advance(time.Second)
		want := left
		env.bc.waitFor(t, "p1", model.EvtTimeUpdate, func(v interface{}) bool {
			return v.(model.TimeUpdatePayload).TimeLeft == want
		})
		if left > 0 {
			env.clock.BlockUntil(1)
		}
	}

	for _, p := range []string{"p1", "p2"} {
		end := env.bc.waitFor(t, p, model.EvtEndGame, nil).(model.EndGamePayload)
		require.Equal(t, "p1", end.WinnerID)
		require.Equal(t, map[string]int{"p1": 1, "p2": 0}, end.Scores)

		over := env.bc.waitFor(t, p, model.EvtGameOver, nil).(model.GameOverPayload)
		require.Equal(t, view1.SessionID, over.Session.SessionID)
		require.Equal(t, "p1", over.Session.Winner)
		require.NotNil(t, over.Session.EndTime)
	}

	require.Eventually(t, func() bool {
		return env.lb.winsFor("p1") == 1 && env.svc.store.Len() == 0
	}, waitTimeout, 2*time.Millisecond)

	// Exactly one end of game.
	require.Equal(t, 1, env.bc.count("p1", model.EvtEndGame))
}

func TestDuplicateStartGameIsIgnored(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.CountdownSeconds = 0
	env := newTestEnv(t, cfg)

	env.svc.HandleStartGame("p1")
	env.svc.HandleStartGame("p2")
	env.bc.waitFor(t, "p1", model.EvtGameStarted, nil)

	// A paired player re-issuing startGame must not enter the queue. The
	// single waitingForPlayer is from the original join.
	before := env.bc.count("p1", model.EvtWaitingForPlayer)
	env.svc.HandleStartGame("p1")
	require.Equal(t, before, env.bc.count("p1", model.EvtWaitingForPlayer))

	env.svc.HandleStartGame("p3")
	require.Equal(t, 1, env.bc.count("p3", model.EvtWaitingForPlayer))
	require.Equal(t, 1, env.svc.queue.Len())
}

func TestDisconnectWhileQueuedRemovesEntry(t *testing.T) {
	env := newTestEnv(t, DefaultGameConfig())

	env.svc.HandleStartGame("p1")
	env.svc.HandleDisconnect("p1")

	// p2 should wait instead of being paired with the departed p1.
	env.svc.HandleStartGame("p2")
	require.Equal(t, 1, env.bc.count("p2", model.EvtWaitingForPlayer))
	require.Zero(t, env.bc.count("p2", model.EvtGameStarted))
}

func TestDisconnectMidGameForfeits(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.CountdownSeconds = 0
	env := newTestEnv(t, cfg)

	env.svc.HandleStartGame("p1")
	env.svc.HandleStartGame("p2")
	env.bc.waitFor(t, "p1", model.EvtGameStarted, nil)

	env.svc.HandleDisconnect("p2")

	end := env.bc.waitFor(t, "p1", model.EvtEndGame, nil).(model.EndGamePayload)
	require.Equal(t, "p1", end.WinnerID)

	require.Eventually(t, func() bool {
		return env.lb.winsFor("p1") == 1 && env.svc.store.Len() == 0
	}, waitTimeout, 2*time.Millisecond)
}

func TestPersistenceFailureNeverBlocksGameplay(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.CountdownSeconds = 0
	env := newTestEnv(t, cfg)
	env.repo.fail = true

	env.svc.HandleStartGame("p1")
	env.svc.HandleStartGame("p2")
	view := env.bc.waitFor(t, "p1", model.EvtGameStarted, nil).(*model.SessionView)

	a, b := pairIndices(t, view.Emojis)
	env.svc.HandleSelectEmoji(view.SessionID, "p1", a)
	env.svc.HandleSelectEmoji(view.SessionID, "p1", b)

	// The match is scored and broadcast even though the durable write fails.
	env.bc.waitFor(t, "p2", model.EvtMatchFound, nil)

	env.svc.HandleDisconnect("p2")
	env.bc.waitFor(t, "p1", model.EvtEndGame, nil)

	// The archive write failed, so no gameOver; the session is still evicted.
	require.Eventually(t, func() bool {
		return env.svc.store.Len() == 0
	}, waitTimeout, 2*time.Millisecond)
	require.Zero(t, env.bc.count("p1", model.EvtGameOver))
}
