package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/DaveMolla/Emoji-Game/internal/cache"
	"github.com/DaveMolla/Emoji-Game/internal/game"
	"github.com/DaveMolla/Emoji-Game/internal/model"
	"github.com/DaveMolla/Emoji-Game/internal/repository"
)

// GameConfig holds the tunables of a round.
type GameConfig struct {
	CountdownSeconds int
	RoundSeconds     int
	RevealDelay      time.Duration
	PersistTimeout   time.Duration
}

// DefaultGameConfig matches the reference configuration: 3s countdown,
// 60s round.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		CountdownSeconds: 3,
		RoundSeconds:     60,
		RevealDelay:      800 * time.Millisecond,
		PersistTimeout:   5 * time.Second,
	}
}

// GameService orchestrates the waiting queue, the session store and the
// durable store, and fans resulting state out through the broadcaster.
// Gameplay state is always mutated and broadcast before any durable write;
// persistence runs in its own goroutines and never blocks an action.
type GameService struct {
	queue       *game.Queue
	store       *game.Store
	repo        repository.GameSessionRepo
	leaderboard cache.LeaderboardCache
	records     cache.RecordCache
	clock       clockwork.Clock
	cfg         GameConfig

	rngMu sync.Mutex
	rng   *rand.Rand

	broadcaster Broadcaster
}

// NewGameService creates a game service with an empty queue and store.
func NewGameService(
	repo repository.GameSessionRepo,
	leaderboard cache.LeaderboardCache,
	records cache.RecordCache,
	clock clockwork.Clock,
	rng *rand.Rand,
	cfg GameConfig,
) *GameService {
	return &GameService{
		queue:       game.NewQueue(),
		store:       game.NewStore(),
		repo:        repo,
		leaderboard: leaderboard,
		records:     records,
		clock:       clock,
		cfg:         cfg,
		rng:         rng,
	}
}

// SetBroadcaster injects the realtime fan-out (the ws hub implements it).
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// HandleStartGame enqueues a player and starts a session the moment an
// opponent is waiting. A player already inside a live session is ignored so
// no second session can be created for them.
func (s *GameService) HandleStartGame(playerID string) {
	if sess, busy := s.store.SessionFor(playerID); busy {
		log.Warn().
			Str("player_id", playerID).
			Str("session_id", sess.ID).
			Msg("ignoring startGame from player already in a session")
		return
	}

	pair, paired := s.queue.Join(playerID)
	if !paired {
		s.broadcastToPlayer(playerID, model.EvtWaitingForPlayer, nil)
		return
	}
	s.startSession(pair)
}

func (s *GameService) startSession(pair [2]string) {
	s.rngMu.Lock()
	board, err := game.GenerateBoard(s.rng, game.DefaultPalette, game.BoardSize)
	s.rngMu.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("board generation failed")
		return
	}

	sessionID := "session_" + uuid.NewString()
	sess, err := s.store.Create(sessionID, pair, board, s.cfg.RoundSeconds, s.clock.Now())
	if err != nil {
		log.Warn().Err(err).Strs("players", pair[:]).Msg("session creation rejected")
		return
	}

	log.Info().
		Str("session_id", sessionID).
		Strs("players", pair[:]).
		Msg("session created")

	record := &model.GameRecord{
		SessionID: sessionID,
		Players:   pair[:],
		Scores:    sess.Scores(),
		StartTime: sess.StartedAt,
		Emojis:    board,
	}
	go s.persist(sessionID, "create session record", func(ctx context.Context) error {
		return s.repo.Create(ctx, record)
	})

	view := &model.SessionView{
		SessionID: sessionID,
		Players:   pair[:],
		Emojis:    board,
		Scores:    sess.Scores(),
		TimeLeft:  sess.TimeLeft(),
	}
	s.broadcastToSession(sess, model.EvtGameStarted, view)

	go s.runSession(sess)
}

// runSession owns the session's only timer: the countdown followed by the
// per-second round clock. A forfeit closes the session's done channel, which
// stops the loop without a second end-of-game path.
func (s *GameService) runSession(sess *game.Session) {
	for i := s.cfg.CountdownSeconds; ; i-- {
		s.broadcastToSession(sess, model.EvtCountdown, model.CountdownPayload{Countdown: i})
		if i == 0 {
			break
		}
		select {
		case <-s.clock.After(time.Second):
		case <-sess.Done():
			return
		}
	}

	if !sess.Activate() {
		return
	}

	ticker := s.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			timeLeft, expired := sess.Tick()
			s.broadcastToSession(sess, model.EvtTimeUpdate, model.TimeUpdatePayload{TimeLeft: timeLeft})
			if expired {
				s.endSession(sess, "")
				return
			}
		case <-sess.Done():
			return
		}
	}
}

// HandleSelectEmoji applies one selection to its session. Invalid actions
// are dropped without a broadcast.
func (s *GameService) HandleSelectEmoji(sessionID, playerID string, index int) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		log.Debug().
			Str("session_id", sessionID).
			Str("player_id", playerID).
			Msg("selection for unknown or archived session")
		return
	}

	sel := sess.Select(playerID, index)
	switch sel.Result {
	case game.SelectMatch:
		s.broadcastToSession(sess, model.EvtMatchFound, model.MatchFoundPayload{
			SelectedEmojis: sel.Indices,
			Scores:         sel.Scores,
			PlayerID:       playerID,
		})

		// Keep the pair visible briefly, then clear without holding up
		// other actions. The generation guard keeps a stale clear from
		// wiping a newer selection.
		gen := sel.Gen
		go func() {
			select {
			case <-s.clock.After(s.cfg.RevealDelay):
				sess.ClearPending(gen)
			case <-sess.Done():
			}
		}()

		go s.persist(sessionID, "score increment", func(ctx context.Context) error {
			return s.repo.IncrementScore(ctx, sessionID, playerID)
		})

	case game.SelectNoMatch:
		s.broadcastToSession(sess, model.EvtNoMatch, model.NoMatchPayload{
			SelectedEmojis: sel.Indices,
		})
	}
}

// HandleDisconnect removes a still-queued player, or forfeits their live
// session: the remaining player wins immediately.
func (s *GameService) HandleDisconnect(playerID string) {
	if s.queue.Remove(playerID) {
		log.Debug().Str("player_id", playerID).Msg("removed from waiting queue")
		return
	}

	sess, ok := s.store.SessionFor(playerID)
	if !ok {
		return
	}
	winner, _ := sess.Opponent(playerID)
	log.Info().
		Str("session_id", sess.ID).
		Str("player_id", playerID).
		Str("winner_id", winner).
		Msg("player disconnected mid-game, forfeiting")
	s.endSession(sess, winner)
}

// endSession is the single end-of-game path for both timeout and forfeit.
// Finish succeeds exactly once, so the timer stops and the archive write
// happens exactly once.
func (s *GameService) endSession(sess *game.Session, forfeitWinner string) {
	scores, ok := sess.Finish()
	if !ok {
		return
	}

	winner := forfeitWinner
	if winner == "" {
		winner, _ = game.ResolveWinner(scores)
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("winner_id", winner).
		Msg("session ended")

	s.broadcastToSession(sess, model.EvtEndGame, model.EndGamePayload{
		WinnerID: winner,
		Scores:   scores,
	})

	go s.archive(sess, winner)
}

func (s *GameService) archive(sess *game.Session, winner string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	record, err := s.repo.Finish(ctx, sess.ID, winner, s.clock.Now())
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("retrying archive write")
		record, err = s.repo.Finish(ctx, sess.ID, winner, s.clock.Now())
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("archive write failed")
	} else {
		if err := s.records.Set(ctx, record); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("record cache write failed")
		}
		s.broadcastToSession(sess, model.EvtGameOver, model.GameOverPayload{Session: record})
	}

	if winner != "" {
		if err := s.leaderboard.IncrementWins(ctx, winner); err != nil {
			log.Warn().Err(err).Str("player_id", winner).Msg("leaderboard update failed")
		}
	}

	s.store.Evict(sess.ID)
}

// GetRecord returns an archived session record, cache first.
func (s *GameService) GetRecord(ctx context.Context, sessionID string) (*model.GameRecord, error) {
	if record, err := s.records.Get(ctx, sessionID); err == nil && record != nil {
		return record, nil
	} else if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("record cache read failed")
	}

	record, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil || record == nil {
		return record, err
	}
	if err := s.records.Set(ctx, record); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("record cache write failed")
	}
	return record, nil
}

// persist runs a durable write with one retry. Failures are logged and never
// surface to gameplay.
func (s *GameService) persist(sessionID, what string, op func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	err := op(ctx)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msgf("retrying %s", what)
		err = op(ctx)
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msgf("%s failed", what)
	}
}

func (s *GameService) broadcastToSession(sess *game.Session, msgType string, payload interface{}) {
	for _, playerID := range sess.Players {
		s.broadcastToPlayer(playerID, msgType, payload)
	}
}

func (s *GameService) broadcastToPlayer(playerID, msgType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToPlayer(playerID, msgType, payload)
}
