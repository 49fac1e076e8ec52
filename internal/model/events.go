package model

// Realtime event names, shared by the gateway and the game service. Names
// match the client contract exactly.
const (
	// Client -> server
	EvtStartGame   = "startGame"
	EvtSelectEmoji = "selectEmoji"

	// Server -> client
	EvtWaitingForPlayer = "waitingForPlayer"
	EvtGameStarted      = "gameStarted"
	EvtCountdown        = "countdown"
	EvtMatchFound       = "matchFound"
	EvtNoMatch          = "noMatch"
	EvtTimeUpdate       = "timeUpdate"
	EvtEndGame          = "endGame"
	EvtGameOver         = "gameOver"
)

// SelectEmojiPayload is the client payload for a selection action.
type SelectEmojiPayload struct {
	SessionID  string `json:"sessionId"`
	EmojiIndex int    `json:"emojiIndex"`
	PlayerID   string `json:"playerId"`
}

// CountdownPayload carries the remaining pre-game countdown, terminal 0 included.
type CountdownPayload struct {
	Countdown int `json:"countdown"`
}

// TimeUpdatePayload is broadcast once per second while a session is active.
type TimeUpdatePayload struct {
	TimeLeft int `json:"timeLeft"`
}

// MatchFoundPayload announces a scored pair to both players.
type MatchFoundPayload struct {
	SelectedEmojis []int          `json:"selectedEmojis"`
	Scores         map[string]int `json:"scores"`
	PlayerID       string         `json:"playerId"`
}

// NoMatchPayload carries the two mismatched indices so clients can
// show-then-hide them.
type NoMatchPayload struct {
	SelectedEmojis []int `json:"selectedEmojis"`
}

// EndGamePayload announces the outcome at timeout or forfeit. WinnerID is
// empty on a tie.
type EndGamePayload struct {
	WinnerID string         `json:"winnerId"`
	Scores   map[string]int `json:"scores"`
}

// GameOverPayload carries the archived record once the durable write is done.
type GameOverPayload struct {
	Session *GameRecord `json:"session"`
}
