package service

// Broadcaster fans events out to connected players (avoids import cycle
// with the ws transport, which implements it).
type Broadcaster interface {
	BroadcastToPlayer(playerID string, msgType string, payload interface{})
}
