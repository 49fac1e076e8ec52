package model

import "time"

// GameRecord is the durable counterpart of a session in MongoDB: written at
// creation, score-incremented during play, finalized with winner and end
// time when the session ends.
type GameRecord struct {
	SessionID string         `json:"sessionId" bson:"sessionId"`
	Players   []string       `json:"players" bson:"players"`
	Scores    map[string]int `json:"scores" bson:"scores"`
	Winner    string         `json:"winner,omitempty" bson:"winner,omitempty"`
	StartTime time.Time      `json:"startTime" bson:"startTime"`
	EndTime   *time.Time     `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Emojis    []string       `json:"emojis" bson:"emojis"`
}

// SessionView is the client-facing snapshot sent when a game starts.
type SessionView struct {
	SessionID string         `json:"sessionId"`
	Players   []string       `json:"players"`
	Emojis    []string       `json:"emojis"`
	Scores    map[string]int `json:"scores"`
	TimeLeft  int            `json:"timeLeft"`
}
