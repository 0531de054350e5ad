// Package models holds the wire/storage models shared between the game
// engine, the persistence layer and the admin RPC surface.
package models

import (
	"time"
)

// TeamResult is one team's final standing in an archived match.
type TeamResult struct {
	TeamID    string   `json:"team_id"`
	Label     string   `json:"label"`
	Score     int      `json:"score"`
	Nicknames []string `json:"nicknames"`
	Winner    bool     `json:"winner"`
}

// MatchRecord is the append-only archive entry written when a game finishes.
// Live room state is never persisted; this is write-only history.
type MatchRecord struct {
	RoomCode     string       `json:"room_code"`
	RoomName     string       `json:"room_name"`
	PlayerCount  int          `json:"player_count"`
	Rounds       int          `json:"rounds"`
	FinishReason string       `json:"finish_reason"`
	Winners      []string     `json:"winners"`
	Teams        []TeamResult `json:"teams"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
}

// Duration returns the wall-clock length of the match in seconds.
func (r MatchRecord) Duration() int {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return int(r.FinishedAt.Sub(r.StartedAt).Seconds())
}
