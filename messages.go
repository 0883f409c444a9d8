package server

import (
	"github.com/Ghost-Author/fish-game/internal/persist"
	"github.com/Ghost-Author/fish-game/internal/sim"
)

// Server → client payloads, discriminated by the type field.

type welcomeMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type roomCreatedMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
}

type roomJoinedMessage struct {
	Type     string       `json:"type"`
	RoomCode string       `json:"roomCode"`
	Players  []sim.Player `json:"players"`
}

type roomLeftMessage struct {
	Type string `json:"type"`
}

// roomFullMessage tells a client its join or create attempt was refused
// because the room already holds the maximum number of players.
type roomFullMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
}

type stateMessage struct {
	Type    string       `json:"type"`
	Tick    uint64       `json:"tick"`
	You     sim.Player   `json:"you"`
	Players []sim.Player `json:"players"`
	Fishes  []*sim.Fish  `json:"fishes"`
	Items   []*sim.Item  `json:"items"`
	Score   int          `json:"score"`
	Level   int          `json:"level"`
}

type gameOverMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

const (
	gameOverEaten      = "eaten"
	gameOverDisconnect = "disconnect"
)

type leaderboardMessage struct {
	Type    string          `json:"type"`
	Entries []persist.Entry `json:"entries"`
}
