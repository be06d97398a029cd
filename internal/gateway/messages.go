package gateway

import (
	"encoding/json"

	"github.com/jigoku/jigoku-server-go/internal/cards"
)

// Message is the websocket envelope used in both directions.
type Message struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Client message types.
const (
	TypeCreateGame      = "create_game"
	TypeJoinGame        = "join_game"
	TypeView            = "view"
	TypeRespond         = "respond"
	TypeDeclareConflict = "declare_conflict"
	TypePassConflict    = "pass_conflict"
	TypeEndGame         = "end_game"
)

// Server message types.
const (
	TypeGameState = "game_state"
	TypeGameOver  = "game_over"
	TypeError     = "error"
)

// SeatData is one player of a create_game request.
type SeatData struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Deck cards.Deck `json:"deck"`
}

// CreateGameData is the payload of create_game.
type CreateGameData struct {
	Players []SeatData `json:"players"`
}

// RespondData is the payload of respond.
type RespondData struct {
	PromptID string   `json:"prompt_id"`
	Choice   string   `json:"choice"`
	CardIDs  []string `json:"card_ids"`
	Ring     string   `json:"ring"`
	Button   string   `json:"button"`
}

// DeclareConflictData is the payload of declare_conflict.
type DeclareConflictData struct {
	Ring        string   `json:"ring"`
	Type        string   `json:"type"`
	ProvinceID  string   `json:"province_id"`
	AttackerIDs []string `json:"attacker_ids"`
}

// ErrorData is the payload of error.
type ErrorData struct {
	Request string `json:"request"`
	Error   string `json:"error"`
}
