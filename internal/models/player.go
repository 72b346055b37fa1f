// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is one seat in a Room. ConnID is the transient websocket identity
// and changes across reconnects; Token is the stable identity used to re-bind
// a reconnecting connection to its persistent record.
type Player struct {
	ConnID uuid.UUID `json:"id"`
	Token  uuid.UUID `json:"-"`

	Name  string `json:"name"`
	Score int    `json:"score"`

	Connected bool `json:"connected"`

	// Eligible means the player may participate in the current round. Players
	// who join mid-round stay ineligible until the next round starts.
	Eligible bool `json:"eligible"`

	// Banked means the player has already claimed this round's pot.
	Banked bool `json:"banked"`

	// Out means the player was removed from the current round without banking
	// (bust with no heart, or a declined heart save). Distinct from Banked.
	Out       bool   `json:"out"`
	OutReason string `json:"outReason,omitempty"`

	Hearts          int `json:"hearts"`
	MultiplierCount int `json:"multiplierCount"`

	ReadyForNextRound bool `json:"readyForNextRound"`

	// Round-scoped scratch state, folded into RoundHistory at round end.
	RoundPoints    int `json:"roundPoints"`
	RoundBankIndex int `json:"roundBankIndex"`

	RoundHistory []RoundResult `json:"roundHistory"`
}

// RoundResult is one completed round's outcome for a player.
type RoundResult struct {
	Round  int   `json:"round"`
	Points int   `json:"points"`
	Rolls  []int `json:"rolls"`

	// BankIndex is the player's position in the round's banking order,
	// starting at 1. Zero means the player never banked.
	BankIndex int `json:"bankIndex"`
}

// Active reports whether the player may act in the current round.
func (p *Player) Active() bool {
	return p.Connected && p.Eligible && !p.Banked && !p.Out
}
