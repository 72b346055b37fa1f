// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"github.com/bankroll-games/bankroll/internal/models"
)

// RoomState is the redacted, broadcastable projection of a Room. It contains
// everything a client needs to render the table and nothing it must not see:
// reconnection tokens are stripped.
type RoomState struct {
	ID     string `json:"id"`
	HostID string `json:"hostId"`

	Players []PlayerState `json:"players"`

	Started  bool `json:"started"`
	Finished bool `json:"finished"`

	TotalRounds  int `json:"totalRounds"`
	CurrentRound int `json:"currentRound"`

	Pot              int  `json:"pot"`
	CurrentTurnIndex int  `json:"currentTurnIndex"`
	Rolling          bool `json:"rolling"`

	RoundRolls       []int  `json:"roundRolls"`
	LastRollPlayerID string `json:"lastRollPlayerId,omitempty"`

	RoundEnded      bool   `json:"roundEnded"`
	LastRoundReason string `json:"lastRoundReason,omitempty"`

	// PendingHeart lists the connection ids still owed a save decision.
	PendingHeart []string   `json:"pendingHeart,omitempty"`
	LastBust     *BustState `json:"lastBust,omitempty"`

	Shop models.ShopConfig `json:"shop"`
}

// PlayerState is the public view of one player.
type PlayerState struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Score           int                   `json:"score"`
	Connected       bool                  `json:"connected"`
	Eligible        bool                  `json:"eligible"`
	Banked          bool                  `json:"banked"`
	Out             bool                  `json:"out"`
	OutReason       string                `json:"outReason,omitempty"`
	Hearts          int                   `json:"hearts"`
	MultiplierCount int                   `json:"multiplierCount"`
	Ready           bool                  `json:"ready"`
	RoundPoints     int                   `json:"roundPoints"`
	RoundBankIndex  int                   `json:"roundBankIndex"`
	RoundHistory    []models.RoundResult  `json:"roundHistory,omitempty"`
}

// BustState mirrors BustInfo with string ids for the wire.
type BustState struct {
	ID      int      `json:"id"`
	Players []string `json:"players"`
}

// Snapshot derives the public view. Pure projection, no mutation. Assumes
// lock is held.
func (r *Room) Snapshot() *RoomState {
	st := &RoomState{
		ID:               r.ID,
		HostID:           r.HostID.String(),
		Started:          r.Started,
		Finished:         r.Finished,
		TotalRounds:      r.TotalRounds,
		CurrentRound:     r.CurrentRound,
		Pot:              r.Pot,
		CurrentTurnIndex: r.CurrentTurnIndex,
		Rolling:          r.Rolling,
		RoundRolls:       append([]int(nil), r.RoundRollSequence...),
		RoundEnded:       r.RoundEnded,
		LastRoundReason:  r.LastRoundReason,
		Shop:             r.Shop,
	}
	if r.LastRollPlayerID != uuid.Nil {
		st.LastRollPlayerID = r.LastRollPlayerID.String()
	}

	st.Players = make([]PlayerState, 0, len(r.Players))
	for _, p := range r.Players {
		st.Players = append(st.Players, PlayerState{
			ID:              p.ConnID.String(),
			Name:            p.Name,
			Score:           p.Score,
			Connected:       p.Connected,
			Eligible:        p.Eligible,
			Banked:          p.Banked,
			Out:             p.Out,
			OutReason:       p.OutReason,
			Hearts:          p.Hearts,
			MultiplierCount: p.MultiplierCount,
			Ready:           p.ReadyForNextRound,
			RoundPoints:     p.RoundPoints,
			RoundBankIndex:  p.RoundBankIndex,
			RoundHistory:    p.RoundHistory,
		})
	}

	if len(r.PendingHeart) > 0 {
		for _, p := range r.Players {
			if _, ok := r.PendingHeart[p.Token]; ok {
				st.PendingHeart = append(st.PendingHeart, p.ConnID.String())
			}
		}
	}
	if r.LastBust != nil {
		bs := &BustState{ID: r.LastBust.ID}
		for _, id := range r.LastBust.Players {
			bs.Players = append(bs.Players, id.String())
		}
		st.LastBust = bs
	}
	return st
}
