// internal/game/heart.go
package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bankroll-games/bankroll/internal/models"
)

// triggerBust starts the heart-save sub-protocol for a non-first-roll 1.
// Every active player holding a heart is owed a decision before the round may
// conclude; everyone else goes out immediately, forfeiting their pot share.
// Assumes lock is held.
func (r *Room) triggerBust(roller *models.Player) {
	r.bustSeq++
	bust := &BustInfo{ID: r.bustSeq}
	pending := make(map[uuid.UUID]struct{})

	for _, p := range r.Players {
		if !p.Active() {
			continue
		}
		if p.Hearts > 0 {
			pending[p.Token] = struct{}{}
			continue
		}
		r.markOut(p, fmt.Sprintf("busted by %s", roller.Name))
		bust.Players = append(bust.Players, p.ConnID)
	}
	r.LastBust = bust

	if len(pending) == 0 {
		r.endRound(RoundEndBust)
		return
	}
	r.PendingHeart = pending
	r.ensureValidTurn()
}

// handleHeartDecision resolves one implicated player's save decision. Each
// player in the pending set resolves independently; play resumes (or the
// round ends) once the set empties. Assumes lock is held.
func (r *Room) handleHeartDecision(connID uuid.UUID, use bool) bool {
	p, _ := r.playerByConn(connID)
	if p == nil || len(r.PendingHeart) == 0 {
		return false
	}
	if _, ok := r.PendingHeart[p.Token]; !ok {
		return false
	}
	delete(r.PendingHeart, p.Token)

	if use && p.Hearts > 0 {
		p.Hearts--
		r.logger.WithField("room", r.ID).Infof("player %s spent a heart to survive the bust", p.Name)
	} else {
		reason := "declined the heart save"
		if use {
			reason = "no hearts left"
		}
		r.markOut(p, reason)
		if r.LastBust != nil {
			r.LastBust.Players = append(r.LastBust.Players, p.ConnID)
		}
	}
	r.settlePendingHearts()
	return true
}

// forceHeartDecline resolves a pending decision as a decline on behalf of a
// player who disconnected mid-decision. Assumes lock is held.
func (r *Room) forceHeartDecline(p *models.Player) {
	if _, ok := r.PendingHeart[p.Token]; !ok {
		return
	}
	delete(r.PendingHeart, p.Token)
	r.markOut(p, "disconnected during the bust")
	if r.LastBust != nil {
		r.LastBust.Players = append(r.LastBust.Players, p.ConnID)
	}
	r.settlePendingHearts()
}

// settlePendingHearts checks whether the bust is fully resolved: once no
// decision is outstanding, either normal play resumes or the round ends with
// the already-recorded bust set. Assumes lock is held.
func (r *Room) settlePendingHearts() {
	if len(r.PendingHeart) > 0 {
		return
	}
	r.PendingHeart = nil
	if !r.anyActive() {
		r.endRound(RoundEndBust)
		return
	}
	r.ensureValidTurn()
}

// markOut removes a player from the current round without banking. Assumes
// lock is held.
func (r *Room) markOut(p *models.Player, reason string) {
	p.Out = true
	p.OutReason = reason
	r.logger.WithField("room", r.ID).Infof("player %s is out: %s", p.Name, reason)
}
