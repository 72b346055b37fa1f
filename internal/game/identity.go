// internal/game/identity.go
package game

import (
	"github.com/google/uuid"

	"github.com/bankroll-games/bankroll/internal/models"
)

// Rebind re-attaches an existing player record to a new connection identity.
// The stable token, not the connection id, is what survives a reconnect:
// score, charges and history all carry over. Returns nil when the token is
// unknown to this room. Assumes lock is held.
func (r *Room) Rebind(connID uuid.UUID, token string) *models.Player {
	tok, err := uuid.Parse(token)
	if err != nil {
		return nil
	}
	p := r.playerByToken(tok)
	if p == nil {
		return nil
	}

	old := p.ConnID
	p.ConnID = connID
	p.Connected = true
	if r.HostID == old {
		r.HostID = connID
	}
	if r.LastRollPlayerID == old {
		r.LastRollPlayerID = connID
	}
	if r.RoundEnded {
		// Back in the room: the auto-ready applied while disconnected no
		// longer speaks for them.
		p.ReadyForNextRound = false
	}
	r.logger.WithField("room", r.ID).Infof("player %s reconnected", p.Name)
	r.ensureValidTurn()
	r.broadcastState()
	return p
}

// JoinPlayer admits a connection into the room. A known token re-binds the
// existing record (join and reconnect converge); otherwise a fresh player is
// appended, ineligible until the next round starts. Assumes lock is held.
func (r *Room) JoinPlayer(connID uuid.UUID, name, token string) *models.Player {
	if p := r.Rebind(connID, token); p != nil {
		return p
	}
	p := NewPlayer(connID, name, token)
	r.AddPlayer(p)
	r.broadcastState()
	return p
}

// handleLeave removes a player permanently. No token is retained: a former
// player can only come back as a brand-new one. Assumes lock is held.
func (r *Room) handleLeave(connID uuid.UUID) {
	_, idx := r.playerByConn(connID)
	if idx < 0 {
		return
	}
	r.removePlayerAt(idx)
}

// handleKick is the host-only variant of leave, with a targeted notice to the
// removed connection. Kicking yourself (the host) is a no-op. Assumes lock is
// held.
func (r *Room) handleKick(connID uuid.UUID, targetID string) bool {
	if connID != r.HostID {
		r.sendError(connID, "only the host can kick players")
		return false
	}
	target, err := uuid.Parse(targetID)
	if err != nil || target == connID {
		return false
	}
	p, idx := r.playerByConn(target)
	if p == nil {
		return false
	}
	r.logger.WithField("room", r.ID).Infof("player %s kicked by host", p.Name)
	if r.UnicastFn != nil {
		r.UnicastFn(target, Event{Type: EventKicked})
	}
	if r.OnKicked != nil {
		r.OnKicked(target)
	}
	r.removePlayerAt(idx)
	return false // removePlayerAt broadcasts itself
}

// removePlayerAt splices a player out of the rotation and repairs every piece
// of state that referenced them: host role, turn pointer, rotation start,
// pending roll and pending heart decisions. Deletes the room when it empties.
// Assumes lock is held.
func (r *Room) removePlayerAt(idx int) {
	p := r.Players[idx]

	// A pending roll by the removed player can never resolve.
	if r.Rolling && idx == r.CurrentTurnIndex {
		r.rollGen++
		r.Rolling = false
	}

	hadPending := len(r.PendingHeart) > 0
	delete(r.PendingHeart, p.Token)

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	r.logger.WithField("room", r.ID).Infof("player %s removed (%d players left)", p.Name, len(r.Players))

	if len(r.Players) == 0 {
		if r.OnEmpty != nil {
			r.OnEmpty(r.ID)
		}
		return
	}

	if r.HostID == p.ConnID {
		r.HostID = r.Players[0].ConnID
		r.logger.WithField("room", r.ID).Infof("host migrated to %s", r.Players[0].Name)
	}
	if idx < r.CurrentTurnIndex {
		r.CurrentTurnIndex--
	}
	if r.CurrentTurnIndex >= len(r.Players) {
		r.CurrentTurnIndex = 0
	}
	if idx < r.NextStartIndex {
		r.NextStartIndex--
	}
	if r.NextStartIndex >= len(r.Players) {
		r.NextStartIndex = 0
	}

	if hadPending {
		r.settlePendingHearts()
	}
	r.ensureValidTurn()
	if r.RoundEnded {
		r.maybeStartNextRound()
	}
	r.broadcastState()
}

// HandleDisconnect flags a connection-level drop without removing the player.
// The record and token persist for a later reconnect; the room is kept even
// if everyone is gone. Acquires the lock.
func (r *Room) HandleDisconnect(connID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, _ := r.playerByConn(connID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	r.logger.WithField("room", r.ID).Infof("player %s disconnected", p.Name)

	if r.RoundEnded {
		// Don't let an absent player block the next round.
		p.ReadyForNextRound = true
	}
	r.forceHeartDecline(p)
	r.ensureValidTurn()
	if r.RoundEnded {
		r.maybeStartNextRound()
	}
	r.broadcastState()
}
