// internal/game/roll.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// rollResolveDelay is the fixed animation budget between a roll command and
// its resolution. Not configurable.
const rollResolveDelay = 1500 * time.Millisecond

// RollKind classifies a resolved die value.
type RollKind int

const (
	RollNormal RollKind = iota
	RollBonusTen
	RollBonusTwo
	RollDouble
	RollBust
)

func (k RollKind) String() string {
	switch k {
	case RollBonusTen:
		return "bonusTen"
	case RollBonusTwo:
		return "bonusTwo"
	case RollDouble:
		return "double"
	case RollBust:
		return "bust"
	default:
		return "normal"
	}
}

// RollOutcome is the effect of one die value on the pot.
type RollOutcome struct {
	Kind          RollKind
	PotDelta      int
	PotMultiplier int
}

// ResolveRoll maps a fair d6 value to its pot effect. On the round's first
// roll a 1 is worth a flat 10 and a 2 a flat 2; afterwards a 1 busts and a 2
// doubles the pot.
func ResolveRoll(value int, firstRoll bool) RollOutcome {
	switch {
	case firstRoll && value == 1:
		return RollOutcome{Kind: RollBonusTen, PotDelta: 10, PotMultiplier: 1}
	case firstRoll && value == 2:
		return RollOutcome{Kind: RollBonusTwo, PotDelta: 2, PotMultiplier: 1}
	case value == 1:
		return RollOutcome{Kind: RollBust, PotMultiplier: 1}
	case value == 2:
		return RollOutcome{Kind: RollDouble, PotMultiplier: 2}
	default:
		return RollOutcome{Kind: RollNormal, PotDelta: value, PotMultiplier: 1}
	}
}

// handleRoll validates and schedules a roll for the current player. The die
// is cast immediately; its effects apply after rollResolveDelay so clients
// can animate. Assumes lock is held.
func (r *Room) handleRoll(connID uuid.UUID) bool {
	if !r.Started || r.Finished || r.RoundEnded || len(r.PendingHeart) > 0 {
		return false
	}
	if r.Rolling {
		r.sendError(connID, "a roll is already in progress")
		return false
	}
	cur := r.currentPlayer()
	if cur == nil || cur.ConnID != connID || !cur.Active() {
		return false
	}

	value := r.rollDie()
	r.Rolling = true
	gen := r.rollGen
	roller := cur.Token

	r.logger.WithField("room", r.ID).Debugf("player %s rolled %d, resolving in %s", cur.Name, value, rollResolveDelay)
	r.clock.AfterFunc(rollResolveDelay, func() {
		r.resolveRoll(gen, roller, value)
	})
	return true
}

// resolveRoll applies a scheduled roll. It runs after the delay window and
// must re-validate the room: the round may have ended, the game restarted, or
// the roller removed while the timer was pending. The rollGen handle is
// bumped by every such transition, so a stale callback simply aborts.
func (r *Room) resolveRoll(gen int, rollerToken uuid.UUID, value int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if gen != r.rollGen || !r.Started || r.Finished || r.RoundEnded {
		r.logger.WithField("room", r.ID).Debug("stale roll resolution dropped")
		return
	}
	roller := r.playerByToken(rollerToken)
	if roller == nil {
		// Removal of the roller bumps rollGen, so this should not happen.
		r.Rolling = false
		return
	}

	r.Rolling = false
	first := r.IsFirstRoll
	r.IsFirstRoll = false
	r.RoundRolls++
	r.RoundRollSequence = append(r.RoundRollSequence, value)
	r.LastRollPlayerID = roller.ConnID
	r.lastRollToken = rollerToken

	outcome := ResolveRoll(value, first)
	r.logger.WithField("room", r.ID).Debugf("roll %d resolved as %s", value, outcome.Kind)

	if outcome.Kind == RollBust {
		r.triggerBust(roller)
		r.broadcastState()
		return
	}

	r.Pot = r.Pot*outcome.PotMultiplier + outcome.PotDelta

	// The turn pointer may already have moved off the roller during the
	// delay (a disconnect passes the turn immediately). Only advance when
	// the roller still holds it, otherwise the next player would be skipped.
	if idx := r.indexByToken(rollerToken); idx == r.CurrentTurnIndex {
		r.advanceTurn()
	} else {
		r.ensureValidTurn()
	}
	r.broadcastState()
}
