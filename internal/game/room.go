// internal/game/room.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bankroll-games/bankroll/internal/cache"
	"github.com/bankroll-games/bankroll/internal/models"
)

// Round-end reasons. AllBanked covers every "no active player remains"
// path without a bust, including the last active player disconnecting or
// leaving.
const (
	RoundEndBust      = "bust"
	RoundEndAllBanked = "allBanked"
)

const (
	defaultTotalRounds = 3
	maxTotalRounds     = 20
	maxRoundHistory    = 20
)

// BustInfo correlates client feedback with the most recent bust: a monotonic
// id plus the connection ids of every player it knocked out.
type BustInfo struct {
	ID      int         `json:"id"`
	Players []uuid.UUID `json:"players"`
}

// Room holds the entire authoritative state for one game instance in memory.
// All exported mutating entry points are HandleCommand, HandleDisconnect and
// the scheduled roll resolution; everything else assumes Mu is held.
type Room struct {
	ID     string
	HostID uuid.UUID

	// Players is the turn rotation in insertion order. Removal splices; the
	// order is never otherwise rearranged.
	Players []*models.Player

	Started  bool
	Finished bool

	TotalRounds  int
	CurrentRound int

	Pot              int
	CurrentTurnIndex int

	// Rolling is true only during the in-flight delay of a roll resolution.
	Rolling bool

	IsFirstRoll       bool
	RoundRolls        int
	RoundRollSequence []int
	LastRollPlayerID  uuid.UUID

	// RoundEnded marks the intermission between rounds.
	RoundEnded      bool
	LastRoundReason string

	// PendingHeart is the set of player tokens owed a heart-save decision.
	// Non-empty only while a bust is being resolved.
	PendingHeart map[uuid.UUID]struct{}
	LastBust     *BustInfo

	Shop models.ShopConfig

	// NextStartIndex carries the rotation starting point into the next round:
	// the player after whoever rolled last.
	NextStartIndex int

	Mu sync.Mutex

	// rollGen invalidates pending roll resolutions. Bumped on round end, game
	// finish, restart and removal of the roller.
	rollGen       int
	bustSeq       int
	lastRollToken uuid.UUID

	clock   quartz.Clock
	rollDie func() int
	logger  *logrus.Logger

	// BroadcastFn sends an event to the given connections. Nil-safe.
	BroadcastFn func(connIDs []uuid.UUID, ev Event)

	// UnicastFn sends an event to a single connection. Nil-safe.
	UnicastFn func(connID uuid.UUID, ev Event)

	// OnEmpty is invoked (lock held) when the last player leaves, so the
	// registry can drop the room.
	OnEmpty func(roomID string)

	// OnKicked lets the transport detach and close a kicked connection.
	OnKicked func(connID uuid.UUID)

	// OnGameEnd receives a summary of a finished game for the history queue.
	OnGameEnd func(rec cache.GameSummaryRecord)
}

// NewRoom builds an empty room with the given code. The creator is added
// separately via AddPlayer.
func NewRoom(id string, totalRounds int, shop models.ShopConfig, clock quartz.Clock, logger *logrus.Logger) *Room {
	if totalRounds <= 0 {
		totalRounds = defaultTotalRounds
	}
	if totalRounds > maxTotalRounds {
		totalRounds = maxTotalRounds
	}
	shop.Normalize()
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = logrus.New()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Room{
		ID:          id,
		TotalRounds: totalRounds,
		IsFirstRoll: true,
		Shop:        shop,
		clock:       clock,
		rollDie:     func() int { return rng.Intn(6) + 1 },
		logger:      logger,
	}
}

// NewPlayer builds a player record bound to a connection. An empty token
// string mints a fresh stable token.
func NewPlayer(connID uuid.UUID, name, token string) *models.Player {
	tok, err := uuid.Parse(token)
	if err != nil || tok == uuid.Nil {
		tok = uuid.New()
	}
	return &models.Player{
		ConnID:    connID,
		Token:     tok,
		Name:      name,
		Connected: true,
	}
}

// AddPlayer appends a player to the rotation. Mid-game joiners stay
// ineligible until the next round starts. Assumes lock is held.
func (r *Room) AddPlayer(p *models.Player) {
	if len(r.Players) == 0 {
		r.HostID = p.ConnID
	}
	if r.RoundEnded {
		// Joined during intermission: parked like everyone else, and part of
		// the ready gate since they are connected.
		p.Banked = true
	}
	r.Players = append(r.Players, p)
	r.logger.WithField("room", r.ID).Infof("player %s joined (%d players)", p.Name, len(r.Players))
}

// HandleCommand routes one inbound command for a bound connection. It is the
// single mutating entry point used by the transport read loop. The room lock
// must be held by the caller.
func (r *Room) HandleCommand(connID uuid.UUID, cmd models.Command) {
	changed := false
	switch cmd.Type {
	case models.CmdStartGame:
		changed = r.handleStart(connID, false)
	case models.CmdRestartGame:
		changed = r.handleStart(connID, true)
	case models.CmdRoll:
		changed = r.handleRoll(connID)
	case models.CmdBank:
		changed = r.handleBank(connID)
	case models.CmdUseMultiplier:
		changed = r.handleUseMultiplier(connID)
	case models.CmdReady:
		changed = r.handleReady(connID)
	case models.CmdBuyItem:
		changed = r.handleBuy(connID, cmd.ItemID)
	case models.CmdHeartDecision:
		changed = r.handleHeartDecision(connID, cmd.UseHeart)
	case models.CmdKickPlayer:
		changed = r.handleKick(connID, cmd.PlayerID)
	case models.CmdLeaveRoom:
		r.handleLeave(connID)
		return // leave broadcasts (or tears down) itself
	case models.CmdChat:
		r.handleChat(connID, cmd.Message)
	}
	if changed {
		r.broadcastState()
	}
}

// handleStart begins a new game arc. Host-only. Start is valid from the
// lobby, restart any time after. Assumes lock is held.
func (r *Room) handleStart(connID uuid.UUID, restart bool) bool {
	if connID != r.HostID {
		r.sendError(connID, "only the host can start the game")
		return false
	}
	if !restart && r.Started && !r.Finished {
		return false
	}
	if restart && !r.Started {
		return false
	}
	if r.Rolling {
		r.rollGen++
		r.Rolling = false
	}

	for _, p := range r.Players {
		p.Score = 0
		p.Hearts = 0
		p.MultiplierCount = 0
		p.RoundHistory = nil
	}
	r.Started = true
	r.Finished = false
	r.CurrentRound = 1
	r.NextStartIndex = 0
	r.LastRollPlayerID = uuid.Nil
	r.lastRollToken = uuid.Nil
	r.LastBust = nil
	r.LastRoundReason = ""
	r.beginRound()
	r.logger.WithField("room", r.ID).Infof("game started: %d rounds, %d players", r.TotalRounds, len(r.Players))
	return true
}

// beginRound resets round-scoped state and seats the rotation at
// NextStartIndex. Assumes lock is held.
func (r *Room) beginRound() {
	r.rollGen++
	r.Rolling = false
	r.Pot = 0
	r.RoundEnded = false
	r.IsFirstRoll = true
	r.RoundRolls = 0
	r.RoundRollSequence = nil
	r.PendingHeart = nil

	for _, p := range r.Players {
		r.resetRoundScratch(p)
	}

	if idx, ok := r.seekActive(r.NextStartIndex); ok {
		r.CurrentTurnIndex = idx
	} else {
		r.CurrentTurnIndex = 0
	}
}

// resetRoundScratch arms a player for a fresh round. Only connected players
// become eligible. Assumes lock is held.
func (r *Room) resetRoundScratch(p *models.Player) {
	p.Eligible = p.Connected
	p.Banked = false
	p.Out = false
	p.OutReason = ""
	p.RoundPoints = 0
	p.RoundBankIndex = 0
	p.ReadyForNextRound = false
}

// handleBank lets any active player claim the current pot. Out-of-phase or
// ineligible banking is a silent no-op: the client UI is expected to have
// disabled the control. Assumes lock is held.
func (r *Room) handleBank(connID uuid.UUID) bool {
	if r.Rolling {
		r.sendError(connID, "a roll is in progress")
		return false
	}
	if !r.playActive() {
		return false
	}
	p, idx := r.playerByConn(connID)
	if p == nil || !p.Active() {
		return false
	}

	p.Score += r.Pot
	p.RoundPoints = r.Pot
	p.RoundBankIndex = r.nextBankIndex()
	p.Banked = true
	r.logger.WithField("room", r.ID).Infof("player %s banked %d (total %d)", p.Name, r.Pot, p.Score)

	if !r.anyActive() {
		r.endRound(RoundEndAllBanked)
		return true
	}
	if idx == r.CurrentTurnIndex {
		r.advanceTurn()
	}
	return true
}

// handleUseMultiplier doubles the shared pot. Deliberately allowed for any
// active player regardless of turn order. Assumes lock is held.
func (r *Room) handleUseMultiplier(connID uuid.UUID) bool {
	if r.Rolling {
		r.sendError(connID, "a roll is in progress")
		return false
	}
	if !r.playActive() {
		return false
	}
	p, _ := r.playerByConn(connID)
	if p == nil || !p.Active() || p.MultiplierCount <= 0 {
		return false
	}
	p.MultiplierCount--
	r.Pot *= 2
	r.logger.WithField("room", r.ID).Infof("player %s doubled the pot to %d", p.Name, r.Pot)
	return true
}

// handleBuy validates a shop purchase during intermission. Assumes lock is
// held.
func (r *Room) handleBuy(connID uuid.UUID, itemID string) bool {
	if !r.Started || r.Finished || !r.RoundEnded {
		return false
	}
	p, _ := r.playerByConn(connID)
	if p == nil {
		return false
	}

	var price int
	var owned *int
	var max int
	switch itemID {
	case models.ItemHeart:
		price, owned, max = r.Shop.HeartPrice, &p.Hearts, r.Shop.HeartMax
	case models.ItemMultiplier:
		price, owned, max = r.Shop.MultiplierPrice, &p.MultiplierCount, r.Shop.MultiplierMax
	default:
		r.sendError(connID, fmt.Sprintf("unknown shop item %q", itemID))
		return false
	}

	if *owned >= max {
		r.sendError(connID, fmt.Sprintf("you already own the maximum of %d", max))
		return false
	}
	if p.Score < price {
		r.sendError(connID, "not enough points")
		return false
	}
	p.Score -= price
	*owned++
	return true
}

// handleReady flags a player ready during intermission and starts the next
// round once every connected player is ready. Assumes lock is held.
func (r *Room) handleReady(connID uuid.UUID) bool {
	if !r.Started || r.Finished || !r.RoundEnded {
		return false
	}
	p, _ := r.playerByConn(connID)
	if p == nil || p.ReadyForNextRound {
		return false
	}
	p.ReadyForNextRound = true
	r.maybeStartNextRound()
	return true
}

// maybeStartNextRound re-evaluates the intermission gate. Called on ready,
// disconnect, leave and kick. Assumes lock is held.
func (r *Room) maybeStartNextRound() {
	if !r.RoundEnded {
		return
	}
	connected := 0
	for _, p := range r.Players {
		if p.Connected {
			connected++
			if !p.ReadyForNextRound {
				return
			}
		}
	}
	if connected == 0 {
		return
	}
	r.CurrentRound++
	r.logger.WithField("room", r.ID).Infof("round %d starting", r.CurrentRound)
	r.beginRound()
}

// endRound flushes round history, records the next rotation start, and moves
// the room into intermission or finishes the game. Idempotent per round.
// Assumes lock is held.
func (r *Room) endRound(reason string) {
	if !r.Started || r.Finished || r.RoundEnded {
		return
	}
	r.rollGen++
	r.Rolling = false
	r.PendingHeart = nil
	r.LastRoundReason = reason
	r.logger.WithField("room", r.ID).Infof("round %d ended: %s", r.CurrentRound, reason)

	for _, p := range r.Players {
		if !p.Eligible && !p.Banked && !p.Out {
			continue // joined mid-round, never participated
		}
		entry := models.RoundResult{
			Round:     r.CurrentRound,
			Points:    p.RoundPoints,
			Rolls:     append([]int(nil), r.RoundRollSequence...),
			BankIndex: p.RoundBankIndex,
		}
		p.RoundHistory = append(p.RoundHistory, entry)
		if len(p.RoundHistory) > maxRoundHistory {
			p.RoundHistory = p.RoundHistory[len(p.RoundHistory)-maxRoundHistory:]
		}
	}

	if idx := r.indexByToken(r.lastRollToken); idx >= 0 && len(r.Players) > 0 {
		r.NextStartIndex = (idx + 1) % len(r.Players)
	} else {
		r.NextStartIndex = 0
	}

	if r.CurrentRound >= r.TotalRounds {
		r.finishGame()
		return
	}

	// Intermission: everyone parked, shop open. Disconnected players are
	// pre-readied so they cannot block the next round.
	r.RoundEnded = true
	for _, p := range r.Players {
		p.Eligible = false
		p.Banked = true
		p.ReadyForNextRound = !p.Connected
	}
}

// finishGame closes the arc. Only a restart is accepted afterwards. Assumes
// lock is held.
func (r *Room) finishGame() {
	r.Finished = true
	r.RoundEnded = false
	r.Pot = 0
	r.rollGen++
	r.Rolling = false
	r.logger.WithField("room", r.ID).Info("game finished")

	if r.OnGameEnd != nil {
		rec := cache.GameSummaryRecord{
			RoomID:     r.ID,
			Rounds:     r.TotalRounds,
			FinishedAt: time.Now().UnixMilli(),
		}
		for _, p := range r.Players {
			rec.Results = append(rec.Results, cache.PlayerResult{
				Token:       p.Token,
				Name:        p.Name,
				Score:       p.Score,
				Hearts:      p.Hearts,
				Multipliers: p.MultiplierCount,
			})
		}
		r.OnGameEnd(rec)
	}
}

// currentPlayer returns the player the turn pointer rests on, or nil.
// Assumes lock is held.
func (r *Room) currentPlayer() *models.Player {
	if r.CurrentTurnIndex < 0 || r.CurrentTurnIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.CurrentTurnIndex]
}

// advanceTurn rotates to the next active player, ending the round when none
// remains. Assumes lock is held.
func (r *Room) advanceTurn() {
	if len(r.Players) == 0 {
		return
	}
	if idx, ok := r.seekActive((r.CurrentTurnIndex + 1) % len(r.Players)); ok {
		r.CurrentTurnIndex = idx
		return
	}
	r.endRound(RoundEndAllBanked)
}

// ensureValidTurn is idempotently callable after any join/leave/disconnect/
// kick that may have invalidated the turn pointer. Assumes lock is held.
func (r *Room) ensureValidTurn() {
	if !r.Started || r.Finished || r.RoundEnded || len(r.Players) == 0 {
		return
	}
	if cur := r.currentPlayer(); cur != nil && cur.Active() {
		return
	}
	start := r.CurrentTurnIndex
	if start < 0 || start >= len(r.Players) {
		start = 0
	}
	if idx, ok := r.seekActive(start); ok {
		r.CurrentTurnIndex = idx
		return
	}
	r.endRound(RoundEndAllBanked)
}

// seekActive finds the first active player at or after start, wrapping.
// Assumes lock is held.
func (r *Room) seekActive(start int) (int, bool) {
	n := len(r.Players)
	if n == 0 {
		return 0, false
	}
	start = ((start % n) + n) % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if r.Players[idx].Active() {
			return idx, true
		}
	}
	return 0, false
}

// playActive reports whether in-round game actions (roll, bank, multiplier)
// are currently accepted. Assumes lock is held.
func (r *Room) playActive() bool {
	return r.Started && !r.Finished && !r.RoundEnded && !r.Rolling && len(r.PendingHeart) == 0
}

func (r *Room) anyActive() bool {
	for _, p := range r.Players {
		if p.Active() {
			return true
		}
	}
	return false
}

// nextBankIndex returns the 1-based bank position for the next banker this
// round. Assumes lock is held.
func (r *Room) nextBankIndex() int {
	n := 1
	for _, p := range r.Players {
		if p.RoundBankIndex > 0 {
			n++
		}
	}
	return n
}

func (r *Room) playerByConn(connID uuid.UUID) (*models.Player, int) {
	for i, p := range r.Players {
		if p.ConnID == connID {
			return p, i
		}
	}
	return nil, -1
}

func (r *Room) playerByToken(token uuid.UUID) *models.Player {
	if idx := r.indexByToken(token); idx >= 0 {
		return r.Players[idx]
	}
	return nil
}

func (r *Room) indexByToken(token uuid.UUID) int {
	if token == uuid.Nil {
		return -1
	}
	for i, p := range r.Players {
		if p.Token == token {
			return i
		}
	}
	return -1
}

// sendError unicasts a transient error notice. Assumes lock is held.
func (r *Room) sendError(connID uuid.UUID, msg string) {
	if r.UnicastFn != nil {
		r.UnicastFn(connID, Event{Type: EventRoomError, Message: msg})
	}
}

// broadcastState projects the room into its redacted snapshot and pushes it
// to every live connection. Assumes lock is held.
func (r *Room) broadcastState() {
	if r.BroadcastFn == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Connected {
			ids = append(ids, p.ConnID)
		}
	}
	r.BroadcastFn(ids, Event{Type: EventRoomState, State: r.Snapshot()})
}

// handleChat relays a chat line. No game state is touched. Assumes lock is
// held.
func (r *Room) handleChat(connID uuid.UUID, msg string) {
	if msg == "" || r.BroadcastFn == nil {
		return
	}
	p, _ := r.playerByConn(connID)
	if p == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(r.Players))
	for _, pl := range r.Players {
		if pl.Connected {
			ids = append(ids, pl.ConnID)
		}
	}
	r.BroadcastFn(ids, Event{Type: EventRoomChat, From: p.Name, Message: msg})
}
