// internal/models/command.go
package models

// CommandType enumerates every inbound message the room state machine
// accepts. The set is closed: unknown types are rejected at the transport
// layer before they reach a room.
type CommandType string

const (
	CmdCreateRoom    CommandType = "room:create"
	CmdJoinRoom      CommandType = "room:join"
	CmdReconnect     CommandType = "room:reconnect"
	CmdLeaveRoom     CommandType = "room:leave"
	CmdKickPlayer    CommandType = "room:kick"
	CmdChat          CommandType = "room:chat"
	CmdStartGame     CommandType = "game:start"
	CmdRestartGame   CommandType = "game:restart"
	CmdRoll          CommandType = "game:roll"
	CmdBank          CommandType = "game:bank"
	CmdUseMultiplier CommandType = "game:useMultiplier"
	CmdReady         CommandType = "game:ready"
	CmdHeartDecision CommandType = "game:heartDecision"
	CmdBuyItem       CommandType = "shop:buy"
	CmdPing          CommandType = "ping"
)

// Command is the decoded form of one inbound websocket message. Only the
// fields relevant to Type are populated; everything else stays zero.
type Command struct {
	Type CommandType `json:"type"`

	// room:create / room:join / room:reconnect
	RoomID      string      `json:"roomId,omitempty"`
	Name        string      `json:"name,omitempty"`
	Token       string      `json:"token,omitempty"`
	TotalRounds int         `json:"totalRounds,omitempty"`
	Shop        *ShopConfig `json:"shop,omitempty"`

	// room:kick
	PlayerID string `json:"playerId,omitempty"`

	// shop:buy
	ItemID string `json:"itemId,omitempty"`

	// game:heartDecision
	UseHeart bool `json:"useHeart,omitempty"`

	// room:chat
	Message string `json:"message,omitempty"`
}

// Known reports whether the command type is part of the closed set.
func (t CommandType) Known() bool {
	switch t {
	case CmdCreateRoom, CmdJoinRoom, CmdReconnect, CmdLeaveRoom, CmdKickPlayer,
		CmdChat, CmdStartGame, CmdRestartGame, CmdRoll, CmdBank,
		CmdUseMultiplier, CmdReady, CmdHeartDecision, CmdBuyItem, CmdPing:
		return true
	}
	return false
}
