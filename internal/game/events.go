// internal/game/events.go
package game

// EventType is an enum-like type for outbound room messages.
type EventType string

const (
	// EventRoomState carries a full redacted snapshot, broadcast to every
	// connection in the room after each state-affecting command.
	EventRoomState EventType = "room:state"

	// EventRoomError is a unicast transient error notice.
	EventRoomError EventType = "room:error"

	// EventKicked is unicast to a removed connection only.
	EventKicked EventType = "kicked"

	// EventRoomChat relays a chat line to the room.
	EventRoomChat EventType = "room:chat"

	// EventRoomJoined is unicast to a connection that created, joined or
	// reconnected to a room. It is the only message that carries the
	// reconnection token.
	EventRoomJoined EventType = "room:joined"
)

// Event is the envelope for everything the room pushes to clients.
type Event struct {
	Type    EventType  `json:"type"`
	Message string     `json:"message,omitempty"`
	From    string     `json:"from,omitempty"`
	RoomID  string     `json:"roomId,omitempty"`
	Token   string     `json:"token,omitempty"`
	State   *RoomState `json:"state,omitempty"`
}
