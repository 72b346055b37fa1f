// internal/handlers/room_server_test.go
package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankroll-games/bankroll/internal/models"
)

func newTestServer() *RoomServer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRoomServer(logger)
}

func TestCreateRoomRegistersPopulatedRoom(t *testing.T) {
	rs := newTestServer()
	connID := uuid.New()

	room, p := rs.CreateRoom(connID, models.Command{Type: models.CmdCreateRoom, Name: "host"})
	require.NotNil(t, room)
	require.NotNil(t, p)

	got, ok := rs.Rooms.Get(room.ID)
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.Len(t, got.Players, 1, "a registered room is never empty")
	assert.Equal(t, connID, got.HostID)
}

func TestCreateRoomWithoutNameRejected(t *testing.T) {
	rs := newTestServer()

	room, p := rs.CreateRoom(uuid.New(), models.Command{Type: models.CmdCreateRoom})
	assert.Nil(t, room)
	assert.Nil(t, p)
	assert.Equal(t, 0, rs.Rooms.Count(), "a rejected create leaves no room behind")
}

func TestJoinUnknownRoomRejected(t *testing.T) {
	rs := newTestServer()

	room, p := rs.JoinRoom(uuid.New(), models.Command{Type: models.CmdJoinRoom, RoomID: "ZZZZ", Name: "guest"}, false)
	assert.Nil(t, room)
	assert.Nil(t, p)
}

func TestJoinAndReconnectRoundTrip(t *testing.T) {
	rs := newTestServer()
	hostConn := uuid.New()
	room, host := rs.CreateRoom(hostConn, models.Command{Type: models.CmdCreateRoom, Name: "host"})
	require.NotNil(t, room)

	guestConn := uuid.New()
	_, guest := rs.JoinRoom(guestConn, models.Command{Type: models.CmdJoinRoom, RoomID: room.ID, Name: "guest"}, false)
	require.NotNil(t, guest)
	assert.Len(t, room.Players, 2)

	// Reconnect with the guest's token re-binds instead of adding a seat.
	room.HandleDisconnect(guestConn)
	newConn := uuid.New()
	_, back := rs.JoinRoom(newConn, models.Command{Type: models.CmdReconnect, RoomID: room.ID, Token: guest.Token.String()}, true)
	require.NotNil(t, back)
	assert.Same(t, guest, back)
	assert.Equal(t, newConn, back.ConnID)
	assert.Len(t, room.Players, 2)

	// An unknown token is refused outright on reconnect.
	_, stranger := rs.JoinRoom(uuid.New(), models.Command{Type: models.CmdReconnect, RoomID: room.ID, Token: uuid.New().String()}, true)
	assert.Nil(t, stranger)
	assert.Equal(t, hostConn, host.ConnID)
}
