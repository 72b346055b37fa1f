// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bankroll-games/bankroll/internal/game"
	"github.com/bankroll-games/bankroll/internal/middleware"
	"github.com/bankroll-games/bankroll/internal/models"
)

// RoomWSHandler upgrades the HTTP connection to WebSocket and runs the
// command loop. One connection maps to at most one room at a time; the room
// binding is established by room:create, room:join or room:reconnect.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"bankroll"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "bankroll" {
			logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'bankroll' subprotocol.")
			return
		}

		connID := rs.registerConn(c)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, connID.String())

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		boundRoom := readRoomMessages(ctx, c, rs, connID, logger)

		// Read loop exited: the player record survives for reconnect, the
		// connection does not.
		if boundRoom != nil {
			boundRoom.HandleDisconnect(connID)
		}
		rs.detachConn(connID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, connID.String(), nil)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readRoomMessages is the per-connection command loop. It returns the room
// the connection was bound to when the loop exited, or nil.
func readRoomMessages(ctx context.Context, c *websocket.Conn, rs *RoomServer, connID uuid.UUID, logger *logrus.Logger) *game.Room {
	var cur *game.Room

	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for conn %s.", connID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for conn %s.", connID)
			} else {
				logger.Warnf("Error reading from WebSocket for conn %s: %v (Status: %d)", connID, err, status)
			}
			return cur
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from conn %s. Ignoring.", msgType, connID)
			continue
		}

		var cmd models.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Warnf("Invalid JSON from conn %s: %v. Data: %s", connID, err, string(data))
			sendWsError(c, "invalid JSON")
			continue
		}
		if !cmd.Type.Known() {
			sendWsError(c, fmt.Sprintf("unknown command type: %s", cmd.Type))
			continue
		}

		logger.Debugf("Received command '%s' from conn %s.", cmd.Type, connID)

		switch cmd.Type {
		case models.CmdPing:
			sendWsMessage(c, map[string]string{"type": "pong"})

		case models.CmdCreateRoom:
			if cur != nil {
				sendWsError(c, "already in a room")
				continue
			}
			room, p := rs.CreateRoom(connID, cmd)
			if room == nil {
				continue // error already sent
			}
			cur = room
			rs.sendEvent(connID, game.Event{
				Type:   game.EventRoomJoined,
				RoomID: room.ID,
				Token:  p.Token.String(),
			})

		case models.CmdJoinRoom, models.CmdReconnect:
			if cur != nil {
				sendWsError(c, "already in a room")
				continue
			}
			room, p := rs.JoinRoom(connID, cmd, cmd.Type == models.CmdReconnect)
			if room == nil {
				continue // error already sent
			}
			cur = room
			rs.sendEvent(connID, game.Event{
				Type:   game.EventRoomJoined,
				RoomID: room.ID,
				Token:  p.Token.String(),
			})

		default:
			if cur == nil {
				sendWsError(c, "not in a room")
				continue
			}
			cur.Mu.Lock()
			cur.HandleCommand(connID, cmd)
			cur.Mu.Unlock()
			if cmd.Type == models.CmdLeaveRoom {
				cur = nil
			}
		}
	}
}

// sendWsMessage marshals a message and sends it with a bounded write.
func sendWsMessage(c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	writeConn(c, data, logrus.StandardLogger())
}

// sendWsError sends a transient error notice to the client.
func sendWsError(c *websocket.Conn, errorMsg string) {
	sendWsMessage(c, map[string]interface{}{
		"type":    string(game.EventRoomError),
		"message": errorMsg,
	})
}
