// internal/handlers/room_server.go
package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bankroll-games/bankroll/internal/cache"
	"github.com/bankroll-games/bankroll/internal/game"
	"github.com/bankroll-games/bankroll/internal/models"
)

// RoomServer owns the room registry and the connection table. It wires each
// new room with the transport callbacks (broadcast, unicast, kick, teardown)
// so the game package never touches a websocket directly.
type RoomServer struct {
	Rooms  *game.RoomStore
	Logger *logrus.Logger
	Clock  quartz.Clock

	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
}

func NewRoomServer(logger *logrus.Logger) *RoomServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &RoomServer{
		Rooms:  game.NewRoomStore(),
		Logger: logger,
		Clock:  quartz.NewReal(),
		conns:  make(map[uuid.UUID]*websocket.Conn),
	}
}

// registerConn adds a live connection to the table under a fresh id.
func (rs *RoomServer) registerConn(c *websocket.Conn) uuid.UUID {
	connID := uuid.New()
	rs.mu.Lock()
	rs.conns[connID] = c
	rs.mu.Unlock()
	return connID
}

func (rs *RoomServer) detachConn(connID uuid.UUID) {
	rs.mu.Lock()
	delete(rs.conns, connID)
	rs.mu.Unlock()
}

func (rs *RoomServer) connByID(connID uuid.UUID) *websocket.Conn {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.conns[connID]
}

// CreateRoom builds a fresh room from a room:create command, wires it and
// admits the creator as host. Returns the room and the creator's record.
func (rs *RoomServer) CreateRoom(connID uuid.UUID, cmd models.Command) (*game.Room, *models.Player) {
	if strings.TrimSpace(cmd.Name) == "" {
		rs.sendEvent(connID, game.Event{Type: game.EventRoomError, Message: "name is required"})
		return nil, nil
	}
	shop := models.DefaultShopConfig()
	if cmd.Shop != nil {
		shop = *cmd.Shop
	}
	code := rs.Rooms.NewCode()
	r := game.NewRoom(code, cmd.TotalRounds, shop, rs.Clock, rs.Logger)
	rs.wireRoom(r)

	// Admit the creator before the room becomes visible in the registry so
	// a registered room always has at least one player.
	r.Mu.Lock()
	p := r.JoinPlayer(connID, cmd.Name, cmd.Token)
	r.Mu.Unlock()
	rs.Rooms.Add(r)

	rs.Logger.Infof("room %s created by %s", code, p.Name)
	return r, p
}

// JoinRoom resolves the room code and admits the connection, either as a new
// player or by re-binding an existing token. reconnectOnly rejects unknown
// tokens instead of creating a new player.
func (rs *RoomServer) JoinRoom(connID uuid.UUID, cmd models.Command, reconnectOnly bool) (*game.Room, *models.Player) {
	code := strings.ToUpper(strings.TrimSpace(cmd.RoomID))
	r, ok := rs.Rooms.Get(code)
	if !ok {
		rs.sendEvent(connID, game.Event{Type: game.EventRoomError, Message: "room not found"})
		return nil, nil
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if reconnectOnly {
		p := r.Rebind(connID, cmd.Token)
		if p == nil {
			rs.sendEvent(connID, game.Event{Type: game.EventRoomError, Message: "unknown reconnect token"})
			return nil, nil
		}
		return r, p
	}
	// A known token re-binds without needing a name; a fresh join must carry one.
	if p := r.Rebind(connID, cmd.Token); p != nil {
		return r, p
	}
	if strings.TrimSpace(cmd.Name) == "" {
		rs.sendEvent(connID, game.Event{Type: game.EventRoomError, Message: "name is required"})
		return nil, nil
	}
	return r, r.JoinPlayer(connID, cmd.Name, cmd.Token)
}

// wireRoom installs the transport callbacks on a freshly created room. All of
// them are invoked with the room lock held, so writes happen off-goroutine.
func (rs *RoomServer) wireRoom(r *game.Room) {
	r.BroadcastFn = func(connIDs []uuid.UUID, ev game.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			rs.Logger.Errorf("failed to marshal broadcast event (%s) for room %s: %v", ev.Type, r.ID, err)
			return
		}
		conns := make([]*websocket.Conn, 0, len(connIDs))
		rs.mu.Lock()
		for _, id := range connIDs {
			if c := rs.conns[id]; c != nil {
				conns = append(conns, c)
			}
		}
		rs.mu.Unlock()

		go func() {
			for _, c := range conns {
				writeConn(c, data, rs.Logger)
			}
		}()
	}

	r.UnicastFn = func(connID uuid.UUID, ev game.Event) {
		rs.sendEvent(connID, ev)
	}

	r.OnEmpty = func(roomID string) {
		rs.Rooms.Delete(roomID)
		rs.Logger.Infof("room %s is empty, deleted", roomID)
	}

	r.OnKicked = func(connID uuid.UUID) {
		c := rs.connByID(connID)
		rs.detachConn(connID)
		if c != nil {
			go c.Close(KickedByHost, "removed from room by host")
		}
	}

	r.OnGameEnd = func(rec cache.GameSummaryRecord) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cache.PublishGameSummary(ctx, rec); err != nil {
				rs.Logger.Warnf("failed to publish game summary for room %s: %v", rec.RoomID, err)
			}
		}()
	}
}

// sendEvent marshals and asynchronously delivers one event to one connection.
func (rs *RoomServer) sendEvent(connID uuid.UUID, ev game.Event) {
	c := rs.connByID(connID)
	if c == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		rs.Logger.Errorf("failed to marshal event (%s): %v", ev.Type, err)
		return
	}
	go writeConn(c, data, rs.Logger)
}

// writeConn performs one bounded write. Failures are logged and otherwise
// ignored; the read loop detects dead connections.
func writeConn(c *websocket.Conn, data []byte, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			logger.Warnf("websocket write failed: %v", err)
		}
	}
}
