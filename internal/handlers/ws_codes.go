// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes. These provide more specific reasons for
// closure than standard codes.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	KickedByHost        websocket.StatusCode = 3001 // Connection was removed from its room by the host.
)
