package ws

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"flipgrid-server/auth"
	"flipgrid-server/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Name     string
	UserID   string
	Room     *game.Room
	PlayerID int // seat index within the room
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "auth":
		c.handleAuth(envelope.Raw)
	case "set_name":
		c.handleSetName(envelope.Raw)
	case "flip":
		c.handleFlip(envelope.Raw)
	case "new_round":
		c.handleNewRound()
	case "rejoin":
		c.handleRejoin(envelope.Raw)
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid auth message.")
		return
	}

	if c.Hub.Config.AuthBaseURL == "" {
		c.sendError("Server auth not configured.")
		return
	}

	claims, err := auth.ValidateToken(c.Hub.Config.AuthBaseURL, msg.Token)
	if err != nil {
		log.Printf("Auth: token rejected: %v", err)
		c.sendError("Invalid token.")
		return
	}
	c.UserID = auth.UserIDFromClaims(claims)
	if c.Name == "" {
		c.Name = auth.DisplayNameFromClaims(claims)
	}
}

func (c *Client) handleSetName(raw json.RawMessage) {
	var msg SetNameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid set_name message.")
		return
	}

	// Validate name length
	if len(msg.Name) < 1 || len(msg.Name) > c.Hub.Config.MaxNameLength {
		c.sendError("Name must be between 1 and " + strconv.Itoa(c.Hub.Config.MaxNameLength) + " characters.")
		return
	}

	// Cannot change name while seated
	if c.Room != nil {
		c.sendError("Cannot change name while in a room.")
		return
	}

	c.Name = msg.Name

	// Seat the player in an open room (or a new one)
	c.Hub.Lobby.Join(c)
}

// handleFlip decodes and validates the flip command at the boundary. The
// axis string is parsed into a typed game.Axis before anything reaches the
// room; an unrecognized axis is rejected here and no grid state changes.
func (c *Client) handleFlip(raw json.RawMessage) {
	if c.Room == nil {
		c.sendError("You are not in a room.")
		return
	}

	var msg FlipMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid flip message.")
		return
	}

	axis, err := game.ParseAxis(msg.Axis)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.Room.Actions <- game.Action{
		Type:      game.ActionFlip,
		PlayerIdx: c.PlayerID,
		Axis:      axis,
		Index:     msg.Index,
	}
}

func (c *Client) handleNewRound() {
	if c.Room == nil {
		c.sendError("You are not in a room.")
		return
	}

	c.Room.Actions <- game.Action{
		Type:      game.ActionNewRound,
		PlayerIdx: c.PlayerID,
	}
}

func (c *Client) handleRejoin(raw json.RawMessage) {
	var msg RejoinMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid rejoin message.")
		return
	}

	if c.Room != nil {
		c.sendError("Already in a room.")
		return
	}
	if msg.Name != "" {
		c.Name = msg.Name
	}

	if err := c.Hub.Lobby.Rejoin(msg.RoomID, msg.RejoinToken, c); err != nil {
		c.sendError("Rejoin failed: " + err.Error())
		return
	}
}

func (c *Client) sendError(message string) {
	msg := ErrorMsg{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	select {
	case c.Send <- data:
	default:
	}
}
