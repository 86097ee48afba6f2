package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"flipgrid-server/config"
	"flipgrid-server/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LobbyInterface defines what the Hub needs from the Lobby.
type LobbyInterface interface {
	// Join seats the client in an open room, creating one if needed. On
	// success it sets the client's Room and PlayerID and sends room_joined.
	Join(c *Client)
	// Rejoin re-seats the client in a specific live room after a reconnect.
	Rejoin(roomID, rejoinToken string, c *Client) error
}

// Hub maintains the set of active clients and routes lifecycle events.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Lobby      LobbyInterface
	Config     *config.Config
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, lobby LobbyInterface) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Lobby:      lobby,
		Config:     cfg,
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled (e.g. on server shutdown), Run returns and no longer
// accepts new registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Print("Hub: shutdown signal received, stopping")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			log.Printf("Client connected. Total clients: %d", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				log.Printf("Client disconnected. Total clients: %d", len(h.Clients))

				// Vacate the client's seat; the room shuts down on its own
				// when the last seat empties.
				if client.Room != nil {
					select {
					case client.Room.Actions <- game.Action{
						Type:      game.ActionLeave,
						PlayerIdx: client.PlayerID,
					}:
					case <-client.Room.Done:
					}
				}
			}
		}
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
