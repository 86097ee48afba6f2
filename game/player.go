package game

// Player is one seat in a room. Send references the owning client's send
// channel; UserID is empty for anonymous players.
type Player struct {
	Name   string
	UserID string
	Flips  int
	Send   chan []byte
}

// NewPlayer creates a new Player with the given name and send channel.
func NewPlayer(name, userID string, send chan []byte) *Player {
	return &Player{Name: name, UserID: userID, Send: send}
}
