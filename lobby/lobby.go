package lobby

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"flipgrid-server/config"
	"flipgrid-server/game"
	"flipgrid-server/sessionerrors"
	"flipgrid-server/storage"
	"flipgrid-server/ws"
	"flipgrid-server/wsutil"
)

const persistTimeout = 5 * time.Second

// Lobby assigns players to rooms: the first open room with a free seat, or
// a new one. Rooms remove themselves from the registry when the last player
// leaves.
type Lobby struct {
	cfg   *config.Config
	store storage.RoundStore

	mu    sync.Mutex
	rooms map[string]*game.Room
}

// New creates a Lobby. store may be nil (no persistence).
func New(cfg *config.Config, store storage.RoundStore) *Lobby {
	return &Lobby{
		cfg:   cfg,
		rooms: make(map[string]*game.Room),
		store: store,
	}
}

// Join seats the client in a room, creating one when every live room is
// full. On success the client's Room and PlayerID are set and a room_joined
// message is queued.
func (l *Lobby) Join(c *ws.Client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	player := game.NewPlayer(c.Name, c.UserID, c.Send)

	for _, room := range l.rooms {
		if seat := tryJoin(room, player); seat >= 0 {
			l.seated(c, room, seat)
			return
		}
	}

	room := game.NewRoom(uuid.NewString(), uuid.NewString(), l.cfg)
	// Detached so the room goroutine never blocks on the lobby mutex while
	// a Join holds it.
	room.OnEmpty = func(id string) { go l.removeRoom(id) }
	room.OnRoundSolved = l.persistRound
	l.rooms[room.ID] = room
	go room.Run()

	slog.Info("room created", "tag", "lobby",
		"room", room.ID, "rows", l.cfg.GridRows, "cols", l.cfg.GridCols,
		"suggestedFlips", room.Grid.SuggestedFlipCount)

	seat := tryJoin(room, player)
	if seat < 0 {
		// Freshly created room cannot be full; treat as a closed room.
		slog.Error("seat refused on new room", "tag", "lobby", "room", room.ID)
		return
	}
	l.seated(c, room, seat)
}

// Rejoin re-seats a client in a specific live room, validating the rejoin
// token handed out at first join.
func (l *Lobby) Rejoin(roomID, rejoinToken string, c *ws.Client) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	room, ok := l.rooms[roomID]
	if !ok {
		return sessionerrors.ErrRoomNotFound
	}
	if room.RejoinToken != rejoinToken {
		return sessionerrors.ErrInvalidToken
	}

	player := game.NewPlayer(c.Name, c.UserID, c.Send)
	seat := tryJoin(room, player)
	if seat < 0 {
		select {
		case <-room.Done:
			return sessionerrors.ErrRoomClosed
		default:
			return sessionerrors.ErrRoomFull
		}
	}
	l.seated(c, room, seat)
	return nil
}

// tryJoin asks the room loop for a seat. Returns -1 when the room is full
// or already shut down.
func tryJoin(room *game.Room, p *game.Player) int {
	reply := make(chan int, 1)
	action := game.Action{Type: game.ActionJoin, Player: p, SeatReply: reply}
	select {
	case room.Actions <- action:
	case <-room.Done:
		return -1
	}
	// The room may shut down with the join still queued.
	select {
	case seat := <-reply:
		return seat
	case <-room.Done:
		return -1
	}
}

func (l *Lobby) seated(c *ws.Client, room *game.Room, seat int) {
	c.Room = room
	c.PlayerID = seat

	slog.Info("player seated", "tag", "lobby", "room", room.ID, "name", c.Name, "seat", seat)

	msg := ws.RoomJoinedMsg{
		Type:               "room_joined",
		RoomID:             room.ID,
		RejoinToken:        room.RejoinToken,
		Rows:               l.cfg.GridRows,
		Cols:               l.cfg.GridCols,
		SuggestedFlipCount: room.Grid.SuggestedFlipCount,
		MaxPlayers:         l.cfg.MaxPlayersPerRoom,
	}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}

// removeRoom is installed as Room.OnEmpty; it runs on the room goroutine.
func (l *Lobby) removeRoom(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, roomID)
}

// persistRound is installed as Room.OnRoundSolved; the write happens off
// the room goroutine so a slow database never stalls play.
func (l *Lobby) persistRound(res game.RoundResult) {
	if l.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := l.store.InsertRoundResult(ctx, res); err != nil {
			slog.Error("persisting round", "tag", "lobby", "room", res.RoomID, "err", err)
		}
	}()
}

// RoomCount reports the number of live rooms.
func (l *Lobby) RoomCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
