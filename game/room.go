package game

import (
	"encoding/json"
	"log/slog"
	"time"

	"flipgrid-server/config"
	"flipgrid-server/wsutil"
)

// ActionType enumerates the kinds of actions a room can process.
type ActionType int

const (
	ActionFlip     ActionType = iota
	ActionNewRound            // start a fresh scrambled grid after a solve
	ActionJoin                // seat a player; SeatReply receives the seat or -1
	ActionLeave               // vacate a seat; room shuts down when the last one leaves
)

// Action is one command sent into the room's action channel.
type Action struct {
	Type      ActionType
	PlayerIdx int
	Axis      Axis
	Index     int

	Player    *Player  // for ActionJoin
	SeatReply chan int // for ActionJoin: receives the assigned seat, -1 if full
}

// RoundPlayer is one seat's contribution to a finished round.
type RoundPlayer struct {
	UserID string
	Name   string
	Flips  int
}

// RoundResult describes a solved round for persistence.
type RoundResult struct {
	RoomID             string
	Rows               int
	Cols               int
	SuggestedFlipCount int
	PlayerFlipCount    int
	Score              int
	DurationSec        int
	Players            []RoundPlayer
}

// Room owns one grid and the seats playing it. All mutation happens inside
// Run, which consumes Actions one at a time, so handlers never overlap and
// the grid needs no locking.
type Room struct {
	ID          string
	RejoinToken string
	Grid        *Grid
	Config      *config.Config

	players        []*Player
	solved         bool
	roundStartedAt time.Time

	Actions chan Action
	Done    chan struct{}

	// OnRoundSolved is called when a round is solved; optional.
	OnRoundSolved func(res RoundResult)

	// OnEmpty is called once when the last seat leaves, just before the
	// room shuts down; optional.
	OnEmpty func(roomID string)
}

// NewRoom creates a room with a freshly scrambled grid.
func NewRoom(id, rejoinToken string, cfg *config.Config) *Room {
	g := NewGrid(cfg.GridRows, cfg.GridCols)
	g.Scramble()
	return &Room{
		ID:             id,
		RejoinToken:    rejoinToken,
		Grid:           g,
		Config:         cfg,
		roundStartedAt: time.Now(),
		Actions:        make(chan Action, 16),
		Done:           make(chan struct{}),
	}
}

// Run is the room's main loop. It processes actions sequentially and
// returns when the last player leaves. Should be run as a goroutine.
func (r *Room) Run() {
	defer close(r.Done)

	for action := range r.Actions {
		switch action.Type {
		case ActionJoin:
			r.handleJoin(action.Player, action.SeatReply)
		case ActionLeave:
			if r.handleLeave(action.PlayerIdx) {
				return
			}
		case ActionFlip:
			r.handleFlip(action.PlayerIdx, action.Axis, action.Index)
		case ActionNewRound:
			r.handleNewRound(action.PlayerIdx)
		}
	}
}

func (r *Room) handleJoin(p *Player, reply chan int) {
	seat := -1
	if r.seatCount() < r.Config.MaxPlayersPerRoom {
		for i, existing := range r.players {
			if existing == nil {
				seat = i
				r.players[i] = p
				break
			}
		}
		if seat == -1 {
			seat = len(r.players)
			r.players = append(r.players, p)
		}
	}
	if reply != nil {
		reply <- seat
	}
	if seat >= 0 {
		r.broadcastState()
	}
}

// handleLeave vacates a seat. Returns true when the room is now empty and
// should shut down; the grid is discarded with it.
func (r *Room) handleLeave(playerIdx int) bool {
	if playerIdx < 0 || playerIdx >= len(r.players) || r.players[playerIdx] == nil {
		return false
	}
	name := r.players[playerIdx].Name
	r.players[playerIdx] = nil

	if r.seatCount() == 0 {
		if r.OnEmpty != nil {
			r.OnEmpty(r.ID)
		}
		slog.Info("room empty, shutting down", "tag", "room", "room", r.ID)
		return true
	}

	r.broadcastPlayerLeft(name)
	r.broadcastState()
	return false
}

func (r *Room) handleFlip(playerIdx int, axis Axis, index int) {
	player := r.player(playerIdx)
	if player == nil {
		return
	}

	if r.solved {
		r.sendError(playerIdx, "The puzzle is already solved. Send new_round to play again.")
		return
	}

	if err := r.Grid.ApplyFlip(axis, index); err != nil {
		slog.Warn("rejected flip", "tag", "room", "room", r.ID, "err", err)
		r.sendError(playerIdx, "Invalid flip: "+err.Error())
		return
	}
	player.Flips++

	if r.Grid.IsSolved() {
		r.solved = true
		r.broadcastState()
		r.broadcastRoundSolved()
		r.finishRound()
		return
	}

	r.broadcastState()
}

// handleNewRound replaces the solved grid with a freshly scrambled one and
// resets all flip tallies. Rejected while a round is still in progress.
func (r *Room) handleNewRound(playerIdx int) {
	if !r.solved {
		r.sendError(playerIdx, "The current round is still in progress.")
		return
	}

	g := NewGrid(r.Config.GridRows, r.Config.GridCols)
	g.Scramble()
	r.Grid = g
	r.solved = false
	r.roundStartedAt = time.Now()
	for _, p := range r.players {
		if p != nil {
			p.Flips = 0
		}
	}
	r.broadcastState()
}

// finishRound reports the solved round to OnRoundSolved.
func (r *Room) finishRound() {
	if r.OnRoundSolved == nil {
		return
	}
	res := RoundResult{
		RoomID:             r.ID,
		Rows:               r.Grid.Rows,
		Cols:               r.Grid.Cols,
		SuggestedFlipCount: r.Grid.SuggestedFlipCount,
		PlayerFlipCount:    r.Grid.PlayerFlipCount,
		Score:              Score(r.Grid.PlayerFlipCount, r.Grid.SuggestedFlipCount, r.Config.ExtraFlipAllowance),
		DurationSec:        int(time.Since(r.roundStartedAt).Seconds()),
	}
	for _, p := range r.players {
		if p != nil {
			res.Players = append(res.Players, RoundPlayer{UserID: p.UserID, Name: p.Name, Flips: p.Flips})
		}
	}
	r.OnRoundSolved(res)
}

func (r *Room) player(idx int) *Player {
	if idx < 0 || idx >= len(r.players) {
		return nil
	}
	return r.players[idx]
}

func (r *Room) seatCount() int {
	n := 0
	for _, p := range r.players {
		if p != nil {
			n++
		}
	}
	return n
}

func (r *Room) sendError(playerIdx int, message string) {
	player := r.player(playerIdx)
	if player == nil || player.Send == nil {
		return
	}
	msg := map[string]string{
		"type":    "error",
		"message": message,
	}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(player.Send, data)
}

func (r *Room) broadcastState() {
	state := BuildGridState(r.Grid, r.players, r.solved)
	data, err := json.Marshal(state)
	if err != nil {
		slog.Error("marshaling grid state", "tag", "room", "err", err)
		return
	}
	r.broadcast(data)
}

func (r *Room) broadcastRoundSolved() {
	msg := RoundSolvedMsg{
		Type:               "round_solved",
		Score:              Score(r.Grid.PlayerFlipCount, r.Grid.SuggestedFlipCount, r.Config.ExtraFlipAllowance),
		PlayerFlipCount:    r.Grid.PlayerFlipCount,
		SuggestedFlipCount: r.Grid.SuggestedFlipCount,
	}
	data, _ := json.Marshal(msg)
	r.broadcast(data)
}

func (r *Room) broadcastPlayerLeft(name string) {
	msg := map[string]string{
		"type": "player_left",
		"name": name,
	}
	data, _ := json.Marshal(msg)
	r.broadcast(data)
}

func (r *Room) broadcast(data []byte) {
	for _, p := range r.players {
		if p != nil && p.Send != nil {
			wsutil.SafeSend(p.Send, data)
		}
	}
}
