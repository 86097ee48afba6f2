package game

// PlayerView is the client-facing representation of a seat.
type PlayerView struct {
	Name  string `json:"name"`
	Flips int    `json:"flips"`
}

// GridStateMsg is the full room state broadcast after every accepted
// command. Flipped is row-major; the presenter shows a tile face-up iff its
// flag is true.
type GridStateMsg struct {
	Type               string       `json:"type"`
	Rows               int          `json:"rows"`
	Cols               int          `json:"cols"`
	Flipped            [][]bool     `json:"flipped"`
	SuggestedFlipCount int          `json:"suggestedFlipCount"`
	PlayerFlipCount    int          `json:"playerFlipCount"`
	Players            []PlayerView `json:"players"`
	Solved             bool         `json:"solved"`
}

// RoundSolvedMsg congratulates the room when the grid returns to the
// all-unflipped state.
type RoundSolvedMsg struct {
	Type               string `json:"type"`
	Score              int    `json:"score"`
	PlayerFlipCount    int    `json:"playerFlipCount"`
	SuggestedFlipCount int    `json:"suggestedFlipCount"`
}

// BuildGridState constructs the broadcast view. The flag matrix is copied
// so a queued message cannot observe later mutation.
func BuildGridState(g *Grid, players []*Player, solved bool) GridStateMsg {
	flipped := make([][]bool, g.Rows)
	for r := range g.Flipped {
		flipped[r] = append([]bool(nil), g.Flipped[r]...)
	}

	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		if p != nil {
			views = append(views, PlayerView{Name: p.Name, Flips: p.Flips})
		}
	}

	return GridStateMsg{
		Type:               "grid_state",
		Rows:               g.Rows,
		Cols:               g.Cols,
		Flipped:            flipped,
		SuggestedFlipCount: g.SuggestedFlipCount,
		PlayerFlipCount:    g.PlayerFlipCount,
		Players:            views,
		Solved:             solved,
	}
}
