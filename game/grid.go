package game

import (
	"fmt"
	"math/rand"
)

// Axis selects which line of the grid a flip toggles.
type Axis int

const (
	AxisRow Axis = iota
	AxisCol
	AxisDiagonal
)

// String returns the protocol string for an Axis.
func (a Axis) String() string {
	switch a {
	case AxisRow:
		return "ROW"
	case AxisCol:
		return "COL"
	case AxisDiagonal:
		return "DIAGONAL"
	default:
		return "unknown"
	}
}

// ParseAxis maps a protocol string onto an Axis. Anything outside
// ROW/COL/DIAGONAL yields an *AxisError naming the rejected value.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "ROW":
		return AxisRow, nil
	case "COL":
		return AxisCol, nil
	case "DIAGONAL":
		return AxisDiagonal, nil
	default:
		return 0, &AxisError{Value: s}
	}
}

// AxisError reports a flip command whose axis is not ROW, COL or DIAGONAL.
type AxisError struct {
	Value string
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("invalid axis %q", e.Value)
}

// IndexError reports a row or column index outside the grid.
type IndexError struct {
	Axis  Axis
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.Axis, e.Index, e.Limit)
}

// FlipOp is a single recorded line flip. Index is ignored for AxisDiagonal.
type FlipOp struct {
	Axis  Axis
	Index int
}

// Grid is the puzzle state: a rows x cols matrix of flipped flags.
// The grid is solved when no cell is flipped.
type Grid struct {
	Rows    int
	Cols    int
	Flipped [][]bool

	// SuggestedFlipCount is the number of scramble ops that fired at round
	// start; it is the par baseline for scoring.
	SuggestedFlipCount int

	// PlayerFlipCount counts every accepted flip command, whatever its axis.
	PlayerFlipCount int
}

// NewGrid creates an all-unflipped rows x cols grid. Call Scramble to turn
// it into a playable starting position.
func NewGrid(rows, cols int) *Grid {
	flipped := make([][]bool, rows)
	for r := range flipped {
		flipped[r] = make([]bool, cols)
	}
	return &Grid{Rows: rows, Cols: cols, Flipped: flipped}
}

// Scramble randomizes the grid: each row flips with probability 0.5, then
// each column, then the diagonal. Every op that fires increments
// SuggestedFlipCount. The fired ops are returned in order; each flip is its
// own inverse, so reapplying them returns the grid to the solved state.
func (g *Grid) Scramble() []FlipOp {
	var ops []FlipOp
	for r := 0; r < g.Rows; r++ {
		if rand.Float64() < 0.5 {
			g.flipRow(r)
			ops = append(ops, FlipOp{Axis: AxisRow, Index: r})
		}
	}
	for c := 0; c < g.Cols; c++ {
		if rand.Float64() < 0.5 {
			g.flipCol(c)
			ops = append(ops, FlipOp{Axis: AxisCol, Index: c})
		}
	}
	if rand.Float64() < 0.5 {
		g.flipDiagonal()
		ops = append(ops, FlipOp{Axis: AxisDiagonal})
	}
	g.SuggestedFlipCount += len(ops)
	return ops
}

// ApplyFlip toggles one line of the grid and counts the flip. Validation
// happens before any cell is touched: an invalid axis or index leaves the
// grid and PlayerFlipCount exactly as they were.
func (g *Grid) ApplyFlip(axis Axis, index int) error {
	switch axis {
	case AxisRow:
		if index < 0 || index >= g.Rows {
			return &IndexError{Axis: axis, Index: index, Limit: g.Rows}
		}
		g.flipRow(index)
	case AxisCol:
		if index < 0 || index >= g.Cols {
			return &IndexError{Axis: axis, Index: index, Limit: g.Cols}
		}
		g.flipCol(index)
	case AxisDiagonal:
		// index is ignored for diagonal flips
		g.flipDiagonal()
	default:
		return &AxisError{Value: axis.String()}
	}
	g.PlayerFlipCount++
	return nil
}

// Apply replays a recorded op.
func (g *Grid) Apply(op FlipOp) error {
	return g.ApplyFlip(op.Axis, op.Index)
}

func (g *Grid) flipRow(r int) {
	for c := 0; c < g.Cols; c++ {
		g.Flipped[r][c] = !g.Flipped[r][c]
	}
}

func (g *Grid) flipCol(c int) {
	for r := 0; r < g.Rows; r++ {
		g.Flipped[r][c] = !g.Flipped[r][c]
	}
}

// flipDiagonal toggles the anti-diagonal, cells [n-1-i][i]. The main
// diagonal ([i][i]) is not supported.
func (g *Grid) flipDiagonal() {
	n := g.Rows
	if g.Cols < n {
		n = g.Cols
	}
	for i := 0; i < n; i++ {
		g.Flipped[g.Rows-1-i][i] = !g.Flipped[g.Rows-1-i][i]
	}
}

// IsSolved reports whether every cell is back to unflipped. It stops at the
// first flipped cell.
func (g *Grid) IsSolved() bool {
	for _, row := range g.Flipped {
		for _, f := range row {
			if f {
				return false
			}
		}
	}
	return true
}

// pointsPerFlip converts the flip margin into points.
const pointsPerFlip = 10

// Score computes the round score: positive when the players solved the grid
// within the suggested count plus the allowance, negative past that. The
// result is intentionally not clamped at zero.
func Score(playerFlips, suggestedFlips, extraAllowance int) int {
	return pointsPerFlip * (suggestedFlips + extraAllowance - playerFlips)
}
