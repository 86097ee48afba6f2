package game

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewGrid(t *testing.T) {
	g := NewGrid(6, 6)

	if g.Rows != 6 || g.Cols != 6 {
		t.Errorf("expected 6x6, got %dx%d", g.Rows, g.Cols)
	}
	if len(g.Flipped) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(g.Flipped))
	}
	for r, row := range g.Flipped {
		if len(row) != 6 {
			t.Fatalf("expected row %d to have 6 cells, got %d", r, len(row))
		}
		for c, f := range row {
			if f {
				t.Errorf("expected cell [%d][%d] unflipped", r, c)
			}
		}
	}
	if !g.IsSolved() {
		t.Error("fresh grid should be solved")
	}
	if g.SuggestedFlipCount != 0 || g.PlayerFlipCount != 0 {
		t.Errorf("expected zero counters, got suggested=%d player=%d",
			g.SuggestedFlipCount, g.PlayerFlipCount)
	}
}

// snapshot deep-copies the flag matrix for before/after diffing.
func snapshot(g *Grid) [][]bool {
	cp := make([][]bool, len(g.Flipped))
	for r, row := range g.Flipped {
		cp[r] = append([]bool(nil), row...)
	}
	return cp
}

func TestApplyFlipRow(t *testing.T) {
	g := NewGrid(3, 3)
	before := snapshot(g)

	if err := g.ApplyFlip(AxisRow, 1); err != nil {
		t.Fatalf("ApplyFlip(ROW, 1): %v", err)
	}

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := before[r][c]
			if r == 1 {
				want = !want
			}
			if g.Flipped[r][c] != want {
				t.Errorf("cell [%d][%d] = %v, want %v", r, c, g.Flipped[r][c], want)
			}
		}
	}
	if g.PlayerFlipCount != 1 {
		t.Errorf("expected PlayerFlipCount=1, got %d", g.PlayerFlipCount)
	}
}

func TestApplyFlipCol(t *testing.T) {
	g := NewGrid(3, 3)

	if err := g.ApplyFlip(AxisCol, 2); err != nil {
		t.Fatalf("ApplyFlip(COL, 2): %v", err)
	}

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := c == 2
			if g.Flipped[r][c] != want {
				t.Errorf("cell [%d][%d] = %v, want %v", r, c, g.Flipped[r][c], want)
			}
		}
	}
}

func TestApplyFlipDiagonal(t *testing.T) {
	g := NewGrid(3, 3)

	// Index must be ignored for diagonal flips
	if err := g.ApplyFlip(AxisDiagonal, 99); err != nil {
		t.Fatalf("ApplyFlip(DIAGONAL, 99): %v", err)
	}

	// Anti-diagonal: cells [n-1-i][i]
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := r == 2-c
			if g.Flipped[r][c] != want {
				t.Errorf("cell [%d][%d] = %v, want %v", r, c, g.Flipped[r][c], want)
			}
		}
	}
}

func TestApplyFlipInvalidAxis(t *testing.T) {
	g := NewGrid(3, 3)
	g.ApplyFlip(AxisRow, 0)
	before := snapshot(g)
	flipsBefore := g.PlayerFlipCount

	err := g.ApplyFlip(Axis(42), 0)
	if err == nil {
		t.Fatal("expected error for invalid axis")
	}
	var axisErr *AxisError
	if !errors.As(err, &axisErr) {
		t.Errorf("expected *AxisError, got %T", err)
	}

	if !reflect.DeepEqual(g.Flipped, before) {
		t.Error("grid state changed on invalid axis")
	}
	if g.PlayerFlipCount != flipsBefore {
		t.Errorf("PlayerFlipCount changed on invalid axis: %d -> %d", flipsBefore, g.PlayerFlipCount)
	}
}

func TestApplyFlipIndexOutOfRange(t *testing.T) {
	g := NewGrid(3, 3)
	before := snapshot(g)

	for _, tc := range []struct {
		axis  Axis
		index int
	}{
		{AxisRow, -1},
		{AxisRow, 3},
		{AxisCol, -1},
		{AxisCol, 3},
	} {
		err := g.ApplyFlip(tc.axis, tc.index)
		if err == nil {
			t.Errorf("ApplyFlip(%v, %d): expected error", tc.axis, tc.index)
			continue
		}
		var idxErr *IndexError
		if !errors.As(err, &idxErr) {
			t.Errorf("ApplyFlip(%v, %d): expected *IndexError, got %T", tc.axis, tc.index, err)
		}
	}

	if !reflect.DeepEqual(g.Flipped, before) {
		t.Error("grid state changed on out-of-range index")
	}
	if g.PlayerFlipCount != 0 {
		t.Errorf("PlayerFlipCount changed on rejected flips: %d", g.PlayerFlipCount)
	}
}

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in   string
		want Axis
		ok   bool
	}{
		{"ROW", AxisRow, true},
		{"COL", AxisCol, true},
		{"DIAGONAL", AxisDiagonal, true},
		{"X", 0, false},
		{"row", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		got, err := ParseAxis(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseAxis(%q): unexpected error %v", tc.in, err)
			} else if got != tc.want {
				t.Errorf("ParseAxis(%q) = %v, want %v", tc.in, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Errorf("ParseAxis(%q): expected error", tc.in)
		}
	}
}

func TestAxisString(t *testing.T) {
	tests := []struct {
		axis     Axis
		expected string
	}{
		{AxisRow, "ROW"},
		{AxisCol, "COL"},
		{AxisDiagonal, "DIAGONAL"},
	}

	for _, test := range tests {
		if got := test.axis.String(); got != test.expected {
			t.Errorf("Axis(%d).String() = %q, want %q", test.axis, got, test.expected)
		}
	}
}

func TestIsSolvedToggleParity(t *testing.T) {
	g := NewGrid(4, 4)

	g.ApplyFlip(AxisRow, 2)
	if g.IsSolved() {
		t.Error("grid with a flipped row should not be solved")
	}
	g.ApplyFlip(AxisRow, 2)
	if !g.IsSolved() {
		t.Error("flipping the same row twice should restore the solved state")
	}

	g.ApplyFlip(AxisDiagonal, 0)
	g.ApplyFlip(AxisCol, 0)
	if g.IsSolved() {
		t.Error("grid should not be solved mid-sequence")
	}
	g.ApplyFlip(AxisCol, 0)
	g.ApplyFlip(AxisDiagonal, 0)
	if !g.IsSolved() {
		t.Error("even toggle parity on every line should solve the grid")
	}

	if g.PlayerFlipCount != 6 {
		t.Errorf("expected PlayerFlipCount=6, got %d", g.PlayerFlipCount)
	}
}

func TestScore(t *testing.T) {
	// Par: player count equals suggested count
	if got := Score(5, 5, 10); got != 100 {
		t.Errorf("Score(5, 5, 10) = %d, want 100", got)
	}
	// Under par
	if got := Score(3, 5, 10); got != 120 {
		t.Errorf("Score(3, 5, 10) = %d, want 120", got)
	}
	// Far over par: negative, not clamped
	if got := Score(20, 5, 10); got != -50 {
		t.Errorf("Score(20, 5, 10) = %d, want -50", got)
	}
}

func TestScramble(t *testing.T) {
	g := NewGrid(6, 6)
	ops := g.Scramble()

	if g.SuggestedFlipCount != len(ops) {
		t.Errorf("SuggestedFlipCount=%d, want %d (one per fired op)", g.SuggestedFlipCount, len(ops))
	}
	if g.PlayerFlipCount != 0 {
		t.Errorf("scramble must not count as player flips, got %d", g.PlayerFlipCount)
	}

	for _, op := range ops {
		switch op.Axis {
		case AxisRow:
			if op.Index < 0 || op.Index >= g.Rows {
				t.Errorf("row op index %d out of range", op.Index)
			}
		case AxisCol:
			if op.Index < 0 || op.Index >= g.Cols {
				t.Errorf("col op index %d out of range", op.Index)
			}
		case AxisDiagonal:
		default:
			t.Errorf("unexpected scramble axis %v", op.Axis)
		}
	}
}

func TestScrambleInverse(t *testing.T) {
	// Run several scrambles so both op-rich and op-poor outcomes appear.
	for i := 0; i < 20; i++ {
		g := NewGrid(6, 6)
		ops := g.Scramble()

		// Each flip is its own inverse; reapplying the fired ops (in any
		// order, here reversed) must return the grid to the solved state.
		for j := len(ops) - 1; j >= 0; j-- {
			if err := g.Apply(ops[j]); err != nil {
				t.Fatalf("replaying op %v: %v", ops[j], err)
			}
		}

		if !g.IsSolved() {
			t.Fatalf("grid not solved after inverting %d scramble ops", len(ops))
		}
		if g.PlayerFlipCount != len(ops) {
			t.Errorf("expected PlayerFlipCount=%d, got %d", len(ops), g.PlayerFlipCount)
		}
	}
}
