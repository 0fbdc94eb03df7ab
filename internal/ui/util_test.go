package ui

import (
	"testing"

	"charm.land/lipgloss/v2"
	"pgregory.net/rapid"
)

// =============================================================================
// Unit Tests
// =============================================================================

func TestFitCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "fits", input: "Esc", width: 6, want: "Esc"},
		{name: "exact", input: "Enter", width: 5, want: "Enter"},
		{name: "truncated", input: "KC_XENTER", width: 6, want: "KC_XE…"},
		{name: "width one", input: "Space", width: 1, want: "…"},
		{name: "zero width", input: "A", width: 0, want: ""},
		{name: "wide runes", input: "変換キー", width: 5, want: "変換…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitCell(tt.input, tt.width); got != tt.want {
				t.Errorf("FitCell(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestGridColumns(t *testing.T) {
	tests := []struct {
		width, cell, want int
	}{
		{80, 8, 10},
		{79, 8, 9},
		{4, 8, 1},
		{80, 0, 1},
	}
	for _, tt := range tests {
		if got := GridColumns(tt.width, tt.cell); got != tt.want {
			t.Errorf("GridColumns(%d, %d) = %d, want %d", tt.width, tt.cell, got, tt.want)
		}
	}
}

func TestMoveIndex(t *testing.T) {
	// 7 items in 3 columns:
	// 0 1 2
	// 3 4 5
	// 6
	tests := []struct {
		name string
		from int
		dir  Direction
		want int
	}{
		{name: "right", from: 0, dir: DirRight, want: 1},
		{name: "right at row end", from: 2, dir: DirRight, want: 2},
		{name: "left at row start", from: 3, dir: DirLeft, want: 3},
		{name: "down", from: 1, dir: DirDown, want: 4},
		{name: "down into short row", from: 4, dir: DirDown, want: 4},
		{name: "down to last", from: 3, dir: DirDown, want: 6},
		{name: "up at top", from: 2, dir: DirUp, want: 2},
		{name: "right past end", from: 6, dir: DirRight, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoveIndex(tt.from, 7, 3, tt.dir); got != tt.want {
				t.Errorf("MoveIndex(%d, %v) = %d, want %d", tt.from, tt.dir, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Property Tests
// =============================================================================

// Property: FitCell never exceeds the requested width.
func TestFitCell_WidthBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-zA-Z0-9_()]{0,20}`).Draw(t, "s")
		width := rapid.IntRange(0, 12).Draw(t, "width")

		if got := FitCell(s, width); lipgloss.Width(got) > width {
			t.Fatalf("FitCell(%q, %d) = %q is %d wide", s, width, got, lipgloss.Width(got))
		}
	})
}

// Property: MoveIndex always stays inside the grid.
func TestMoveIndex_StaysInGrid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "n")
		cols := rapid.IntRange(1, 12).Draw(t, "cols")
		i := rapid.IntRange(0, n-1).Draw(t, "i")
		dir := rapid.SampledFrom([]Direction{DirLeft, DirRight, DirUp, DirDown}).Draw(t, "dir")

		got := MoveIndex(i, n, cols, dir)
		if got < 0 || got >= n {
			t.Fatalf("MoveIndex(%d, %d, %d, %v) = %d out of range", i, n, cols, dir, got)
		}
	})
}
