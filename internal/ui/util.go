package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// ellipsis marks a truncated cell label.
const ellipsis = "…"

// FitCell truncates plain text to at most width cells, marking the cut with
// an ellipsis.
func FitCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + ellipsis
}

// GridColumns is how many cells of cellWidth fit in width, at least one.
func GridColumns(width, cellWidth int) int {
	if cellWidth <= 0 {
		return 1
	}
	return max(width/cellWidth, 1)
}

// Direction is a grid cursor movement.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// MoveIndex moves a cursor over n items laid out row-major in cols columns.
// Moves that would leave the grid keep the cursor in place.
func MoveIndex(i, n, cols int, dir Direction) int {
	if n <= 0 {
		return 0
	}
	i = min(max(i, 0), n-1)
	cols = max(cols, 1)

	next := i
	switch dir {
	case DirLeft:
		if i%cols > 0 {
			next = i - 1
		}
	case DirRight:
		if i%cols < cols-1 {
			next = i + 1
		}
	case DirUp:
		next = i - cols
	case DirDown:
		next = i + cols
	}

	if next < 0 || next >= n {
		return i
	}
	return next
}
