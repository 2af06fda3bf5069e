package engine

import (
	"fmt"
	"strings"
)

// Render draws the board as a fixed-width text grid with zero-based row and
// column indices, suitable for a monospace code block in a chat message.
//
// A 3×3 board with one move at (0,0) renders as:
//
//	    0   1   2
//	0 | X |   |   |
//	  |---+---+---|
//	1 |   |   |   |
//	  |---+---+---|
//	2 |   |   |   |
func Render(b *Board) string {
	var sb strings.Builder

	idxWidth := len(fmt.Sprintf("%d", b.size-1))

	sb.WriteString("\n")
	for col := 0; col < b.size; col++ {
		if col == 0 {
			sb.WriteString("    ")
		}
		sb.WriteString(fmt.Sprintf("%*d   ", idxWidth, col))
	}
	sb.WriteString("\n")

	for row := 0; row < b.size; row++ {
		sb.WriteString(fmt.Sprintf("%*d ", idxWidth, row))
		for col := 0; col < b.size; col++ {
			sb.WriteString("| ")
			sb.WriteString(b.cells[row][col].Symbol())
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")

		if row < b.size-1 {
			sb.WriteString("  |")
			sb.WriteString(strings.TrimSuffix(strings.Repeat("---+", b.size), "+"))
			sb.WriteString("|\n")
		}
	}

	return sb.String()
}
