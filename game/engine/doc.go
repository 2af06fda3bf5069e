// Package engine provides the core board logic for tic-tac-toe.
//
// The engine package implements:
//   - Size-parametric N×N board state (any N >= 1)
//   - Move validation (bounds and occupancy) with no side effects on rejection
//   - Win and draw detection across rows, columns, and both diagonals
//   - Fixed-width textual board rendering with row/column indices
//
// Core Types:
//
// Board holds the grid and accepts validated moves. Mark identifies a cell
// owner (Empty, PlayerOne, PlayerTwo). ApplyMove returns a MoveOutcome and
// Evaluate returns a Verdict, so callers can switch exhaustively instead of
// comparing raw integer codes.
//
// The engine has no notion of turn order, participants, or timers. Whose
// turn it is, and whether a finished board may still be mutated, are
// enforced one layer up by the game session.
//
// Usage:
//
//	board, err := engine.NewBoard(3)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if outcome := board.ApplyMove(0, 0, engine.PlayerOne); outcome != engine.MoveAccepted {
//		// out of bounds or occupied; the grid is unchanged
//	}
//
//	verdict := board.Evaluate()
//	if verdict.Status == engine.StatusWon {
//		fmt.Println("winner:", verdict.Winner)
//	}
//
// Determinism:
//
// Evaluate scans rows first, then columns, then the forward diagonal, then
// the backward diagonal. In a legal game only one winning line can appear at
// a time, but the fixed order keeps results reproducible for tests that set
// up boards directly.
package engine
