package service

import (
	"errors"
	"fmt"

	"github.com/chalwk/tictactoe-bot/game/session"
)

// Validation failures raised by the service itself, before any registry
// operation runs.
var (
	ErrEmptyPlayer  = errors.New("player id must not be empty")
	ErrSelfInvite   = errors.New("cannot invite yourself")
	ErrBoardSize    = fmt.Errorf("board size must be between %d and %d", MinBoardSize, MaxBoardSize)
	ErrEmptyChannel = errors.New("channel id must not be empty")
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	// KindInternal covers collaborator and unexpected failures.
	KindInternal Kind = iota
	// KindValidation covers user-correctable input problems.
	KindValidation
	// KindProtocol covers commands that are well-formed but not legal in
	// the caller's current state (no pending invite, not your turn).
	KindProtocol
	// KindRaceLoss means the target changed state concurrently and the
	// attempted transition was not applied.
	KindRaceLoss
)

// Classify maps an error returned by any MatchService method to its Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrEmptyPlayer),
		errors.Is(err, ErrSelfInvite),
		errors.Is(err, ErrBoardSize),
		errors.Is(err, ErrEmptyChannel),
		errors.Is(err, session.ErrOutOfBounds),
		errors.Is(err, session.ErrCellOccupied):
		return KindValidation
	case errors.Is(err, session.ErrAlreadyInGame),
		errors.Is(err, session.ErrNoPendingInvite),
		errors.Is(err, session.ErrNotInGame),
		errors.Is(err, session.ErrNotYourTurn),
		errors.Is(err, session.ErrNotParticipant):
		return KindProtocol
	case errors.Is(err, session.ErrInviterBusy):
		return KindRaceLoss
	default:
		return KindInternal
	}
}
