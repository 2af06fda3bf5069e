package engine

// Mark identifies the owner of a board cell.
type Mark uint8

const (
	Empty Mark = iota
	PlayerOne
	PlayerTwo
)

// Symbol returns the marker drawn for a cell in rendered boards.
func (m Mark) Symbol() string {
	switch m {
	case PlayerOne:
		return "X"
	case PlayerTwo:
		return "O"
	default:
		return " "
	}
}

func (m Mark) String() string {
	switch m {
	case PlayerOne:
		return "player_one"
	case PlayerTwo:
		return "player_two"
	default:
		return "empty"
	}
}

// Other returns the opposing player's mark. Calling it on Empty returns Empty.
func (m Mark) Other() Mark {
	switch m {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	default:
		return Empty
	}
}

// MoveOutcome is the result of attempting to place a mark.
type MoveOutcome int

const (
	MoveAccepted MoveOutcome = iota
	MoveOutOfBounds
	MoveOccupied
)

func (o MoveOutcome) String() string {
	switch o {
	case MoveAccepted:
		return "accepted"
	case MoveOutOfBounds:
		return "out_of_bounds"
	case MoveOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// Status describes where a board stands after evaluation.
type Status int

const (
	StatusInProgress Status = iota
	StatusWon
	StatusDraw
)

func (s Status) String() string {
	switch s {
	case StatusWon:
		return "won"
	case StatusDraw:
		return "draw"
	default:
		return "in_progress"
	}
}

// Verdict is the result of evaluating a board. Winner is set only when
// Status is StatusWon.
type Verdict struct {
	Status Status
	Winner Mark
}
