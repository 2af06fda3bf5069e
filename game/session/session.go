package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chalwk/tictactoe-bot/game/clock"
	"github.com/chalwk/tictactoe-bot/game/engine"
	"github.com/chalwk/tictactoe-bot/game/sink"
)

var (
	ErrNotParticipant = errors.New("not a participant in this game")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrGameOver       = errors.New("game already over")
	ErrOutOfBounds    = errors.New("row and column must be on the board")
	ErrCellOccupied   = errors.New("cell is already occupied")
)

// State is a session's lifecycle position. The four terminal states reject
// all further moves.
type State int

const (
	StateAwaitingRender State = iota
	StateInProgress
	StatePlayerOneWon
	StatePlayerTwoWon
	StateDraw
	StateTimedOut
)

// Terminal reports whether the state accepts no further transitions.
func (s State) Terminal() bool {
	switch s {
	case StatePlayerOneWon, StatePlayerTwoWon, StateDraw, StateTimedOut:
		return true
	}
	return false
}

func (s State) String() string {
	switch s {
	case StateAwaitingRender:
		return "awaiting_render"
	case StateInProgress:
		return "in_progress"
	case StatePlayerOneWon:
		return "player_one_won"
	case StatePlayerTwoWon:
		return "player_two_won"
	case StateDraw:
		return "draw"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// MoveReport describes the session after an accepted move.
type MoveReport struct {
	GameID   string
	State    State
	Board    string
	NextTurn PlayerID
	Winner   PlayerID
}

// Session is one match between two players. The inviter always plays
// PlayerOne (X) and the invitee PlayerTwo (O); who moves first is a coin
// flip at construction. All mutable fields are guarded by mu, which
// serializes command-path moves against the expiry callback.
type Session struct {
	ID string

	inviter PlayerID
	invitee PlayerID

	mu        sync.Mutex
	board     *engine.Board
	turn      engine.Mark
	state     State
	createdAt time.Time
	messageID string

	expiry    *clock.Task
	timeLimit time.Duration
	notifier  sink.Notifier
	release   func(a, b PlayerID)
	log       *slog.Logger
}

func newSession(inv *Invite, notifier sink.Notifier, release func(a, b PlayerID), timeLimit time.Duration, log *slog.Logger) (*Session, error) {
	board, err := engine.NewBoard(inv.BoardSize)
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	turn := engine.PlayerOne
	if rand.IntN(2) == 1 {
		turn = engine.PlayerTwo
	}

	id := uuid.NewString()
	return &Session{
		ID:        id,
		inviter:   inv.Inviter,
		invitee:   inv.Invitee,
		board:     board,
		turn:      turn,
		state:     StateAwaitingRender,
		createdAt: time.Now(),
		timeLimit: timeLimit,
		notifier:  notifier,
		release:   release,
		log:       log.With("game_id", id),
	}, nil
}

// start publishes the opening render, captures its message ID, and begins
// expiry polling. Called by the manager outside its own lock.
func (s *Session) start(pollInterval time.Duration) {
	s.mu.Lock()
	notice := sink.Notice{
		GameID:     s.ID,
		Event:      sink.EventStarted,
		Recipients: []string{string(s.inviter), string(s.invitee)},
		Text:       fmt.Sprintf("%s VS %s — turn: %s", s.inviter, s.invitee, s.owner(s.turn)),
		Board:      engine.Render(s.board),
	}
	s.mu.Unlock()

	msgID, err := s.notifier.Publish(notice)
	if err != nil {
		s.log.Warn("publish opening render failed", "error", err)
	}

	task := clock.Every(pollInterval, s.checkExpiry)

	s.mu.Lock()
	s.messageID = msgID
	s.expiry = task
	if s.state == StateAwaitingRender {
		s.state = StateInProgress
	}
	s.mu.Unlock()
}

// AttemptMove plays actor's mark at row, col. The session is the sole turn
// authority; the board engine only checks bounds and occupancy. Rejected
// moves leave turn owner, state, and board untouched.
func (s *Session) AttemptMove(actor PlayerID, row, col int) (*MoveReport, error) {
	s.mu.Lock()

	if s.state.Terminal() {
		s.mu.Unlock()
		return nil, ErrGameOver
	}
	if actor != s.inviter && actor != s.invitee {
		s.mu.Unlock()
		return nil, ErrNotParticipant
	}
	if actor != s.owner(s.turn) {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}

	switch s.board.ApplyMove(row, col, s.turn) {
	case engine.MoveOutOfBounds:
		size := s.board.Size()
		s.mu.Unlock()
		return nil, fmt.Errorf("%w (0..%d)", ErrOutOfBounds, size-1)
	case engine.MoveOccupied:
		s.mu.Unlock()
		return nil, ErrCellOccupied
	}

	verdict := s.board.Evaluate()
	render := engine.Render(s.board)
	prevMsg := s.messageID

	report := &MoveReport{GameID: s.ID, Board: render}
	notice := sink.Notice{
		GameID:            s.ID,
		Recipients:        []string{string(s.inviter), string(s.invitee)},
		Board:             render,
		ReplacesMessageID: prevMsg,
	}

	switch verdict.Status {
	case engine.StatusInProgress:
		s.turn = s.turn.Other()
		report.State = s.state
		report.NextTurn = s.owner(s.turn)
		notice.Event = sink.EventMoved
		notice.Text = fmt.Sprintf("turn: %s", report.NextTurn)
	case engine.StatusWon:
		if verdict.Winner == engine.PlayerOne {
			s.state = StatePlayerOneWon
		} else {
			s.state = StatePlayerTwoWon
		}
		report.State = s.state
		report.Winner = s.owner(verdict.Winner)
		notice.Event = sink.EventWon
		notice.Text = fmt.Sprintf("game over! %s wins!", report.Winner)
	case engine.StatusDraw:
		s.state = StateDraw
		report.State = s.state
		notice.Event = sink.EventDraw
		notice.Text = "game over! it's a draw!"
	}

	terminal := s.state.Terminal()
	expiry := s.expiry
	s.mu.Unlock()

	if terminal && expiry != nil {
		expiry.Cancel()
	}

	msgID, err := s.notifier.Publish(notice)
	if err != nil {
		s.log.Warn("publish move render failed", "error", err)
	}
	if !terminal && msgID != "" {
		s.mu.Lock()
		s.messageID = msgID
		s.mu.Unlock()
	}

	if terminal {
		s.release(s.inviter, s.invitee)
	}
	return report, nil
}

// checkExpiry is the expiry task body. Returning false stops the task. The
// terminal check under the session lock makes teardown idempotent: a game
// that ended by win or draw a moment ago never also times out.
func (s *Session) checkExpiry() bool {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return false
	}
	if time.Since(s.createdAt) < s.timeLimit {
		s.mu.Unlock()
		return true
	}
	s.state = StateTimedOut
	prevMsg := s.messageID
	s.mu.Unlock()

	s.log.Info("game timed out", "inviter", s.inviter, "invitee", s.invitee)

	if _, err := s.notifier.Publish(sink.Notice{
		GameID:            s.ID,
		Event:             sink.EventTimeout,
		Recipients:        []string{string(s.inviter), string(s.invitee)},
		Text:              fmt.Sprintf("time's up! game between %s and %s has ended", s.inviter, s.invitee),
		ReplacesMessageID: prevMsg,
	}); err != nil {
		s.log.Warn("publish timeout notice failed", "error", err)
	}

	s.release(s.inviter, s.invitee)
	return false
}

// owner maps a board mark to the participant playing it.
func (s *Session) owner(mark engine.Mark) PlayerID {
	if mark == engine.PlayerOne {
		return s.inviter
	}
	return s.invitee
}

// Participants returns the inviter and invitee.
func (s *Session) Participants() (PlayerID, PlayerID) {
	return s.inviter, s.invitee
}

// TurnOwner returns who may move next; empty once the game is over.
func (s *Session) TurnOwner() PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return ""
	}
	return s.owner(s.turn)
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RenderBoard returns the current board drawn as text.
func (s *Session) RenderBoard() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return engine.Render(s.board)
}

// BoardSize returns the board's side length.
func (s *Session) BoardSize() int {
	return s.board.Size()
}

// CreatedAt returns when the session was constructed.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// MessageID returns the last captured render handle; empty until the first
// publish completes, or when the sink has no durable message IDs.
func (s *Session) MessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}
