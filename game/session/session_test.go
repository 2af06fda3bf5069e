package session

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalwk/tictactoe-bot/game/sink"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestManager wires a manager with a short poll interval and a recorder
// sink so tests can observe notifications.
func newTestManager(t *testing.T, cfg Config) (*Manager, *sink.Recorder) {
	t.Helper()
	rec := sink.NewRecorder()
	if cfg.TimeLimit == 0 {
		cfg.TimeLimit = time.Minute
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Millisecond
	}
	return NewManager(rec, cfg, testLogger()), rec
}

// startGame runs invite+accept and returns the session.
func startGame(t *testing.T, m *Manager, inviter, invitee PlayerID, size int) *Session {
	t.Helper()
	_, err := m.Invite(inviter, invitee, size)
	require.NoError(t, err)
	s, err := m.Accept(invitee)
	require.NoError(t, err)
	return s
}

func TestSessionTurnAlternation(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s := startGame(t, m, "alice", "bob", 3)

	first := s.TurnOwner()
	require.Contains(t, []PlayerID{"alice", "bob"}, first)
	second := PlayerID("alice")
	if first == "alice" {
		second = "bob"
	}

	report, err := s.AttemptMove(first, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, second, report.NextTurn)
	assert.Equal(t, second, s.TurnOwner())

	report, err = s.AttemptMove(second, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, first, report.NextTurn)
}

func TestSessionRejectsOutOfTurn(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s := startGame(t, m, "alice", "bob", 3)

	waiting := PlayerID("alice")
	if s.TurnOwner() == "alice" {
		waiting = "bob"
	}

	_, err := s.AttemptMove(waiting, 0, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, StateInProgress, s.State())
}

func TestSessionRejectsNonParticipant(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s := startGame(t, m, "alice", "bob", 3)

	_, err := s.AttemptMove("mallory", 0, 0)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSessionRejectsBadCoordinates(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s := startGame(t, m, "alice", "bob", 3)

	mover := s.TurnOwner()

	_, err := s.AttemptMove(mover, 5, 5)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, mover, s.TurnOwner(), "rejected move must not flip the turn")

	_, err = s.AttemptMove(mover, 0, 0)
	require.NoError(t, err)
	next := s.TurnOwner()

	_, err = s.AttemptMove(next, 0, 0)
	assert.ErrorIs(t, err, ErrCellOccupied)
	assert.Equal(t, next, s.TurnOwner())
}

func TestSessionTopRowWinReleasesBothPlayers(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s := startGame(t, m, "alice", "bob", 3)

	p1 := s.TurnOwner()
	p2 := PlayerID("alice")
	if p1 == "alice" {
		p2 = "bob"
	}

	// p1 takes the top row while p2 plays the middle.
	moves := []struct {
		actor    PlayerID
		row, col int
	}{
		{p1, 0, 0}, {p2, 1, 1}, {p1, 0, 1}, {p2, 1, 0},
	}
	for _, mv := range moves {
		_, err := s.AttemptMove(mv.actor, mv.row, mv.col)
		require.NoError(t, err)
	}

	report, err := s.AttemptMove(p1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, p1, report.Winner)
	assert.True(t, report.State.Terminal())

	_, in := m.SessionFor("alice")
	assert.False(t, in, "winner released from session map")
	_, in = m.SessionFor("bob")
	assert.False(t, in, "loser released from session map")

	// Moves after teardown fail as not-in-game at the manager surface.
	_, err = m.Move(p1, 2, 2)
	assert.ErrorIs(t, err, ErrNotInGame)

	// And directly on the session they fail as game-over.
	_, err = s.AttemptMove(p2, 2, 2)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestSessionDraw(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s := startGame(t, m, "alice", "bob", 3)

	p1 := s.TurnOwner()
	p2 := PlayerID("alice")
	if p1 == "alice" {
		p2 = "bob"
	}

	// Full board, no line:
	//  a b a
	//  a b b
	//  b a a
	moves := []struct {
		actor    PlayerID
		row, col int
	}{
		{p1, 0, 0}, {p2, 0, 1}, {p1, 0, 2},
		{p2, 1, 1}, {p1, 1, 0}, {p2, 1, 2},
		{p1, 2, 1}, {p2, 2, 0}, {p1, 2, 2},
	}
	var last *MoveReport
	for _, mv := range moves {
		report, err := s.AttemptMove(mv.actor, mv.row, mv.col)
		require.NoError(t, err)
		last = report
	}

	assert.Equal(t, StateDraw, last.State)
	assert.Empty(t, last.Winner)
	games, _ := m.Counts()
	assert.Zero(t, games)
}

func TestSessionTimeout(t *testing.T) {
	m, rec := newTestManager(t, Config{
		TimeLimit:    20 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	s := startGame(t, m, "alice", "bob", 3)

	require.Eventually(t, func() bool {
		return s.State() == StateTimedOut
	}, time.Second, 5*time.Millisecond, "session should time out")

	require.Eventually(t, func() bool {
		_, in := m.SessionFor("alice")
		return !in
	}, time.Second, 5*time.Millisecond, "both players released after timeout")

	_, err := m.Move(s.TurnOwner(), 0, 0)
	assert.Error(t, err)

	var timeouts int
	for _, n := range rec.Notices() {
		if n.Event == sink.EventTimeout {
			timeouts++
		}
	}
	assert.Equal(t, 1, timeouts, "timeout teardown fires exactly once")
}

func TestSessionWinSuppressesTimeout(t *testing.T) {
	m, rec := newTestManager(t, Config{
		TimeLimit:    30 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	s := startGame(t, m, "alice", "bob", 3)

	p1 := s.TurnOwner()
	p2 := PlayerID("alice")
	if p1 == "alice" {
		p2 = "bob"
	}
	for _, mv := range []struct {
		actor    PlayerID
		row, col int
	}{
		{p1, 0, 0}, {p2, 1, 1}, {p1, 0, 1}, {p2, 1, 0}, {p1, 0, 2},
	} {
		_, err := s.AttemptMove(mv.actor, mv.row, mv.col)
		require.NoError(t, err)
	}
	require.True(t, s.State().Terminal())

	// Let the old expiry schedule pass; the canceled task must not add a
	// timeout teardown on top of the win.
	time.Sleep(80 * time.Millisecond)
	for _, n := range rec.Notices() {
		assert.NotEqual(t, sink.EventTimeout, n.Event)
	}
	assert.True(t, s.State() == StatePlayerOneWon || s.State() == StatePlayerTwoWon)
}

func TestSessionCapturesMessageID(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s := startGame(t, m, "alice", "bob", 3)

	require.Eventually(t, func() bool {
		return s.MessageID() != ""
	}, time.Second, time.Millisecond)

	first := s.MessageID()
	_, err := s.AttemptMove(s.TurnOwner(), 0, 0)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.MessageID() != first
	}, time.Second, time.Millisecond, "render handle advances with each publish")
}

func TestSessionToleratesSinkWithoutMessageIDs(t *testing.T) {
	rec := sink.NewRecorder()
	noIDs := sink.Func(func(n sink.Notice) (string, error) {
		_, _ = rec.Publish(n)
		return "", nil
	})
	m := NewManager(noIDs, Config{TimeLimit: time.Minute, PollInterval: 5 * time.Millisecond}, testLogger())

	s := startGame(t, m, "alice", "bob", 3)
	assert.Empty(t, s.MessageID())

	_, err := s.AttemptMove(s.TurnOwner(), 0, 0)
	require.NoError(t, err)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Empty(t, last.ReplacesMessageID, "no stale handle referenced when none was captured")
}

func TestSessionSurvivesSinkFailure(t *testing.T) {
	rec := sink.NewRecorder()
	rec.FailWith(assert.AnError)
	m := NewManager(rec, Config{TimeLimit: time.Minute, PollInterval: 5 * time.Millisecond}, testLogger())

	s := startGame(t, m, "alice", "bob", 3)
	report, err := s.AttemptMove(s.TurnOwner(), 0, 0)
	require.NoError(t, err, "sink failures must not surface as move errors")
	assert.NotNil(t, report)
	assert.Equal(t, StateInProgress, s.State())
}
