package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chalwk/tictactoe-bot/game/sink"
)

var (
	ErrAlreadyInGame   = errors.New("already in a game")
	ErrNoPendingInvite = errors.New("no pending invite")
	ErrInviterBusy     = errors.New("inviter is already in another game")
	ErrNotInGame       = errors.New("not in a game")
)

const (
	DefaultTimeLimit    = 5 * time.Minute
	DefaultPollInterval = time.Second
)

// Config tunes session lifetimes. Zero values fall back to the defaults.
type Config struct {
	// TimeLimit is how long a game may run before it is torn down.
	TimeLimit time.Duration
	// PollInterval is how often each session checks its elapsed time.
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.TimeLimit <= 0 {
		c.TimeLimit = DefaultTimeLimit
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Manager owns the invite registry and the active-session map. A single
// mutex covers both, so operations that touch the two together (accept)
// are atomic to every concurrent observer.
type Manager struct {
	mu       sync.Mutex
	invites  map[PlayerID]*Invite  // keyed by invitee
	sessions map[PlayerID]*Session // both participants key the same session

	notifier sink.Notifier
	cfg      Config
	log      *slog.Logger
}

// NewManager creates a manager publishing through notifier.
func NewManager(notifier sink.Notifier, cfg Config, log *slog.Logger) *Manager {
	if notifier == nil {
		notifier = sink.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		invites:  make(map[PlayerID]*Invite),
		sessions: make(map[PlayerID]*Session),
		notifier: notifier,
		cfg:      cfg.withDefaults(),
		log:      log,
	}
}

// Invite proposes a game of the given board size. It fails when either
// party is already playing; a pending invite to the same invitee is
// overwritten, never queued.
func (m *Manager) Invite(inviter, invitee PlayerID, size int) (*Invite, error) {
	m.mu.Lock()
	if _, busy := m.sessions[inviter]; busy {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInGame, inviter)
	}
	if _, busy := m.sessions[invitee]; busy {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInGame, invitee)
	}
	// A fresh invite supersedes the inviter's previous one, wherever it was
	// addressed; nothing is queued.
	for addressee, pending := range m.invites {
		if pending.Inviter == inviter {
			delete(m.invites, addressee)
		}
	}
	inv := &Invite{
		Inviter:   inviter,
		Invitee:   invitee,
		BoardSize: size,
		CreatedAt: time.Now(),
	}
	m.invites[invitee] = inv
	m.mu.Unlock()

	m.log.Info("invite created", "inviter", inviter, "invitee", invitee, "size", size)
	m.publish(sink.Notice{
		Event:      sink.EventInvited,
		Recipients: []string{string(inviter), string(invitee)},
		Text:       fmt.Sprintf("%s has invited %s to play a %dx%d game! Type /accept to join or /decline to pass.", inviter, invitee, size, size),
	})
	return inv, nil
}

// Accept promotes the invitee's pending invite into a session. The invite
// removal and the session insertion under both identities happen under one
// lock, so no observer sees one without the other. When the inviter has
// since entered another game the invite is left untouched and the call
// fails with ErrInviterBusy.
func (m *Manager) Accept(invitee PlayerID) (*Session, error) {
	m.mu.Lock()
	inv, ok := m.invites[invitee]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNoPendingInvite
	}
	if _, busy := m.sessions[inv.Inviter]; busy {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrInviterBusy, inv.Inviter)
	}
	if _, busy := m.sessions[invitee]; busy {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInGame, invitee)
	}

	s, err := newSession(inv, m.notifier, m.release, m.cfg.TimeLimit, m.log)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	delete(m.invites, invitee)
	delete(m.invites, inv.Inviter) // an identity keys at most one registry
	m.sessions[inv.Inviter] = s
	m.sessions[invitee] = s
	m.mu.Unlock()

	m.log.Info("game started", "game_id", s.ID, "inviter", inv.Inviter, "invitee", invitee, "size", inv.BoardSize)
	s.start(m.cfg.PollInterval)
	return s, nil
}

// Decline removes the invitee's pending invite and notifies both parties.
func (m *Manager) Decline(invitee PlayerID) (*Invite, error) {
	m.mu.Lock()
	inv, ok := m.invites[invitee]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNoPendingInvite
	}
	delete(m.invites, invitee)
	m.mu.Unlock()

	m.log.Info("invite declined", "inviter", inv.Inviter, "invitee", invitee)
	m.publish(sink.Notice{
		Event:      sink.EventDeclined,
		Recipients: []string{string(inv.Inviter), string(invitee)},
		Text:       fmt.Sprintf("%s has declined the invite from %s", invitee, inv.Inviter),
	})
	return inv, nil
}

// Cancel withdraws the inviter's outstanding invite. The registry is keyed
// by invitee, so this scans for the invite the inviter sent.
func (m *Manager) Cancel(inviter PlayerID) (*Invite, error) {
	m.mu.Lock()
	var found *Invite
	for _, inv := range m.invites {
		if inv.Inviter == inviter {
			found = inv
			break
		}
	}
	if found == nil {
		m.mu.Unlock()
		return nil, ErrNoPendingInvite
	}
	delete(m.invites, found.Invitee)
	m.mu.Unlock()

	m.log.Info("invite canceled", "inviter", inviter, "invitee", found.Invitee)
	m.publish(sink.Notice{
		Event:      sink.EventCanceled,
		Recipients: []string{string(inviter)},
		Text:       fmt.Sprintf("invite to play a game with %s has been canceled", found.Invitee),
		Ephemeral:  true,
	})
	return found, nil
}

// Move routes a move intent to the actor's session. A move landing after
// the session was torn down — or while its teardown is completing — fails
// with ErrNotInGame.
func (m *Manager) Move(actor PlayerID, row, col int) (*MoveReport, error) {
	m.mu.Lock()
	s, ok := m.sessions[actor]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotInGame
	}

	report, err := s.AttemptMove(actor, row, col)
	if errors.Is(err, ErrGameOver) {
		return nil, ErrNotInGame
	}
	return report, err
}

// SessionFor returns the session the player participates in, if any.
func (m *Manager) SessionFor(player PlayerID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[player]
	return s, ok
}

// PendingInvite returns the invite addressed to the given invitee, if any.
func (m *Manager) PendingInvite(invitee PlayerID) (*Invite, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[invitee]
	return inv, ok
}

// Sessions returns each active session once.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{}, len(m.sessions))
	out := make([]*Session, 0, len(m.sessions)/2)
	for _, s := range m.sessions {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Counts returns the number of active games and pending invites.
func (m *Manager) Counts() (games, invites int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions) / 2, len(m.invites)
}

// release removes both participants' entries. Sessions call it on their own
// terminal transitions; command handlers never do.
func (m *Manager) release(a, b PlayerID) {
	m.mu.Lock()
	delete(m.sessions, a)
	delete(m.sessions, b)
	m.mu.Unlock()
	m.log.Info("game released", "player_one", a, "player_two", b)
}

// publish sends a notice and logs delivery failures. Sink failures never
// reach game state.
func (m *Manager) publish(n sink.Notice) {
	if _, err := m.notifier.Publish(n); err != nil {
		m.log.Warn("notification failed", "event", n.Event, "error", err)
	}
}
