// Package session manages the lifecycle of tic-tac-toe matches between two
// players.
//
// The session package implements:
//   - Pending invites keyed by invitee (one per invitee, overwrite on re-invite)
//   - Active sessions keyed by both participants for O(1) lookup from either side
//   - Turn authority on top of the turn-agnostic board engine
//   - Per-game expiry polling with idempotent teardown
//   - Thread-safe registries shared by concurrent command handlers
//
// Core Types:
//
// Manager owns the invite registry and the session map and is the only
// component allowed to create or destroy sessions. Session is one running
// match: board, turn owner, state, expiry task, and the handle of its last
// rendered message. Invite is a pending proposal carrying the requested
// board size.
//
// Invariants:
//
// A player identity appears in at most one active session, and in at most
// one of the two registries at any instant. Accepting an invite atomically
// removes the invite and inserts the session under both identities. A
// session reaching any terminal state releases both players and cancels its
// expiry task, so the task can never tear the same game down twice.
//
// Concurrency:
//
// One manager mutex covers both registries, which keeps cross-map
// operations (accept) atomic to concurrent observers. Each session has its
// own mutex serializing the command path against that session's expiry
// callback; side effects (notifications, timer cancel, release) run after
// the lock is dropped, so the lock order is always manager → session and
// never cycles.
//
// Usage:
//
//	mgr := session.NewManager(notifier, session.Config{TimeLimit: 5 * time.Minute}, logger)
//
//	if _, err := mgr.Invite("alice", "bob", 3); err != nil {
//		// already in a game
//	}
//	game, err := mgr.Accept("bob")
//	report, err := mgr.Move("alice", 0, 0)
package session
