package session

import "time"

// PlayerID identifies a chat-platform user. The core never interprets it;
// it is whatever stable identifier the platform hands the command layer.
type PlayerID string

// Invite is a pending proposal from Inviter to Invitee to start a game on a
// BoardSize×BoardSize grid. Invites live in the manager's registry keyed by
// invitee until accepted, declined, or canceled; a newer invite to the same
// invitee overwrites the older one.
type Invite struct {
	Inviter   PlayerID
	Invitee   PlayerID
	BoardSize int
	CreatedAt time.Time
}
