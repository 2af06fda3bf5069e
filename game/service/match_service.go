package service

import (
	"context"
)

// Board size bounds for the player-facing invite command. The engine
// itself accepts any size >= 1; the command surface keeps games playable
// in a chat message.
const (
	MinBoardSize     = 3
	MaxBoardSize     = 9
	DefaultBoardSize = 3
)

// MatchService defines all player-facing operations.
type MatchService interface {
	// Invite lifecycle
	Invite(ctx context.Context, inviter, invitee string, size int) (*InviteInfo, error)
	Accept(ctx context.Context, invitee string) (*GameInfo, error)
	Decline(ctx context.Context, invitee string) (*InviteInfo, error)
	Cancel(ctx context.Context, inviter string) (*InviteInfo, error)

	// Gameplay
	Move(ctx context.Context, player string, row, col int) (*MoveInfo, error)

	// Queries
	Game(ctx context.Context, player string) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)

	// Channel administration
	Channels(ctx context.Context) ([]string, error)
	SetChannel(ctx context.Context, id string, add bool) error
}
