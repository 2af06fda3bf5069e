package service

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/chalwk/tictactoe-bot/game/config"
	"github.com/chalwk/tictactoe-bot/game/session"
)

// matchServiceImpl implements the MatchService interface.
type matchServiceImpl struct {
	games    *session.Manager
	channels *config.Channels
	log      *slog.Logger
}

// NewMatchService creates a new match service instance.
func NewMatchService(games *session.Manager, channels *config.Channels, log *slog.Logger) MatchService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &matchServiceImpl{
		games:    games,
		channels: channels,
		log:      log,
	}
}

// Invite records a pending invite from inviter to invitee. A zero size
// means DefaultBoardSize; anything else outside [MinBoardSize,
// MaxBoardSize] is rejected before the registry is touched.
func (s *matchServiceImpl) Invite(ctx context.Context, inviter, invitee string, size int) (*InviteInfo, error) {
	if inviter == "" || invitee == "" {
		return nil, ErrEmptyPlayer
	}
	if inviter == invitee {
		return nil, ErrSelfInvite
	}
	if size == 0 {
		size = DefaultBoardSize
	}
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, ErrBoardSize
	}

	inv, err := s.games.Invite(session.PlayerID(inviter), session.PlayerID(invitee), size)
	if err != nil {
		return nil, err
	}
	s.log.Debug("invite created", "inviter", inviter, "invitee", invitee, "size", size)
	return inviteInfo(inv), nil
}

// Accept turns the caller's pending invite into a running game.
func (s *matchServiceImpl) Accept(ctx context.Context, invitee string) (*GameInfo, error) {
	if invitee == "" {
		return nil, ErrEmptyPlayer
	}

	sess, err := s.games.Accept(session.PlayerID(invitee))
	if err != nil {
		return nil, err
	}
	s.log.Debug("invite accepted", "invitee", invitee, "game_id", sess.ID)
	return gameInfo(sess), nil
}

// Decline discards the caller's pending invite.
func (s *matchServiceImpl) Decline(ctx context.Context, invitee string) (*InviteInfo, error) {
	if invitee == "" {
		return nil, ErrEmptyPlayer
	}

	inv, err := s.games.Decline(session.PlayerID(invitee))
	if err != nil {
		return nil, err
	}
	s.log.Debug("invite declined", "invitee", invitee, "inviter", inv.Inviter)
	return inviteInfo(inv), nil
}

// Cancel withdraws the invite the caller previously sent.
func (s *matchServiceImpl) Cancel(ctx context.Context, inviter string) (*InviteInfo, error) {
	if inviter == "" {
		return nil, ErrEmptyPlayer
	}

	inv, err := s.games.Cancel(session.PlayerID(inviter))
	if err != nil {
		return nil, err
	}
	s.log.Debug("invite canceled", "inviter", inviter, "invitee", inv.Invitee)
	return inviteInfo(inv), nil
}

// Move places the caller's marker at row, col (zero-based).
func (s *matchServiceImpl) Move(ctx context.Context, player string, row, col int) (*MoveInfo, error) {
	if player == "" {
		return nil, ErrEmptyPlayer
	}

	report, err := s.games.Move(session.PlayerID(player), row, col)
	if err != nil {
		return nil, err
	}
	return moveInfo(report), nil
}

// Game returns the caller's active game.
func (s *matchServiceImpl) Game(ctx context.Context, player string) (*GameInfo, error) {
	if player == "" {
		return nil, ErrEmptyPlayer
	}

	sess, ok := s.games.SessionFor(session.PlayerID(player))
	if !ok {
		return nil, session.ErrNotInGame
	}
	return gameInfo(sess), nil
}

// ListGames returns every active game.
func (s *matchServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	return lo.Map(s.games.Sessions(), func(sess *session.Session, _ int) *GameInfo {
		return gameInfo(sess)
	}), nil
}

// Channels returns the configured channel allow-list.
func (s *matchServiceImpl) Channels(ctx context.Context) ([]string, error) {
	return s.channels.List(), nil
}

// SetChannel adds or removes a channel from the allow-list.
func (s *matchServiceImpl) SetChannel(ctx context.Context, id string, add bool) error {
	if id == "" {
		return ErrEmptyChannel
	}
	if err := s.channels.Save(id, add); err != nil {
		return err
	}
	s.log.Info("channel list updated", "channel", id, "added", add)
	return nil
}
