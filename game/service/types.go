package service

import (
	"time"

	"github.com/chalwk/tictactoe-bot/game/session"
)

// InviteInfo is the transport view of a pending invite.
type InviteInfo struct {
	Inviter   string    `json:"inviter"`
	Invitee   string    `json:"invitee"`
	BoardSize int       `json:"board_size"`
	CreatedAt time.Time `json:"created_at"`
}

// GameInfo is the transport view of an active or just-started game.
type GameInfo struct {
	ID        string    `json:"id"`
	PlayerOne string    `json:"player_one"`
	PlayerTwo string    `json:"player_two"`
	Turn      string    `json:"turn"`
	State     string    `json:"state"`
	Board     string    `json:"board"`
	BoardSize int       `json:"board_size"`
	CreatedAt time.Time `json:"created_at"`
}

// MoveInfo is the transport view of an accepted move.
type MoveInfo struct {
	GameID   string `json:"game_id"`
	State    string `json:"state"`
	Board    string `json:"board"`
	NextTurn string `json:"next_turn,omitempty"`
	Winner   string `json:"winner,omitempty"`
	Finished bool   `json:"finished"`
}

func inviteInfo(inv *session.Invite) *InviteInfo {
	return &InviteInfo{
		Inviter:   string(inv.Inviter),
		Invitee:   string(inv.Invitee),
		BoardSize: inv.BoardSize,
		CreatedAt: inv.CreatedAt,
	}
}

func gameInfo(s *session.Session) *GameInfo {
	one, two := s.Participants()
	return &GameInfo{
		ID:        s.ID,
		PlayerOne: string(one),
		PlayerTwo: string(two),
		Turn:      string(s.TurnOwner()),
		State:     s.State().String(),
		Board:     s.RenderBoard(),
		BoardSize: s.BoardSize(),
		CreatedAt: s.CreatedAt(),
	}
}

func moveInfo(r *session.MoveReport) *MoveInfo {
	return &MoveInfo{
		GameID:   r.GameID,
		State:    r.State.String(),
		Board:    r.Board,
		NextTurn: string(r.NextTurn),
		Winner:   string(r.Winner),
		Finished: r.State.Terminal(),
	}
}
