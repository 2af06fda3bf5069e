package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/chalwk/tictactoe-bot/game/config"
	"github.com/chalwk/tictactoe-bot/game/service"
	"github.com/chalwk/tictactoe-bot/game/session"
)

// MockMatchService implements service.MatchService for testing
type MockMatchService struct {
	InviteFunc     func(ctx context.Context, inviter, invitee string, size int) (*service.InviteInfo, error)
	AcceptFunc     func(ctx context.Context, invitee string) (*service.GameInfo, error)
	DeclineFunc    func(ctx context.Context, invitee string) (*service.InviteInfo, error)
	CancelFunc     func(ctx context.Context, inviter string) (*service.InviteInfo, error)
	MoveFunc       func(ctx context.Context, player string, row, col int) (*service.MoveInfo, error)
	GameFunc       func(ctx context.Context, player string) (*service.GameInfo, error)
	ListGamesFunc  func(ctx context.Context) ([]*service.GameInfo, error)
	ChannelsFunc   func(ctx context.Context) ([]string, error)
	SetChannelFunc func(ctx context.Context, id string, add bool) error
}

func (m *MockMatchService) Invite(ctx context.Context, inviter, invitee string, size int) (*service.InviteInfo, error) {
	if m.InviteFunc != nil {
		return m.InviteFunc(ctx, inviter, invitee, size)
	}
	return &service.InviteInfo{
		Inviter:   inviter,
		Invitee:   invitee,
		BoardSize: size,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockMatchService) Accept(ctx context.Context, invitee string) (*service.GameInfo, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, invitee)
	}
	return &service.GameInfo{
		ID:        "test-game",
		PlayerOne: "alice",
		PlayerTwo: invitee,
		State:     "in_progress",
	}, nil
}

func (m *MockMatchService) Decline(ctx context.Context, invitee string) (*service.InviteInfo, error) {
	if m.DeclineFunc != nil {
		return m.DeclineFunc(ctx, invitee)
	}
	return &service.InviteInfo{Inviter: "alice", Invitee: invitee}, nil
}

func (m *MockMatchService) Cancel(ctx context.Context, inviter string) (*service.InviteInfo, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, inviter)
	}
	return &service.InviteInfo{Inviter: inviter, Invitee: "bob"}, nil
}

func (m *MockMatchService) Move(ctx context.Context, player string, row, col int) (*service.MoveInfo, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, player, row, col)
	}
	return &service.MoveInfo{GameID: "test-game", State: "in_progress"}, nil
}

func (m *MockMatchService) Game(ctx context.Context, player string) (*service.GameInfo, error) {
	if m.GameFunc != nil {
		return m.GameFunc(ctx, player)
	}
	return &service.GameInfo{ID: "test-game", PlayerOne: player}, nil
}

func (m *MockMatchService) ListGames(ctx context.Context) ([]*service.GameInfo, error) {
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc(ctx)
	}
	return []*service.GameInfo{}, nil
}

func (m *MockMatchService) Channels(ctx context.Context) ([]string, error) {
	if m.ChannelsFunc != nil {
		return m.ChannelsFunc(ctx)
	}
	return []string{}, nil
}

func (m *MockMatchService) SetChannel(ctx context.Context, id string, add bool) error {
	if m.SetChannelFunc != nil {
		return m.SetChannelFunc(ctx, id, add)
	}
	return nil
}

func newTestServer(t *testing.T, mock *MockMatchService) *Server {
	t.Helper()
	channels, err := config.LoadChannels(filepath.Join(t.TempDir(), "channels.json"))
	if err != nil {
		t.Fatalf("LoadChannels failed: %v", err)
	}
	return NewServer(mock, nil, channels, NewCooldownManager(0), nil)
}

func postJSON(t *testing.T, server *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("X-Channel", "general")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestHandleInvite(t *testing.T) {
	var gotInviter, gotInvitee string
	var gotSize int
	mock := &MockMatchService{
		InviteFunc: func(ctx context.Context, inviter, invitee string, size int) (*service.InviteInfo, error) {
			gotInviter, gotInvitee, gotSize = inviter, invitee, size
			return &service.InviteInfo{Inviter: inviter, Invitee: invitee, BoardSize: size}, nil
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/invites", map[string]interface{}{
		"inviter": "alice",
		"invitee": "bob",
		"size":    5,
	})

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotInviter != "alice" || gotInvitee != "bob" || gotSize != 5 {
		t.Errorf("Service called with (%s, %s, %d)", gotInviter, gotInvitee, gotSize)
	}

	var inv service.InviteInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if inv.BoardSize != 5 {
		t.Errorf("Expected board size 5, got %d", inv.BoardSize)
	}
}

func TestHandleInviteBadBody(t *testing.T) {
	server := newTestServer(t, &MockMatchService{})

	req := httptest.NewRequest("POST", "/api/invites", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-Channel", "general")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleInviteValidationError(t *testing.T) {
	mock := &MockMatchService{
		InviteFunc: func(ctx context.Context, inviter, invitee string, size int) (*service.InviteInfo, error) {
			return nil, service.ErrSelfInvite
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/invites", map[string]string{
		"inviter": "alice",
		"invitee": "alice",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleAccept(t *testing.T) {
	server := newTestServer(t, &MockMatchService{})

	rec := postJSON(t, server, "/api/invites/bob/accept", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var game service.GameInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &game); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if game.PlayerTwo != "bob" {
		t.Errorf("Expected player two bob, got %s", game.PlayerTwo)
	}
}

func TestHandleAcceptWithoutInvite(t *testing.T) {
	mock := &MockMatchService{
		AcceptFunc: func(ctx context.Context, invitee string) (*service.GameInfo, error) {
			return nil, session.ErrNoPendingInvite
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/invites/bob/accept", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHandleAcceptRaceLoss(t *testing.T) {
	mock := &MockMatchService{
		AcceptFunc: func(ctx context.Context, invitee string) (*service.GameInfo, error) {
			return nil, session.ErrInviterBusy
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/invites/bob/accept", nil)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestHandleMove(t *testing.T) {
	var gotPlayer string
	var gotRow, gotCol int
	mock := &MockMatchService{
		MoveFunc: func(ctx context.Context, player string, row, col int) (*service.MoveInfo, error) {
			gotPlayer, gotRow, gotCol = player, row, col
			return &service.MoveInfo{GameID: "g1", State: "in_progress", NextTurn: "bob"}, nil
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/games/alice/move", map[string]int{"row": 1, "col": 2})

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPlayer != "alice" || gotRow != 1 || gotCol != 2 {
		t.Errorf("Service called with (%s, %d, %d)", gotPlayer, gotRow, gotCol)
	}
}

func TestHandleMoveNotYourTurn(t *testing.T) {
	mock := &MockMatchService{
		MoveFunc: func(ctx context.Context, player string, row, col int) (*service.MoveInfo, error) {
			return nil, session.ErrNotYourTurn
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/games/alice/move", map[string]int{"row": 0, "col": 0})

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestHandleMoveOccupiedCell(t *testing.T) {
	mock := &MockMatchService{
		MoveFunc: func(ctx context.Context, player string, row, col int) (*service.MoveInfo, error) {
			return nil, session.ErrCellOccupied
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/games/alice/move", map[string]int{"row": 0, "col": 0})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleListGames(t *testing.T) {
	mock := &MockMatchService{
		ListGamesFunc: func(ctx context.Context) ([]*service.GameInfo, error) {
			return []*service.GameInfo{
				{ID: "g1", PlayerOne: "alice", PlayerTwo: "bob"},
				{ID: "g2", PlayerOne: "carol", PlayerTwo: "dave"},
			}, nil
		},
	}
	server := newTestServer(t, mock)

	req := httptest.NewRequest("GET", "/api/games", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Count int                 `json:"count"`
		Games []*service.GameInfo `json:"games"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Count != 2 || len(resp.Games) != 2 {
		t.Errorf("Expected 2 games, got count=%d len=%d", resp.Count, len(resp.Games))
	}
}

func TestHandleGetGameNotFound(t *testing.T) {
	mock := &MockMatchService{
		GameFunc: func(ctx context.Context, player string) (*service.GameInfo, error) {
			return nil, session.ErrNotInGame
		},
	}
	server := newTestServer(t, mock)

	req := httptest.NewRequest("GET", "/api/games/nobody", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestChannelGateBlocksUnlistedChannel(t *testing.T) {
	channels, err := config.LoadChannels(filepath.Join(t.TempDir(), "channels.json"))
	if err != nil {
		t.Fatalf("LoadChannels failed: %v", err)
	}
	if err := channels.Save("games", true); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	server := NewServer(&MockMatchService{}, nil, channels, NewCooldownManager(0), nil)

	// Command from an unlisted channel
	data, _ := json.Marshal(map[string]string{"inviter": "alice", "invitee": "bob"})
	req := httptest.NewRequest("POST", "/api/invites", bytes.NewReader(data))
	req.Header.Set("X-Channel", "random")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}

	// Same command from the listed channel
	req = httptest.NewRequest("POST", "/api/invites", bytes.NewReader(data))
	req.Header.Set("X-Channel", "games")
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Queries bypass the gate
	req = httptest.NewRequest("GET", "/api/games", nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 for query, got %d", rec.Code)
	}
}

func TestCooldownLimitsRepeatedCommands(t *testing.T) {
	channels, err := config.LoadChannels(filepath.Join(t.TempDir(), "channels.json"))
	if err != nil {
		t.Fatalf("LoadChannels failed: %v", err)
	}
	server := NewServer(&MockMatchService{}, nil, channels, NewCooldownManager(time.Minute), nil)

	rec := postJSON(t, server, "/api/invites/bob/accept", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, server, "/api/invites/bob/accept", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	// A different player is unaffected
	rec = postJSON(t, server, "/api/invites/carol/accept", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 for other player, got %d", rec.Code)
	}
}

func TestCooldownNotArmedOnFailure(t *testing.T) {
	fail := true
	mock := &MockMatchService{
		AcceptFunc: func(ctx context.Context, invitee string) (*service.GameInfo, error) {
			if fail {
				return nil, session.ErrNoPendingInvite
			}
			return &service.GameInfo{ID: "g1"}, nil
		},
	}
	channels, err := config.LoadChannels(filepath.Join(t.TempDir(), "channels.json"))
	if err != nil {
		t.Fatalf("LoadChannels failed: %v", err)
	}
	server := NewServer(mock, nil, channels, NewCooldownManager(time.Minute), nil)

	rec := postJSON(t, server, "/api/invites/bob/accept", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}

	// The failed attempt must not have cost bob the window.
	fail = false
	rec = postJSON(t, server, "/api/invites/bob/accept", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 after failed attempt, got %d", rec.Code)
	}
}

func TestHandleSetChannel(t *testing.T) {
	var gotID string
	var gotAdd bool
	mock := &MockMatchService{
		SetChannelFunc: func(ctx context.Context, id string, add bool) error {
			gotID, gotAdd = id, add
			return nil
		},
	}
	server := newTestServer(t, mock)

	rec := postJSON(t, server, "/api/channels", map[string]interface{}{
		"channel": "games",
		"add":     true,
	})

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != "games" || !gotAdd {
		t.Errorf("Service called with (%s, %v)", gotID, gotAdd)
	}
}

func TestHandleListChannels(t *testing.T) {
	mock := &MockMatchService{
		ChannelsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"games", "general"}, nil
		},
	}
	server := newTestServer(t, mock)

	req := httptest.NewRequest("GET", "/api/channels", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Count    int      `json:"count"`
		Channels []string `json:"channels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Expected 2 channels, got %d", resp.Count)
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, &MockMatchService{})

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	server := newTestServer(t, &MockMatchService{})

	req := httptest.NewRequest("GET", "/ws", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Expected status 501, got %d", rec.Code)
	}
}
