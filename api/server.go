package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/chalwk/tictactoe-bot/game/config"
	"github.com/chalwk/tictactoe-bot/game/service"
	"github.com/chalwk/tictactoe-bot/game/session"
	"github.com/chalwk/tictactoe-bot/transport/websocket"
)

// Server represents the REST API server.
type Server struct {
	service   service.MatchService
	hub       *websocket.Hub
	channels  *config.Channels
	cooldowns *CooldownManager
	router    *mux.Router
	log       *slog.Logger
}

// NewServer creates a new API server. hub may be nil when the websocket
// feed is not wired (stdio MCP mode).
func NewServer(matches service.MatchService, hub *websocket.Hub, channels *config.Channels, cooldowns *CooldownManager, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		service:   matches,
		hub:       hub,
		channels:  channels,
		cooldowns: cooldowns,
		router:    mux.NewRouter(),
		log:       log,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Commands, gated by channel and cooldown
	api.Handle("/invites", s.command("invite", s.handleInvite)).Methods("POST")
	api.Handle("/invites/{player}/accept", s.command("accept", s.handleAccept)).Methods("POST")
	api.Handle("/invites/{player}/decline", s.command("decline", s.handleDecline)).Methods("POST")
	api.Handle("/invites/{player}/cancel", s.command("cancel", s.handleCancel)).Methods("POST")
	api.Handle("/games/{player}/move", s.command("move", s.handleMove)).Methods("POST")

	// Queries
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{player}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Channel administration
	api.HandleFunc("/channels", s.handleListChannels).Methods("GET")
	api.HandleFunc("/channels", s.handleSetChannel).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, session.ErrNotInGame) || errors.Is(err, session.ErrNoPendingInvite) {
		return http.StatusNotFound
	}
	switch service.Classify(err) {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindProtocol, service.KindRaceLoss:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// command wraps a handler with the channel gate and the per-player
// cooldown check. The acting player is the {player} route var, or for
// invites the inviter from the body, which handlers re-decode themselves.
func (s *Server) command(name string, handler func(http.ResponseWriter, *http.Request) (actor string, ok bool)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		channel := r.Header.Get("X-Channel")
		if !s.channels.Allowed(channel) {
			respondError(w, http.StatusForbidden, "channel not accepted, ask an admin to add it")
			return
		}

		if actor := mux.Vars(r)["player"]; actor != "" && !s.checkCooldown(w, actor, name) {
			return
		}

		actor, ok := handler(w, r)
		if ok && actor != "" {
			s.cooldowns.Arm(actor, name)
		}
	})
}

// checkCooldown writes a 429 and returns false when player is still inside
// the window for command.
func (s *Server) checkCooldown(w http.ResponseWriter, player, command string) bool {
	remaining, on := s.cooldowns.OnCooldown(player, command)
	if !on {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
	respondError(w, http.StatusTooManyRequests, fmt.Sprintf("slow down, try again in %s", remaining.Round(time.Millisecond)))
	return false
}

// Command handlers. Each returns the acting player and whether the
// command succeeded, so the wrapper can arm the cooldown.

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Inviter string `json:"inviter"`
		Invitee string `json:"invitee"`
		Size    int    `json:"size,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}

	if !s.checkCooldown(w, req.Inviter, "invite") {
		return "", false
	}

	inv, err := s.service.Invite(r.Context(), req.Inviter, req.Invitee, req.Size)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return "", false
	}

	respondJSON(w, http.StatusCreated, inv)
	return req.Inviter, true
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) (string, bool) {
	player := mux.Vars(r)["player"]

	game, err := s.service.Accept(r.Context(), player)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return "", false
	}

	respondJSON(w, http.StatusOK, game)
	return player, true
}

func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) (string, bool) {
	player := mux.Vars(r)["player"]

	inv, err := s.service.Decline(r.Context(), player)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return "", false
	}

	respondJSON(w, http.StatusOK, inv)
	return player, true
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) (string, bool) {
	player := mux.Vars(r)["player"]

	inv, err := s.service.Cancel(r.Context(), player)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return "", false
	}

	respondJSON(w, http.StatusOK, inv)
	return player, true
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) (string, bool) {
	player := mux.Vars(r)["player"]

	var req struct {
		Row int `json:"row"`
		Col int `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}

	result, err := s.service.Move(r.Context(), player, req.Row, req.Col)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return "", false
	}

	respondJSON(w, http.StatusOK, result)
	return player, true
}

// Query handlers

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	player := mux.Vars(r)["player"]

	game, err := s.service.Game(r.Context(), player)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// Channel Handlers

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.service.Channels(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(channels),
		"channels": channels,
	})
}

func (s *Server) handleSetChannel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Channel string `json:"channel"`
		Add     bool   `json:"add"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.service.SetChannel(r.Context(), req.Channel, req.Add); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("channel %s updated", req.Channel),
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket feed not enabled", http.StatusNotImplemented)
		return
	}

	s.hub.ServeWS(w, r, r.URL.Query().Get("game"))
}

// Health check

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
