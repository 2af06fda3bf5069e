package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chalwk/tictactoe-bot/game/service"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	channel    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API. channel is
// the identity presented to the server's channel allow-list.
func NewClient(baseURL, channel string) *Client {
	c := &Client{
		baseURL: baseURL,
		channel: channel,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools.
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tic-Tac-Toe Bot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tic-Tac-Toe Bot - MCP Interface

This is a thin client that proxies all requests to the REST API server.

HOW A GAME STARTS:
One player invites another (board sizes 3 to 9). The invitee accepts or
declines; the inviter can cancel while the invite is pending. On accept the
game starts and a coin flip decides who moves first.

AVAILABLE TOOLS:
- invite: Send a game invite to another player
- accept: Accept your pending invite
- decline: Decline your pending invite
- cancel: Withdraw the invite you sent
- move: Place your marker (row and col are 0-based)
- board: Show your current game and board
- list_games: List all active games

Each player is in at most one game at a time, and games expire when the
time limit passes without a finish.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools.
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "invite",
		Description: "Send a tic-tac-toe invite to another player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID",
				},
				"opponent": map[string]interface{}{
					"type":        "string",
					"description": "Player ID to invite",
				},
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Board size from 3 to 9 (default 3)",
				},
			},
			Required: []string{"player", "opponent"},
		},
	}, c.handleInvite)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "accept",
		Description: "Accept your pending invite and start the game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID",
				},
			},
			Required: []string{"player"},
		},
	}, c.handleAccept)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "decline",
		Description: "Decline your pending invite",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID",
				},
			},
			Required: []string{"player"},
		},
	}, c.handleDecline)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel",
		Description: "Withdraw the invite you sent",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID",
				},
			},
			Required: []string{"player"},
		},
	}, c.handleCancel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Place your marker on the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
			},
			Required: []string{"player", "row", "col"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show your current game and rendered board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID",
				},
			},
			Required: []string{"player"},
		},
	}, c.handleBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all active games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs one REST request against the API server.
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Channel", c.channel)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleInvite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	player, _ := args["player"].(string)
	opponent, _ := args["opponent"].(string)
	size := 0
	if v, ok := args["size"].(float64); ok {
		size = int(v)
	}

	body := map[string]interface{}{
		"inviter": player,
		"invitee": opponent,
		"size":    size,
	}

	var inv service.InviteInfo
	if err := c.apiCall("POST", "/api/invites", body, &inv); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Invite sent: %s challenged %s to a %dx%d game.\nThey can accept, decline, or you can cancel.",
		inv.Inviter, inv.Invitee, inv.BoardSize, inv.BoardSize)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleAccept(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	player, _ := args["player"].(string)

	var game service.GameInfo
	if err := c.apiCall("POST", fmt.Sprintf("/api/invites/%s/accept", player), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(&game)), nil
}

func (c *Client) handleDecline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	player, _ := args["player"].(string)

	var inv service.InviteInfo
	if err := c.apiCall("POST", fmt.Sprintf("/api/invites/%s/decline", player), nil, &inv); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Declined the invite from %s.", inv.Inviter)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	player, _ := args["player"].(string)

	var inv service.InviteInfo
	if err := c.apiCall("POST", fmt.Sprintf("/api/invites/%s/cancel", player), nil, &inv); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Canceled the invite to %s.", inv.Invitee)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	player, _ := args["player"].(string)
	row, _ := args["row"].(float64)
	col, _ := args["col"].(float64)

	body := map[string]interface{}{
		"row": int(row),
		"col": int(col),
	}

	var move service.MoveInfo
	if err := c.apiCall("POST", fmt.Sprintf("/api/games/%s/move", player), body, &move); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMove(&move)), nil
}

func (c *Client) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	player, _ := args["player"].(string)

	var game service.GameInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/games/%s", player), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(&game)), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                 `json:"count"`
		Games []*service.GameInfo `json:"games"`
	}

	if err := c.apiCall("GET", "/api/games", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		fmt.Fprintf(&result, "- %s: %s (X) vs %s (O), %dx%d, turn: %s, started: %s\n",
			g.ID, g.PlayerOne, g.PlayerTwo, g.BoardSize, g.BoardSize,
			g.Turn, g.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

// Formatting helpers

func formatGame(game *service.GameInfo) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Game %s: %s (X) vs %s (O)\n", game.ID, game.PlayerOne, game.PlayerTwo)
	fmt.Fprintf(&result, "State: %s", game.State)
	if game.Turn != "" {
		fmt.Fprintf(&result, ", turn: %s", game.Turn)
	}
	result.WriteString("\n")
	result.WriteString(game.Board)
	return result.String()
}

func formatMove(move *service.MoveInfo) string {
	var result strings.Builder
	switch {
	case move.Winner != "":
		fmt.Fprintf(&result, "Game over: %s wins!\n", move.Winner)
	case move.Finished:
		result.WriteString("Game over: draw.\n")
	default:
		fmt.Fprintf(&result, "Move accepted. Next turn: %s\n", move.NextTurn)
	}
	result.WriteString(move.Board)
	return result.String()
}
