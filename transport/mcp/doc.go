// Package mcp provides the Model Context Protocol surface for the bot.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions mirroring the chat commands
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - invite: Send a game invite to another player
//   - accept: Accept the caller's pending invite
//   - decline: Decline the caller's pending invite
//   - cancel: Withdraw the invite the caller sent
//   - move: Place a marker on the caller's board
//   - board: Show the caller's current game and rendered board
//   - list_games: List all active games
//
// Architecture:
//
// The client is a thin proxy: every tool call becomes a REST request
// against the API server, so game rules, channel gating, and cooldowns
// live in exactly one place. The client identifies itself with a channel
// name that must pass the server's allow-list when one is configured.
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080", "mcp")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode: mount client.GetMCPServer() behind a /mcp endpoint
package mcp
