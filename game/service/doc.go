// Package service provides the command surface between the transports and
// the session registry.
//
// The service package implements:
//   - Input validation (board sizes, coordinates, self-invites)
//   - Error classification for transport-level responses
//   - View structs decoupling transports from session internals
//   - The channel allow-list admin operations
//
// Core Interfaces:
//
// MatchService is the main interface; every chat command resolves to
// exactly one of its methods. Transports never touch session.Manager
// directly.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the session manager. The manager owns all game state and its own
// locking; the service adds only validation and shaping, so it carries no
// mutex of its own.
//
// Usage:
//
//	games := session.NewManager(notifier, session.Config{}, log)
//	channels, _ := config.LoadChannels("channels.json")
//	svc := service.NewMatchService(games, channels, log)
//
//	inv, err := svc.Invite(ctx, "alice", "bob", 3)
//	if err != nil {
//		// service.Classify(err) tells the transport how to respond
//	}
//
// Error Classification:
//
// Classify maps any error returned by the service to a Kind: validation
// failures and protocol misuse are user-correctable and rendered as
// ephemeral replies (HTTP 4xx); race losses mean the target changed state
// concurrently and the attempted transition was simply not applied;
// everything else is internal.
package service
