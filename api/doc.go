// Package api provides the HTTP REST surface for the bot's commands.
//
// The api package implements:
//   - One endpoint per chat command (invite, accept, decline, cancel, move)
//   - Game queries for players and spectating tools
//   - Channel allow-list administration
//   - WebSocket upgrade handling for the notice feed
//
// Endpoints:
//
// Commands:
//   - POST /api/invites - Send an invite {inviter, invitee, size}
//   - POST /api/invites/{player}/accept - Accept the caller's pending invite
//   - POST /api/invites/{player}/decline - Decline the caller's pending invite
//   - POST /api/invites/{player}/cancel - Withdraw the invite the caller sent
//   - POST /api/games/{player}/move - Place a marker {row, col}
//
// Queries:
//   - GET /api/games - List active games
//   - GET /api/games/{player} - The caller's active game
//   - GET /api/health - Liveness probe
//
// Channel administration:
//   - GET /api/channels - List the allow-listed channels
//   - POST /api/channels - Add or remove a channel {channel, add}
//
// WebSocket:
//   - GET /ws?game={id} - Notice feed; omit game for the firehose
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Errors are returned as JSON with
// the HTTP status carrying the classification:
//
//	{
//	  "error": "error message"
//	}
//
// 400 for bad input, 404 for a missing invite or game, 409 for commands
// that are not legal in the caller's current state (including race losses),
// 429 when the caller is still on cooldown, 500 for internal failures.
//
// Channel Gate and Cooldowns:
//
// Command endpoints require an X-Channel header naming the chat channel
// the command came from; channels outside the allow-list get 403. Each
// player has a per-command cooldown; commands repeated inside the window
// get 429 with a Retry-After header. Queries and channel administration
// bypass both gates.
package api
