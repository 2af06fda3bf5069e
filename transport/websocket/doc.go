// Package websocket provides the real-time notice feed for the bot.
//
// The websocket package implements:
//   - A hub-and-spoke model fanning game notices out to connected clients
//   - Per-game subscriptions plus a firehose for all notices
//   - Connection lifecycle management (ping/pong, slow-client eviction)
//   - The sink adapter the game core publishes through
//
// Architecture:
//
// A central Hub owns all connections; its Run loop serializes register,
// unregister, and broadcast events, so no handler goroutine touches the
// room maps directly. Each client connection gets dedicated read and write
// goroutines.
//
// Message Protocol:
//
// Clients do not send game commands over the socket; the connection is a
// one-way notice feed. Outgoing messages are JSON-encoded Message values
// carrying the game ID, the event name, the notice text, and the rendered
// board when one applies.
//
// Subscriptions:
//
// Clients pick their feed via query parameter when connecting: ?game=<id>
// subscribes to a single game, omitting it subscribes to every notice.
//
// Usage:
//
//	hub := websocket.NewHub(log)
//	go hub.Run()
//
//	notifier := websocket.NewHubSink(hub)
//	games := session.NewManager(notifier, session.Config{}, log)
//
// HubSink implements sink.Notifier: every published notice is stamped with
// a fresh message ID and broadcast to the matching room and the firehose.
package websocket
