// Package config holds the bot's runtime settings and the channel
// allow-list.
//
// Settings come from the environment (TTT_* variables, optionally seeded
// from a .env file by the caller) and cover the listen address, the game
// time limit, the expiry poll interval, and the command cooldown.
//
// The channel allow-list is the one piece of persisted state: the set of
// chat channels whose commands the bot accepts, stored as a small JSON
// file and updated through the admin surface. An empty allow-list means
// every channel is accepted.
package config
