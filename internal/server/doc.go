// Package server exposes the HTTP surface of the bot: the OneBot event
// webhook that carries chat commands, health and metrics endpoints, and a
// small operator API over the active vote registry.
package server
