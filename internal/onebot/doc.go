// Package onebot is the HTTP client for the OneBot/Napcat backend API.
//
// It implements both moderation actions (post message, temporary mute) and
// reaction tally queries. All calls are bounded by a per-call timeout and go
// through a shared circuit breaker so a stalled backend cannot stall vote
// resolution indefinitely.
package onebot
