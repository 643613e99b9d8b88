package domain

import "context"

// ReactionKind identifies one of the two ballot reactions on a proposal
// message.
type ReactionKind string

const (
	ReactionApprove ReactionKind = "approve"
	ReactionReject  ReactionKind = "reject"
)

// ActionClient issues enforcement actions and announcements against the chat
// backend. Stateless per call.
type ActionClient interface {
	// PostAnnouncement posts text into a room and returns the id of the
	// created message.
	PostAnnouncement(ctx context.Context, roomID, text string) (string, error)
	// MuteUser temporarily mutes a user in a room.
	MuteUser(ctx context.Context, roomID, userID string, minutes int) error
}

// TallyClient queries the current count of a ballot reaction on a message.
type TallyClient interface {
	CountReaction(ctx context.Context, messageID string, kind ReactionKind) (int, error)
}
