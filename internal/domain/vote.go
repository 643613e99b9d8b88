package domain

import (
	"context"
	"time"
)

// VoteRecord is the state of one active mute vote. The record is keyed by the
// id of the proposal announcement message and lives in the registry from
// successful proposal until resolution removes it.
type VoteRecord struct {
	VoteID        string
	RoomID        string
	TargetUserID  string
	TargetDisplay string
	MuteMinutes   int
	ApproveCount  int
	RejectCount   int
	StartedAt     time.Time
}

// Verdict is the outcome of a resolved vote.
type Verdict string

const (
	VerdictPassed Verdict = "passed"
	VerdictFailed Verdict = "failed"
)

// Decide applies the outcome rule: a vote passes only when the approve count
// strictly exceeds the reject count. A tie fails, and so does 0/0.
func Decide(approve, reject int) Verdict {
	if approve > reject {
		return VerdictPassed
	}
	return VerdictFailed
}

// ProposeRequest is the normalized input to the vote lifecycle engine.
// MuteMinutes <= 0 means "use the configured default".
type ProposeRequest struct {
	RoomID        string
	RequesterID   string
	TargetUserID  string
	TargetDisplay string
	MuteMinutes   int
}

// VoteStore is the registry of active votes. Insert performs the room-scoped
// admission check and the insert as one atomic step.
type VoteStore interface {
	Insert(rec VoteRecord) error
	Get(voteID string) (VoteRecord, bool)
	Remove(voteID string)
	HasActiveInRoom(roomID string) bool
	Len() int
	Snapshot() []VoteRecord
}

// VoteService is the engine surface exposed to the transport layer.
type VoteService interface {
	Propose(ctx context.Context, req ProposeRequest) (string, error)
	Cancel(voteID string) bool
}
