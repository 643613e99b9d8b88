// Package registry provides the in-memory store of active votes.
//
// One registry is constructed per process and injected into the engine. All
// vote state is ephemeral; nothing survives a restart.
package registry

import (
	"sync"

	"mutevote/internal/domain"
)

// Registry is a mutex-guarded map of active votes keyed by vote id, with a
// room index for the one-vote-per-room admission rule.
type Registry struct {
	mu    sync.Mutex
	votes map[string]domain.VoteRecord
	rooms map[string]string // room id -> vote id
}

func New() *Registry {
	return &Registry{
		votes: make(map[string]domain.VoteRecord),
		rooms: make(map[string]string),
	}
}

// Insert adds a record, failing with ErrVoteInProgress when the room already
// has an active vote. The room check and the insert are one critical section,
// so concurrent proposals for the same room cannot both be admitted.
func (r *Registry) Insert(rec domain.VoteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[rec.RoomID]; exists {
		return domain.ErrVoteInProgress
	}
	r.votes[rec.VoteID] = rec
	r.rooms[rec.RoomID] = rec.VoteID
	return nil
}

// Get returns the record for a vote id. Absence is a normal outcome (the vote
// already resolved or never existed), never an error.
func (r *Registry) Get(voteID string) (domain.VoteRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.votes[voteID]
	return rec, ok
}

// Remove deletes a record and its room index entry. Removing an absent key is
// a no-op.
func (r *Registry) Remove(voteID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.votes[voteID]
	if !ok {
		return
	}
	delete(r.votes, voteID)
	if r.rooms[rec.RoomID] == voteID {
		delete(r.rooms, rec.RoomID)
	}
}

func (r *Registry) HasActiveInRoom(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.rooms[roomID]
	return ok
}

// Len returns the number of active votes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.votes)
}

// Snapshot returns a copy of all active records, for the admin listing
// endpoint.
func (r *Registry) Snapshot() []domain.VoteRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.VoteRecord, 0, len(r.votes))
	for _, rec := range r.votes {
		out = append(out, rec)
	}
	return out
}
