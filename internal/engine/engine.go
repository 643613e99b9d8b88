// Package engine implements the vote lifecycle: admission, proposal,
// scheduled resolution, outcome, enforcement, and cleanup.
//
// Each admitted proposal spawns one deferred goroutine that waits out the
// voting window on the injected clock and then resolves the vote. Resolution
// always removes the registry record, whatever the backend does.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"mutevote/internal/domain"
	"mutevote/internal/metrics"
	"mutevote/internal/platform/correlation"
)

// Engine orchestrates mute votes. One instance handles all rooms; proposals
// in different rooms proceed independently.
type Engine struct {
	store   domain.VoteStore
	actions domain.ActionClient
	tallies domain.TallyClient
	clock   clockwork.Clock

	window             time.Duration
	defaultMuteMinutes int

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex

	// wg joins in-flight resolution goroutines, used by tests and shutdown.
	wg sync.WaitGroup
}

var _ domain.VoteService = (*Engine)(nil)

func New(store domain.VoteStore, actions domain.ActionClient, tallies domain.TallyClient, clock clockwork.Clock, window time.Duration, defaultMuteMinutes int) *Engine {
	return &Engine{
		store:              store,
		actions:            actions,
		tallies:            tallies,
		clock:              clock,
		window:             window,
		defaultMuteMinutes: defaultMuteMinutes,
		roomLocks:          make(map[string]*sync.Mutex),
	}
}

// Propose runs the admission check, posts the proposal announcement, inserts
// the vote record, and schedules the deferred resolution. It returns the vote
// id (the announcement message id) without waiting for the voting window.
func (e *Engine) Propose(ctx context.Context, req domain.ProposeRequest) (string, error) {
	if req.RoomID == "" {
		metrics.VoteProposalsTotal.WithLabelValues("not_in_group").Inc()
		return "", domain.ErrNotInGroupChat
	}
	if req.TargetUserID == "" {
		metrics.VoteProposalsTotal.WithLabelValues("no_target").Inc()
		return "", domain.ErrTargetNotFound
	}

	minutes := req.MuteMinutes
	if minutes <= 0 {
		minutes = e.defaultMuteMinutes
	}

	// Serialize proposals per room so the admission check and the insert act
	// as one decision even when the announcement post sits between them.
	lock := e.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if e.store.HasActiveInRoom(req.RoomID) {
		metrics.VoteProposalsTotal.WithLabelValues("vote_in_progress").Inc()
		return "", domain.ErrVoteInProgress
	}

	text := proposalText(req.TargetDisplay, minutes, e.window)
	msgID, err := e.actions.PostAnnouncement(ctx, req.RoomID, text)
	if err != nil {
		metrics.VoteProposalsTotal.WithLabelValues("announcement_failed").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrAnnouncementFailed, err)
	}

	rec := domain.VoteRecord{
		VoteID:        msgID,
		RoomID:        req.RoomID,
		TargetUserID:  req.TargetUserID,
		TargetDisplay: req.TargetDisplay,
		MuteMinutes:   minutes,
		StartedAt:     e.clock.Now(),
	}
	if err := e.store.Insert(rec); err != nil {
		// Cannot happen while the room lock is held, but the registry is the
		// backstop for the one-vote-per-room invariant.
		slog.WarnContext(ctx, "Registry refused vote after announcement was posted",
			"room_id", req.RoomID, "vote_id", msgID, "error", err)
		metrics.VoteProposalsTotal.WithLabelValues("vote_in_progress").Inc()
		return "", err
	}

	metrics.VoteProposalsTotal.WithLabelValues("accepted").Inc()
	metrics.ActiveVotes.Set(float64(e.store.Len()))
	slog.InfoContext(ctx, "Vote started",
		"vote_id", msgID,
		"room_id", req.RoomID,
		"requester_id", req.RequesterID,
		"target_user_id", req.TargetUserID,
		"mute_minutes", minutes,
		"window", e.window,
	)

	e.scheduleResolution(ctx, msgID)
	return msgID, nil
}

// Cancel removes an active vote before its window elapses. The scheduled
// resolution then finds no record and exits silently. Returns false when no
// such vote exists.
func (e *Engine) Cancel(voteID string) bool {
	_, ok := e.store.Get(voteID)
	if !ok {
		return false
	}
	e.store.Remove(voteID)
	metrics.ActiveVotes.Set(float64(e.store.Len()))
	slog.Info("Vote cancelled", "vote_id", voteID)
	return true
}

// Wait blocks until all in-flight resolutions have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// WaitWithTimeout blocks until all in-flight resolutions have finished or the
// timeout elapses, whichever comes first. Used on shutdown, where pending
// votes may still be sleeping out their window. Reports whether the engine
// drained fully.
func (e *Engine) WaitWithTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func (e *Engine) scheduleResolution(ctx context.Context, voteID string) {
	// Resolution outlives the inbound request; carry only the correlation id
	// into a fresh context.
	rctx := context.Background()
	if id, ok := correlation.ID(ctx); ok {
		rctx = correlation.WithID(rctx, id)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		<-e.clock.After(e.window)
		e.resolve(rctx, voteID)
	}()
}

// resolve tallies both reactions, decides the outcome, enforces a passing
// vote, announces the result, and removes the record. Failures along the way
// degrade the outcome but never skip the cleanup. A missing record means the
// vote was already resolved or cancelled; that is not an error.
func (e *Engine) resolve(ctx context.Context, voteID string) {
	rec, ok := e.store.Get(voteID)
	if !ok {
		slog.DebugContext(ctx, "No record for vote, skipping resolution", "vote_id", voteID)
		return
	}
	defer func() {
		e.store.Remove(voteID)
		metrics.ActiveVotes.Set(float64(e.store.Len()))
	}()

	rec.ApproveCount = e.countOrZero(ctx, voteID, domain.ReactionApprove)
	rec.RejectCount = e.countOrZero(ctx, voteID, domain.ReactionReject)

	verdict := domain.Decide(rec.ApproveCount, rec.RejectCount)

	if verdict == domain.VerdictPassed {
		if err := e.actions.MuteUser(ctx, rec.RoomID, rec.TargetUserID, rec.MuteMinutes); err != nil {
			// The vote still counts as passed; only the enforcement failed.
			slog.WarnContext(ctx, "Failed to enforce mute",
				"vote_id", voteID, "target_user_id", rec.TargetUserID, "error", err)
			metrics.MuteEnforcementsTotal.WithLabelValues("error").Inc()
		} else {
			metrics.MuteEnforcementsTotal.WithLabelValues("ok").Inc()
		}
	}

	if _, err := e.actions.PostAnnouncement(ctx, rec.RoomID, resultText(rec, verdict)); err != nil {
		slog.WarnContext(ctx, "Failed to post vote result", "vote_id", voteID, "error", err)
	}

	metrics.VotesResolvedTotal.WithLabelValues(string(verdict)).Inc()
	slog.InfoContext(ctx, "Vote resolved",
		"vote_id", voteID,
		"room_id", rec.RoomID,
		"approve", rec.ApproveCount,
		"reject", rec.RejectCount,
		"verdict", verdict,
	)
}

// countOrZero maps a failed tally query to a count of zero, so a flaky
// backend degrades the tally instead of stranding the vote.
func (e *Engine) countOrZero(ctx context.Context, voteID string, kind domain.ReactionKind) int {
	count, err := e.tallies.CountReaction(ctx, voteID, kind)
	if err != nil {
		slog.WarnContext(ctx, "Reaction tally failed, counting zero",
			"vote_id", voteID, "kind", kind, "error", err)
		metrics.TallyErrorsTotal.WithLabelValues(string(kind)).Inc()
		return 0
	}
	return count
}

func (e *Engine) roomLock(roomID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		e.roomLocks[roomID] = lock
	}
	return lock
}

// IsAdmissionError reports whether err is one of the user-visible admission
// failures of Propose, as opposed to an internal failure.
func IsAdmissionError(err error) bool {
	return errors.Is(err, domain.ErrNotInGroupChat) ||
		errors.Is(err, domain.ErrTargetNotFound) ||
		errors.Is(err, domain.ErrVoteInProgress) ||
		errors.Is(err, domain.ErrAnnouncementFailed)
}
