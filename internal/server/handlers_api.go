package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "mutevote/internal/errors"
)

type voteSummary struct {
	VoteID        string `json:"vote_id"`
	RoomID        string `json:"room_id"`
	TargetUserID  string `json:"target_user_id"`
	TargetDisplay string `json:"target_display"`
	MuteMinutes   int    `json:"mute_minutes"`
	StartedAt     string `json:"started_at"`
}

// handleListVotes returns the active votes for operator inspection.
func (s *Server) handleListVotes(c echo.Context) error {
	records := s.store.Snapshot()
	votes := make([]voteSummary, 0, len(records))
	for _, rec := range records {
		votes = append(votes, voteSummary{
			VoteID:        rec.VoteID,
			RoomID:        rec.RoomID,
			TargetUserID:  rec.TargetUserID,
			TargetDisplay: rec.TargetDisplay,
			MuteMinutes:   rec.MuteMinutes,
			StartedAt:     rec.StartedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count": len(votes),
		"votes": votes,
	})
}

// handleCancelVote removes an active vote before its window elapses.
func (s *Server) handleCancelVote(c echo.Context) error {
	voteID := c.Param("id")
	if voteID == "" {
		return apperrors.ValidationError("missing vote id")
	}
	if !s.votes.Cancel(voteID) {
		return apperrors.NotFoundError("vote not found").WithField("vote_id", voteID)
	}

	slog.Info("vote cancelled by operator", "vote_id", voteID)
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}
