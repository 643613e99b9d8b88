package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mutevote/internal/command"
	"mutevote/internal/domain"
	"mutevote/internal/engine"
	"mutevote/internal/platform/correlation"
)

// maxEventBody caps the webhook payload size.
const maxEventBody = 1 << 20

// handleEvent receives OneBot event deliveries. Non-command events are
// acknowledged with 204; vote commands are answered via the quick-reply
// mechanism, so the backend posts the reply into the originating chat.
func (s *Server) handleEvent(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEventBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	inv, ok := command.Normalize(body)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}

	cmd, ok := command.Parse(inv)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}

	ctx := correlation.WithID(c.Request().Context(), correlation.NewID())

	switch cmd.Kind {
	case command.KindHelp:
		return s.reply(c, command.HelpText)
	case command.KindPropose:
		if inv.RoomID == "" {
			return s.reply(c, command.RenderError(domain.ErrNotInGroupChat))
		}

		targetID, display, found := command.ResolveTarget(inv, cmd.TargetRef)
		if !found {
			return s.reply(c, command.RenderError(domain.ErrTargetNotFound))
		}

		req := domain.ProposeRequest{
			RoomID:        inv.RoomID,
			RequesterID:   inv.RequesterID,
			TargetUserID:  targetID,
			TargetDisplay: display,
			MuteMinutes:   cmd.Minutes,
		}

		voteID, err := s.votes.Propose(ctx, req)
		if err != nil {
			if !engine.IsAdmissionError(err) {
				slog.ErrorContext(ctx, "proposal failed",
					"room_id", inv.RoomID,
					"target", targetID,
					"error", err,
				)
			}
			return s.reply(c, command.RenderError(err))
		}

		slog.InfoContext(ctx, "vote started",
			"vote_id", voteID,
			"room_id", inv.RoomID,
			"target", targetID,
			"requester", inv.RequesterID,
		)
		return c.NoContent(http.StatusNoContent)
	default:
		return c.NoContent(http.StatusNoContent)
	}
}

// reply uses the OneBot quick-operation response: returning {"reply": text}
// from the webhook makes the backend send text into the originating chat.
func (s *Server) reply(c echo.Context, text string) error {
	return c.JSON(http.StatusOK, map[string]string{"reply": text})
}
