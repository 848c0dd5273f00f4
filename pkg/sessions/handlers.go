package sessions

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/auth"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/models"
)

type handler struct {
	sessionService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	sessions, err := h.sessionService.ListSessions(ctx, ListSessionsOptions{
		BookID: &bookID,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Sessions []*models.ReadingSession `json:"sessions"`
	}{sessions}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) startNewRead(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	session, err := h.sessionService.StartNewRead(ctx, StartNewReadOptions{
		BookID: &bookID,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, session))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}
	sessionID, err := strconv.Atoi(c.Param("sessionId"))
	if err != nil {
		return errcodes.NotFound("Session")
	}

	params := UpdateSessionPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	session, err := h.sessionService.RetrieveSession(ctx, RetrieveSessionOptions{
		ID:     &sessionID,
		BookID: &bookID,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateSessionOptions{Columns: []string{}}

	if params.StartedAt != nil {
		session.StartedAt = params.StartedAt
		opts.Columns = append(opts.Columns, "started_at")
	}
	if params.FinishedAt != nil {
		session.FinishedAt = params.FinishedAt
		opts.Columns = append(opts.Columns, "finished_at")
	}
	if params.Rating != nil {
		session.Rating = params.Rating
		opts.Columns = append(opts.Columns, "rating")
	}
	if params.Review != nil {
		session.Review = params.Review
		opts.Columns = append(opts.Columns, "review")
	}

	if err := h.sessionService.UpdateSession(ctx, session, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, session))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID, err := strconv.Atoi(c.Param("sessionId"))
	if err != nil {
		return errcodes.NotFound("Session")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	err = h.sessionService.DeleteSession(ctx, DeleteSessionOptions{
		ID:     &sessionID,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
