package notes

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
	noteService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListNotesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	notes, err := h.noteService.ListNotes(ctx, ListNotesOptions{
		BookID: params.BookID,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Notes []*models.Note `json:"notes"`
	}{notes}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateNotePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	note := &models.Note{
		UserID:     userID,
		BookID:     params.BookID,
		Content:    params.Content,
		IsQuote:    params.IsQuote,
		PageNumber: params.PageNumber,
	}

	if err := h.noteService.CreateNote(ctx, note); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, note))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Note")
	}

	params := UpdateNotePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	note, err := h.noteService.RetrieveNote(ctx, RetrieveNoteOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateNoteOptions{Columns: []string{}}

	if params.Content != nil && *params.Content != note.Content {
		note.Content = *params.Content
		opts.Columns = append(opts.Columns, "content")
	}
	if params.IsQuote != nil {
		note.IsQuote = *params.IsQuote
		opts.Columns = append(opts.Columns, "is_quote")
	}
	if params.PageNumber != nil {
		note.PageNumber = params.PageNumber
		opts.Columns = append(opts.Columns, "page_number")
	}

	if err := h.noteService.UpdateNote(ctx, note, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, note))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Note")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	err = h.noteService.DeleteNote(ctx, RetrieveNoteOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
