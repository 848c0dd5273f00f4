package vocabulary

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
	vocabularyService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListWordsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	words, err := h.vocabularyService.ListWords(ctx, ListWordsOptions{
		BookID: params.BookID,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Words []*models.Vocabulary `json:"words"`
	}{words}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateWordPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	word := &models.Vocabulary{
		UserID:       userID,
		BookID:       params.BookID,
		Term:         params.Term,
		Definition:   params.Definition,
		PartOfSpeech: params.PartOfSpeech,
		Phonetic:     params.Phonetic,
		Example:      params.Example,
		PageNumber:   params.PageNumber,
	}

	if err := h.vocabularyService.CreateWord(ctx, word); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, word))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Word")
	}

	params := UpdateWordPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	word, err := h.vocabularyService.RetrieveWord(ctx, RetrieveWordOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateWordOptions{Columns: []string{}}

	if params.Term != nil && *params.Term != word.Term {
		word.Term = *params.Term
		opts.Columns = append(opts.Columns, "term")
	}
	if params.Definition != nil && *params.Definition != word.Definition {
		word.Definition = *params.Definition
		opts.Columns = append(opts.Columns, "definition")
	}
	if params.PartOfSpeech != nil {
		word.PartOfSpeech = params.PartOfSpeech
		opts.Columns = append(opts.Columns, "part_of_speech")
	}
	if params.Phonetic != nil {
		word.Phonetic = params.Phonetic
		opts.Columns = append(opts.Columns, "phonetic")
	}
	if params.Example != nil {
		word.Example = params.Example
		opts.Columns = append(opts.Columns, "example")
	}
	if params.PageNumber != nil {
		word.PageNumber = params.PageNumber
		opts.Columns = append(opts.Columns, "page_number")
	}

	if err := h.vocabularyService.UpdateWord(ctx, word, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, word))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Word")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	err = h.vocabularyService.DeleteWord(ctx, RetrieveWordOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
