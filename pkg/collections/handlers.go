package collections

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
	collectionService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListCollectionsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	collections, total, err := h.collectionService.ListCollectionsWithTotal(ctx, ListCollectionsOptions{
		UserID: &userID,
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Collections []*models.Collection `json:"collections"`
		Total       int                  `json:"total"`
	}{collections, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateCollectionPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	collection, err := h.collectionService.CreateCollection(ctx, CreateCollectionOptions{
		UserID:      userID,
		Name:        params.Name,
		Description: params.Description,
		CoverURL:    params.CoverURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, collection))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	collection, err := h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	params := UpdateCollectionPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	collection, err := h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateCollectionOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != collection.Name {
		collection.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Description != nil {
		collection.Description = params.Description
		opts.Columns = append(opts.Columns, "description")
	}
	if params.CoverURL != nil {
		collection.CoverURL = params.CoverURL
		opts.Columns = append(opts.Columns, "cover_url")
	}

	if err := h.collectionService.UpdateCollection(ctx, collection, opts); err != nil {
		return errors.WithStack(err)
	}

	collection, err = h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	err = h.collectionService.DeleteCollection(ctx, DeleteCollectionOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// resolveOwned loads the collection scoped by the acting user so membership
// writes can't touch someone else's collection.
func (h *handler) resolveOwned(c echo.Context) (*models.Collection, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, errcodes.NotFound("Collection")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return nil, errcodes.Unauthorized("Authentication required")
	}

	return h.collectionService.RetrieveCollection(c.Request().Context(), RetrieveCollectionOptions{
		ID:     &id,
		UserID: &userID,
	})
}

func (h *handler) addBooks(c echo.Context) error {
	ctx := c.Request().Context()

	params := BooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	collection, err := h.resolveOwned(c)
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.collectionService.AddBooks(ctx, AddBooksOptions{
		CollectionID: collection.ID,
		BookIDs:      params.BookIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	collection, err = h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID:     &collection.ID,
		UserID: &collection.UserID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}

func (h *handler) removeBooks(c echo.Context) error {
	ctx := c.Request().Context()

	params := BooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	collection, err := h.resolveOwned(c)
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.collectionService.RemoveBooks(ctx, RemoveBooksOptions{
		CollectionID: collection.ID,
		BookIDs:      params.BookIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) reorderBooks(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReorderBooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	collection, err := h.resolveOwned(c)
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.collectionService.ReorderBooks(ctx, ReorderBooksOptions{
		CollectionID: collection.ID,
		BookIDs:      params.BookIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	collection, err = h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID:     &collection.ID,
		UserID: &collection.UserID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}
