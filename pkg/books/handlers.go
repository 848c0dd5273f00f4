package books

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/auth"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/models"
)

type handler struct {
	bookService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		UserID:   &userID,
		Wishlist: params.Wishlist,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	book := &models.Book{
		UserID:            userID,
		Title:             params.Title,
		Author:            params.Author,
		AuthorNationality: params.AuthorNationality,
		ISBN:              params.ISBN,
		CoverURL:          params.CoverURL,
		SpineColor:        params.SpineColor,
		PageCount:         params.PageCount,
		Genre:             params.Genre,
		Description:       params.Description,
		PublishedYear:     params.PublishedYear,
	}

	userBook := &models.UserBook{}
	if params.Status != nil {
		userBook.Status = *params.Status
	}
	userBook.Rating = params.Rating
	userBook.Review = params.Review

	if err := h.bookService.CreateBook(ctx, book, userBook); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID:     &book.ID,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateBookOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Author != nil && *params.Author != book.Author {
		book.Author = *params.Author
		opts.Columns = append(opts.Columns, "author")
	}
	if params.AuthorNationality != nil {
		book.AuthorNationality = params.AuthorNationality
		opts.Columns = append(opts.Columns, "author_nationality")
	}
	if params.ISBN != nil {
		book.ISBN = params.ISBN
		opts.Columns = append(opts.Columns, "isbn")
	}
	if params.CoverURL != nil {
		book.CoverURL = params.CoverURL
		opts.Columns = append(opts.Columns, "cover_url")
	}
	if params.SpineColor != nil {
		book.SpineColor = params.SpineColor
		opts.Columns = append(opts.Columns, "spine_color")
	}
	if params.PageCount != nil {
		book.PageCount = params.PageCount
		opts.Columns = append(opts.Columns, "page_count")
	}
	if params.Genre != nil {
		book.Genre = params.Genre
		opts.Columns = append(opts.Columns, "genre")
	}
	if params.Description != nil {
		book.Description = params.Description
		opts.Columns = append(opts.Columns, "description")
	}
	if params.PublishedYear != nil {
		book.PublishedYear = params.PublishedYear
		opts.Columns = append(opts.Columns, "published_year")
	}

	if err := h.bookService.UpdateBook(ctx, book, opts); err != nil {
		return errors.WithStack(err)
	}

	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	err = h.bookService.DeleteBook(ctx, DeleteBookOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// updateUserBook is the status/progress endpoint. Status changes go through
// the coordinator so the session ledger stays in step; the other fields are
// plain column updates.
func (h *handler) updateUserBook(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateUserBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	userBook, err := h.bookService.RetrieveUserBook(ctx, RetrieveUserBookOptions{
		BookID: &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateUserBookOptions{Columns: []string{}}

	if params.CurrentPage != nil {
		if userBook.Book != nil && userBook.Book.PageCount != nil && *params.CurrentPage > *userBook.Book.PageCount {
			return errcodes.ValidationError(fmt.Sprintf("%q must be less than or equal to the book's page count", "current_page"))
		}
		if *params.CurrentPage != userBook.CurrentPage {
			userBook.CurrentPage = *params.CurrentPage
			opts.Columns = append(opts.Columns, "current_page")
		}
	}
	if params.Rating != nil {
		userBook.Rating = params.Rating
		opts.Columns = append(opts.Columns, "rating")
	}
	if params.Review != nil {
		userBook.Review = params.Review
		opts.Columns = append(opts.Columns, "review")
	}

	if err := h.bookService.UpdateUserBook(ctx, userBook, opts); err != nil {
		return errors.WithStack(err)
	}

	if params.Status != nil {
		if err := h.bookService.TransitionStatus(ctx, userBook, *params.Status); err != nil {
			return errors.WithStack(err)
		}
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID:     &id,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}
