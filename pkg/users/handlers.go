package users

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/auth"
	"github.com/tomeline/tomeline/pkg/errcodes"
)

type handler struct {
	userService *Service
}

func (h *handler) me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) updateMe(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateProfilePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateUserOptions{Columns: []string{}}

	if params.DisplayName != nil {
		user.DisplayName = params.DisplayName
		opts.Columns = append(opts.Columns, "display_name")
	}
	if params.Theme != nil && *params.Theme != user.Theme {
		user.Theme = *params.Theme
		opts.Columns = append(opts.Columns, "theme")
	}

	if err := h.userService.UpdateUser(ctx, user, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}
