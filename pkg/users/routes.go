package users

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers profile routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	g.GET("/me", h.me)
	g.PATCH("/me", h.updateMe)
}
