package sessions

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers session routes on the books group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	sessionService := NewService(db)

	h := &handler{
		sessionService: sessionService,
	}

	g.GET("/:id/sessions", h.list)
	g.POST("/:id/sessions/new", h.startNewRead)
	g.PATCH("/:id/sessions/:sessionId", h.update)
	g.DELETE("/:id/sessions/:sessionId", h.delete)
}
