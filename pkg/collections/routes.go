package collections

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers collection routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	collectionService := NewService(db)

	h := &handler{
		collectionService: collectionService,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/books", h.addBooks)
	g.DELETE("/:id/books", h.removeBooks)
	g.PATCH("/:id/books/reorder", h.reorderBooks)
}
