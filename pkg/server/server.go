package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/tomeline/tomeline/pkg/auth"
	"github.com/tomeline/tomeline/pkg/binder"
	"github.com/tomeline/tomeline/pkg/books"
	"github.com/tomeline/tomeline/pkg/collections"
	"github.com/tomeline/tomeline/pkg/config"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/notes"
	"github.com/tomeline/tomeline/pkg/sessions"
	"github.com/tomeline/tomeline/pkg/stats"
	"github.com/tomeline/tomeline/pkg/users"
	"github.com/tomeline/tomeline/pkg/vocabulary"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Register auth routes and get the auth service
	authService := auth.RegisterRoutes(e, db, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)

	registerProtectedRoutes(e, db, authMiddleware)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// registerProtectedRoutes registers all API routes that require an
// authenticated session cookie.
func registerProtectedRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	// Books routes; reading sessions are nested under a book
	booksGroup := e.Group("/books")
	booksGroup.Use(authMiddleware.Authenticate)
	books.RegisterRoutesWithGroup(booksGroup, db)
	sessions.RegisterRoutesWithGroup(booksGroup, db)

	// Collections routes
	collectionsGroup := e.Group("/collections")
	collectionsGroup.Use(authMiddleware.Authenticate)
	collections.RegisterRoutesWithGroup(collectionsGroup, db)

	// Notes routes
	notesGroup := e.Group("/notes")
	notesGroup.Use(authMiddleware.Authenticate)
	notes.RegisterRoutesWithGroup(notesGroup, db)

	// Vocabulary routes
	vocabularyGroup := e.Group("/vocabulary")
	vocabularyGroup.Use(authMiddleware.Authenticate)
	vocabulary.RegisterRoutesWithGroup(vocabularyGroup, db)

	// Stats routes
	statsGroup := e.Group("/stats")
	statsGroup.Use(authMiddleware.Authenticate)
	stats.RegisterRoutesWithGroup(statsGroup, db)

	// Profile routes
	usersGroup := e.Group("/users")
	usersGroup.Use(authMiddleware.Authenticate)
	users.RegisterRoutesWithGroup(usersGroup, db)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
