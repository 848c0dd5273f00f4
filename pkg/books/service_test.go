package books

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/migrations"
	"github.com/tomeline/tomeline/pkg/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *bun.DB) *models.User {
	t.Helper()

	user := &models.User{Username: "reader", PasswordHash: "hash", Theme: models.ThemeFlatWhite}
	_, err := db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

func createTestBook(t *testing.T, db *bun.DB, userID int, status string) (*models.Book, *models.UserBook) {
	t.Helper()

	svc := NewService(db)
	pageCount := 320
	book := &models.Book{
		UserID:    userID,
		Title:     "The Left Hand of Darkness",
		Author:    "Ursula K. Le Guin",
		PageCount: &pageCount,
	}
	userBook := &models.UserBook{Status: status}
	err := svc.CreateBook(context.Background(), book, userBook)
	require.NoError(t, err)
	return book, userBook
}

func TestCreateBook(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	t.Run("want_to_read creates no session", func(tt *testing.T) {
		book, userBook := createTestBook(tt, db, user.ID, models.StatusWantToRead)
		assert.NotZero(tt, book.ID)
		assert.Equal(tt, models.StatusWantToRead, userBook.Status)
		assert.Nil(tt, userBook.CurrentSessionID)

		count, err := db.NewSelect().
			Model((*models.ReadingSession)(nil)).
			Where("user_book_id = ?", userBook.ID).
			Count(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 0, count)
	})

	t.Run("reading creates the first session", func(tt *testing.T) {
		pageCount := 200
		book := &models.Book{UserID: user.ID, Title: "Piranesi", Author: "Susanna Clarke", PageCount: &pageCount}
		userBook := &models.UserBook{Status: models.StatusReading}
		err := svc.CreateBook(ctx, book, userBook)
		require.NoError(tt, err)

		require.NotNil(tt, userBook.CurrentSessionID)
		require.NotNil(tt, userBook.StartedAt)

		session := &models.ReadingSession{}
		err = db.NewSelect().Model(session).Where("id = ?", *userBook.CurrentSessionID).Scan(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 1, session.ReadNumber)
		assert.NotNil(tt, session.StartedAt)
		assert.Nil(tt, session.FinishedAt)
	})

	t.Run("completed creates a finished session and fills current_page", func(tt *testing.T) {
		pageCount := 180
		rating := 5
		book := &models.Book{UserID: user.ID, Title: "Convenience Store Woman", Author: "Sayaka Murata", PageCount: &pageCount}
		userBook := &models.UserBook{Status: models.StatusCompleted, Rating: &rating}
		err := svc.CreateBook(ctx, book, userBook)
		require.NoError(tt, err)

		assert.Equal(tt, pageCount, userBook.CurrentPage)
		require.NotNil(tt, userBook.FinishedAt)
		require.NotNil(tt, userBook.CurrentSessionID)

		session := &models.ReadingSession{}
		err = db.NewSelect().Model(session).Where("id = ?", *userBook.CurrentSessionID).Scan(ctx)
		require.NoError(tt, err)
		assert.NotNil(tt, session.FinishedAt)
		require.NotNil(tt, session.Rating)
		assert.Equal(tt, rating, *session.Rating)
	})
}

func TestTransitionStatus(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	t.Run("want_to_read to reading opens the first session", func(tt *testing.T) {
		_, userBook := createTestBook(tt, db, user.ID, models.StatusWantToRead)

		err := svc.TransitionStatus(ctx, userBook, models.StatusReading)
		require.NoError(tt, err)

		assert.Equal(tt, models.StatusReading, userBook.Status)
		require.NotNil(tt, userBook.CurrentSessionID)
		require.NotNil(tt, userBook.StartedAt)

		session := &models.ReadingSession{}
		err = db.NewSelect().Model(session).Where("id = ?", *userBook.CurrentSessionID).Scan(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 1, session.ReadNumber)
		assert.NotNil(tt, session.StartedAt)
		assert.Nil(tt, session.FinishedAt)
	})

	t.Run("reading to completed closes the current session", func(tt *testing.T) {
		_, userBook := createTestBook(tt, db, user.ID, models.StatusWantToRead)
		require.NoError(tt, svc.TransitionStatus(ctx, userBook, models.StatusReading))
		sessionID := *userBook.CurrentSessionID

		err := svc.TransitionStatus(ctx, userBook, models.StatusCompleted)
		require.NoError(tt, err)

		assert.Equal(tt, models.StatusCompleted, userBook.Status)
		require.NotNil(tt, userBook.FinishedAt)
		// Pointer is kept so the session stays editable from the book page.
		require.NotNil(tt, userBook.CurrentSessionID)
		assert.Equal(tt, sessionID, *userBook.CurrentSessionID)

		session := &models.ReadingSession{}
		err = db.NewSelect().Model(session).Where("id = ?", sessionID).Scan(ctx)
		require.NoError(tt, err)
		assert.NotNil(tt, session.FinishedAt)

		count, err := db.NewSelect().
			Model((*models.ReadingSession)(nil)).
			Where("user_book_id = ?", userBook.ID).
			Count(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 1, count, "completing must never create a session")
	})

	t.Run("completed to reading starts a re-read", func(tt *testing.T) {
		_, userBook := createTestBook(tt, db, user.ID, models.StatusWantToRead)
		require.NoError(tt, svc.TransitionStatus(ctx, userBook, models.StatusReading))
		firstSessionID := *userBook.CurrentSessionID
		require.NoError(tt, svc.TransitionStatus(ctx, userBook, models.StatusCompleted))

		err := svc.TransitionStatus(ctx, userBook, models.StatusReading)
		require.NoError(tt, err)

		require.NotNil(tt, userBook.CurrentSessionID)
		assert.NotEqual(tt, firstSessionID, *userBook.CurrentSessionID)

		session := &models.ReadingSession{}
		err = db.NewSelect().Model(session).Where("id = ?", *userBook.CurrentSessionID).Scan(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 2, session.ReadNumber)
		assert.Nil(tt, session.FinishedAt)
	})

	t.Run("reading with a stale current session reuses it", func(tt *testing.T) {
		_, userBook := createTestBook(tt, db, user.ID, models.StatusWantToRead)
		require.NoError(tt, svc.TransitionStatus(ctx, userBook, models.StatusReading))
		sessionID := *userBook.CurrentSessionID

		// Shelve it without completing, then pick it back up.
		require.NoError(tt, svc.TransitionStatus(ctx, userBook, models.StatusWantToRead))
		require.NoError(tt, svc.TransitionStatus(ctx, userBook, models.StatusReading))

		require.NotNil(tt, userBook.CurrentSessionID)
		assert.Equal(tt, sessionID, *userBook.CurrentSessionID)

		count, err := db.NewSelect().
			Model((*models.ReadingSession)(nil)).
			Where("user_book_id = ?", userBook.ID).
			Count(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 1, count)
	})

	t.Run("shelf statuses only change the status", func(tt *testing.T) {
		_, userBook := createTestBook(tt, db, user.ID, models.StatusWantToRead)

		err := svc.TransitionStatus(ctx, userBook, models.StatusWishlist)
		require.NoError(tt, err)
		assert.Equal(tt, models.StatusWishlist, userBook.Status)
		assert.Nil(tt, userBook.CurrentSessionID)

		count, err := db.NewSelect().
			Model((*models.ReadingSession)(nil)).
			Where("user_book_id = ?", userBook.ID).
			Count(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 0, count)
	})

	t.Run("same status is a no-op", func(tt *testing.T) {
		_, userBook := createTestBook(tt, db, user.ID, models.StatusWantToRead)
		updatedAt := userBook.UpdatedAt

		err := svc.TransitionStatus(ctx, userBook, models.StatusWantToRead)
		require.NoError(tt, err)
		assert.Equal(tt, updatedAt, userBook.UpdatedAt)
	})
}

func TestTransitionStatus_ReadNumbersAreSequential(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)
	_, userBook := createTestBook(t, db, user.ID, models.StatusWantToRead)

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.TransitionStatus(ctx, userBook, models.StatusReading))
		require.NoError(t, svc.TransitionStatus(ctx, userBook, models.StatusCompleted))
	}

	sessions := []*models.ReadingSession{}
	err := db.NewSelect().
		Model(&sessions).
		Where("user_book_id = ?", userBook.ID).
		Order("read_number ASC").
		Scan(ctx)
	require.NoError(t, err)

	require.Len(t, sessions, 4)
	for i, session := range sessions {
		assert.Equal(t, i+1, session.ReadNumber)
		assert.NotNil(t, session.FinishedAt)
	}
}

func TestListBooks_WishlistFilter(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	createTestBook(t, db, user.ID, models.StatusWantToRead)
	createTestBook(t, db, user.ID, models.StatusReading)

	wished := &models.Book{UserID: user.ID, Title: "Piranesi", Author: "Susanna Clarke"}
	err := svc.CreateBook(ctx, wished, &models.UserBook{Status: models.StatusWishlist})
	require.NoError(t, err)

	wishlist := true
	library := false

	books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{UserID: &user.ID, Wishlist: &library})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, b := range books {
		require.NotNil(t, b.UserBook)
		assert.NotEqual(t, models.StatusWishlist, b.UserBook.Status)
	}

	books, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{UserID: &user.ID, Wishlist: &wishlist})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, "Piranesi", books[0].Title)
}

func TestListBooks_ScopedByUser(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)
	book, _ := createTestBook(t, db, user.ID, models.StatusReading)

	other := &models.User{Username: "other", PasswordHash: "hash"}
	_, err := db.NewInsert().Model(other).Exec(ctx)
	require.NoError(t, err)

	books, err := svc.ListBooks(ctx, ListBooksOptions{UserID: &other.ID})
	require.NoError(t, err)
	assert.Empty(t, books)

	// Another user's book is indistinguishable from a missing one.
	_, err = svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID, UserID: &other.ID})
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)
}

func TestDeleteBook_CascadesDependentRows(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	book, _ := createTestBook(t, db, user.ID, models.StatusReading)

	note := &models.Note{UserID: user.ID, BookID: book.ID, Content: "lovely prose"}
	_, err := db.NewInsert().Model(note).Exec(ctx)
	require.NoError(t, err)

	word := &models.Vocabulary{UserID: user.ID, BookID: book.ID, Term: "shifgrethor", Definition: "prestige, face"}
	_, err = db.NewInsert().Model(word).Exec(ctx)
	require.NoError(t, err)

	collection := &models.Collection{UserID: user.ID, Name: "Sci-fi"}
	_, err = db.NewInsert().Model(collection).Exec(ctx)
	require.NoError(t, err)
	membership := &models.BookCollection{CollectionID: collection.ID, BookID: book.ID}
	_, err = db.NewInsert().Model(membership).Exec(ctx)
	require.NoError(t, err)

	err = svc.DeleteBook(ctx, DeleteBookOptions{ID: &book.ID, UserID: &user.ID})
	require.NoError(t, err)

	for _, model := range []interface{}{
		(*models.Note)(nil),
		(*models.Vocabulary)(nil),
		(*models.BookCollection)(nil),
		(*models.ReadingSession)(nil),
		(*models.UserBook)(nil),
	} {
		count, err := db.NewSelect().Model(model).Where("book_id = ?", book.ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	}

	_, err = svc.RetrieveUserBook(ctx, RetrieveUserBookOptions{BookID: &book.ID, UserID: &user.ID})
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 404, codeErr.HTTPCode)
}
