package stats

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomeline/tomeline/pkg/books"
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

type fixtureBook struct {
	title     string
	author    string
	genre     string
	pageCount int
	status    string
	rating    *int
}

func createFixtureBook(t *testing.T, db *bun.DB, userID int, fb fixtureBook) (*models.Book, *models.UserBook) {
	t.Helper()

	book := &models.Book{UserID: userID, Title: fb.title, Author: fb.author}
	if fb.genre != "" {
		book.Genre = &fb.genre
	}
	if fb.pageCount > 0 {
		book.PageCount = &fb.pageCount
	}
	userBook := &models.UserBook{Status: fb.status, Rating: fb.rating}
	require.NoError(t, books.NewService(db).CreateBook(context.Background(), book, userBook))
	return book, userBook
}

func ptrInt(i int) *int { return &i }

func TestOverview_CountsAndRatings(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	createFixtureBook(t, db, user.ID, fixtureBook{title: "A", author: "Le Guin", genre: "Sci-fi", pageCount: 300, status: models.StatusCompleted, rating: ptrInt(5)})
	createFixtureBook(t, db, user.ID, fixtureBook{title: "B", author: "Le Guin", genre: "Sci-fi", pageCount: 200, status: models.StatusCompleted, rating: ptrInt(3)})
	createFixtureBook(t, db, user.ID, fixtureBook{title: "C", author: "Morrison", genre: "Fiction", pageCount: 275, status: models.StatusReading})
	createFixtureBook(t, db, user.ID, fixtureBook{title: "D", author: "Clarke", status: models.StatusWantToRead})
	createFixtureBook(t, db, user.ID, fixtureBook{title: "E", author: "Murata", status: models.StatusWishlist})

	overview, err := svc.Overview(ctx, user.ID)
	require.NoError(t, err)

	// Wishlist books are reported separately, not part of the library.
	assert.Equal(t, 4, overview.TotalBooks)
	assert.Equal(t, 1, overview.WantToRead)
	assert.Equal(t, 1, overview.Reading)
	assert.Equal(t, 2, overview.Completed)
	assert.Equal(t, 1, overview.Wishlist)

	// Only completed books contribute pages.
	assert.Equal(t, 500, overview.TotalPagesRead)

	require.NotNil(t, overview.AverageRating)
	assert.InDelta(t, 4.0, *overview.AverageRating, 0.001)

	assert.Equal(t, 4, overview.UniqueAuthors)
	require.NotNil(t, overview.TopAuthor)
	assert.Equal(t, "Le Guin", *overview.TopAuthor)

	// Each completed book opened one finished session at creation.
	assert.Equal(t, 2, overview.TotalReads)
	assert.Equal(t, 2, overview.ThisYearReads)
}

func TestOverview_PagesCountOncePerBookAcrossReReads(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	bookSvc := books.NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	_, userBook := createFixtureBook(t, db, user.ID, fixtureBook{title: "A", author: "Harvey", pageCount: 250, status: models.StatusCompleted})

	// Re-read the book to completion, producing a second finished session.
	require.NoError(t, bookSvc.TransitionStatus(ctx, userBook, models.StatusReading))
	require.NoError(t, bookSvc.TransitionStatus(ctx, userBook, models.StatusCompleted))

	overview, err := svc.Overview(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, overview.TotalReads)
	assert.Equal(t, 250, overview.TotalPagesRead, "re-reads must not double the page total")
}

func TestOverview_TopAuthorTieBrokenByFirstAdded(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	createFixtureBook(t, db, user.ID, fixtureBook{title: "A", author: "Morrison", status: models.StatusCompleted})
	createFixtureBook(t, db, user.ID, fixtureBook{title: "B", author: "Le Guin", status: models.StatusCompleted})

	overview, err := svc.Overview(ctx, user.ID)
	require.NoError(t, err)

	require.NotNil(t, overview.TopAuthor)
	assert.Equal(t, "Morrison", *overview.TopAuthor)
}

func TestOverview_EmptyLibrary(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	overview, err := svc.Overview(ctx, user.ID)
	require.NoError(t, err)

	assert.Zero(t, overview.TotalBooks)
	assert.Nil(t, overview.AverageRating)
	assert.Nil(t, overview.TopAuthor)
	assert.Empty(t, overview.GenreDistribution)
	require.Len(t, overview.MonthlyTimeline, 12)
	for _, bucket := range overview.MonthlyTimeline {
		assert.Zero(t, bucket.Count)
	}
}

func TestOverviewAt_MonthlyTimeline(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	book, userBook := createFixtureBook(t, db, user.ID, fixtureBook{title: "A", author: "Harvey", status: models.StatusWantToRead})

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	insertFinished := func(tt *testing.T, readNumber int, finishedAt time.Time) {
		startedAt := finishedAt.AddDate(0, 0, -7)
		session := &models.ReadingSession{
			UserID:     user.ID,
			BookID:     book.ID,
			UserBookID: userBook.ID,
			ReadNumber: readNumber,
			StartedAt:  &startedAt,
			FinishedAt: &finishedAt,
			CreatedAt:  finishedAt,
			UpdatedAt:  finishedAt,
		}
		_, err := db.NewInsert().Model(session).Exec(ctx)
		require.NoError(tt, err)
	}

	// First instant of the oldest bucket (April 2025): included.
	insertFinished(t, 1, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	// Just before the window: excluded.
	insertFinished(t, 2, time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC))
	// Middle of the window, across the year boundary.
	insertFinished(t, 3, time.Date(2025, time.December, 25, 10, 0, 0, 0, time.UTC))
	insertFinished(t, 4, time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC))
	// Current month: included.
	insertFinished(t, 5, time.Date(2026, time.March, 15, 11, 0, 0, 0, time.UTC))

	overview, err := svc.overviewAt(ctx, user.ID, now)
	require.NoError(t, err)

	require.Len(t, overview.MonthlyTimeline, 12)

	first := overview.MonthlyTimeline[0]
	assert.Equal(t, 2025, first.Year)
	assert.Equal(t, 4, first.Month)
	assert.Equal(t, 1, first.Count, "the first instant of the oldest month is inside the window")

	last := overview.MonthlyTimeline[11]
	assert.Equal(t, 2026, last.Year)
	assert.Equal(t, 3, last.Month)
	assert.Equal(t, 1, last.Count)

	var total int
	for _, bucket := range overview.MonthlyTimeline {
		total += bucket.Count
	}
	assert.Equal(t, 4, total, "the session finished before the window is not bucketed")

	// All five finished sessions still count toward the lifetime total.
	assert.Equal(t, 5, overview.TotalReads)
	assert.Equal(t, 2, overview.ThisYearReads)
}
