package collections

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func createBook(t *testing.T, db *bun.DB, userID int, title string) *models.Book {
	t.Helper()

	cover := "https://covers.example/" + title + ".jpg"
	book := &models.Book{UserID: userID, Title: title, Author: "Author", CoverURL: &cover}
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

func displayedTitles(t *testing.T, svc *Service, collectionID, userID int) []string {
	t.Helper()

	collection, err := svc.RetrieveCollection(context.Background(), RetrieveCollectionOptions{ID: &collectionID, UserID: &userID})
	require.NoError(t, err)

	titles := make([]string, 0, len(collection.BookCollections))
	for _, membership := range collection.BookCollections {
		require.NotNil(t, membership.Book)
		titles = append(titles, membership.Book.Title)
	}
	return titles
}

func TestReorderBooks(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	setupCollection := func(tt *testing.T, name string, titles ...string) (*models.Collection, map[string]*models.Book) {
		collection, err := svc.CreateCollection(ctx, CreateCollectionOptions{UserID: user.ID, Name: name})
		require.NoError(tt, err)

		byTitle := map[string]*models.Book{}
		ids := []int{}
		for _, title := range titles {
			book := createBook(tt, db, user.ID, name+"/"+title)
			byTitle[title] = book
			ids = append(ids, book.ID)
		}
		require.NoError(tt, svc.AddBooks(ctx, AddBooksOptions{CollectionID: collection.ID, BookIDs: ids}))
		require.NoError(tt, svc.ReorderBooks(ctx, ReorderBooksOptions{CollectionID: collection.ID, BookIDs: ids}))
		return collection, byTitle
	}

	t.Run("rewrites positions to the new order", func(tt *testing.T) {
		collection, byTitle := setupCollection(tt, "e", "A", "B", "C")

		// [A,B,C] -> [C,A,B]
		err := svc.ReorderBooks(ctx, ReorderBooksOptions{
			CollectionID: collection.ID,
			BookIDs:      []int{byTitle["C"].ID, byTitle["A"].ID, byTitle["B"].ID},
		})
		require.NoError(tt, err)

		positions := map[string]int{}
		for title, book := range byTitle {
			membership := &models.BookCollection{}
			err := db.NewSelect().
				Model(membership).
				Where("bc.collection_id = ? AND bc.book_id = ?", collection.ID, book.ID).
				Scan(ctx)
			require.NoError(tt, err)
			require.NotNil(tt, membership.Position)
			positions[title] = *membership.Position
		}
		assert.Equal(tt, map[string]int{"A": 1, "B": 2, "C": 0}, positions)

		titles := displayedTitles(tt, svc, collection.ID, user.ID)
		assert.Equal(tt, []string{"e/C", "e/A", "e/B"}, titles)
	})

	t.Run("reordering to the current order changes nothing visible", func(tt *testing.T) {
		collection, byTitle := setupCollection(tt, "noop", "A", "B", "C")
		before := displayedTitles(tt, svc, collection.ID, user.ID)

		err := svc.ReorderBooks(ctx, ReorderBooksOptions{
			CollectionID: collection.ID,
			BookIDs:      []int{byTitle["A"].ID, byTitle["B"].ID, byTitle["C"].ID},
		})
		require.NoError(tt, err)

		after := displayedTitles(tt, svc, collection.ID, user.ID)
		assert.Equal(tt, before, after)
	})
}

func TestRetrieveCollection_NullPositionsSortLastAndStable(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	collection, err := svc.CreateCollection(ctx, CreateCollectionOptions{UserID: user.ID, Name: "mixed"})
	require.NoError(t, err)

	// Insert five memberships with positions [2, null, 0, null, 1] in this
	// creation order.
	positions := []*int{intPtr(2), nil, intPtr(0), nil, intPtr(1)}
	titles := []string{}
	for i, position := range positions {
		title := fmt.Sprintf("book-%d", i)
		titles = append(titles, title)
		book := createBook(t, db, user.ID, title)
		membership := &models.BookCollection{CollectionID: collection.ID, BookID: book.ID, Position: position}
		_, err := db.NewInsert().Model(membership).Exec(ctx)
		require.NoError(t, err)
	}

	displayed := displayedTitles(t, svc, collection.ID, user.ID)
	// Positioned rows ascending, then the null rows in insert order.
	assert.Equal(t, []string{titles[2], titles[4], titles[0], titles[1], titles[3]}, displayed)
}

func TestAddBooks(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	collection, err := svc.CreateCollection(ctx, CreateCollectionOptions{UserID: user.ID, Name: "tbr"})
	require.NoError(t, err)
	book := createBook(t, db, user.ID, "Bleak House")

	t.Run("added books have no position and display last", func(tt *testing.T) {
		positioned := createBook(tt, db, user.ID, "Positioned")
		require.NoError(tt, svc.AddBooks(ctx, AddBooksOptions{CollectionID: collection.ID, BookIDs: []int{positioned.ID}}))
		require.NoError(tt, svc.ReorderBooks(ctx, ReorderBooksOptions{CollectionID: collection.ID, BookIDs: []int{positioned.ID}}))

		require.NoError(tt, svc.AddBooks(ctx, AddBooksOptions{CollectionID: collection.ID, BookIDs: []int{book.ID}}))

		membership := &models.BookCollection{}
		err := db.NewSelect().
			Model(membership).
			Where("bc.collection_id = ? AND bc.book_id = ?", collection.ID, book.ID).
			Scan(ctx)
		require.NoError(tt, err)
		assert.Nil(tt, membership.Position)

		displayed := displayedTitles(tt, svc, collection.ID, user.ID)
		assert.Equal(tt, []string{"Positioned", "Bleak House"}, displayed)
	})

	t.Run("adding the same book twice is a no-op", func(tt *testing.T) {
		require.NoError(tt, svc.AddBooks(ctx, AddBooksOptions{CollectionID: collection.ID, BookIDs: []int{book.ID}}))

		count, err := db.NewSelect().
			Model((*models.BookCollection)(nil)).
			Where("collection_id = ? AND book_id = ?", collection.ID, book.ID).
			Count(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, 1, count)
	})
}

func TestListCollections_CountsAndPreviews(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	collection, err := svc.CreateCollection(ctx, CreateCollectionOptions{UserID: user.ID, Name: "classics"})
	require.NoError(t, err)

	ids := []int{}
	for i := 0; i < 6; i++ {
		book := createBook(t, db, user.ID, fmt.Sprintf("classic-%d", i))
		ids = append(ids, book.ID)
	}
	require.NoError(t, svc.AddBooks(ctx, AddBooksOptions{CollectionID: collection.ID, BookIDs: ids}))

	empty, err := svc.CreateCollection(ctx, CreateCollectionOptions{UserID: user.ID, Name: "a-empty"})
	require.NoError(t, err)

	collections, total, err := svc.ListCollectionsWithTotal(ctx, ListCollectionsOptions{UserID: &user.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, collections, 2)

	// Sorted by name.
	assert.Equal(t, empty.ID, collections[0].ID)
	assert.Zero(t, collections[0].BookCount)
	assert.Empty(t, collections[0].PreviewCovers)

	assert.Equal(t, collection.ID, collections[1].ID)
	assert.Equal(t, 6, collections[1].BookCount)
	assert.Len(t, collections[1].PreviewCovers, 4)
}

func TestDeleteCollection_RemovesMemberships(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	user := createTestUser(t, db)

	collection, err := svc.CreateCollection(ctx, CreateCollectionOptions{UserID: user.ID, Name: "doomed"})
	require.NoError(t, err)
	book := createBook(t, db, user.ID, "Ephemeral")
	require.NoError(t, svc.AddBooks(ctx, AddBooksOptions{CollectionID: collection.ID, BookIDs: []int{book.ID}}))

	require.NoError(t, svc.DeleteCollection(ctx, DeleteCollectionOptions{ID: &collection.ID, UserID: &user.ID}))

	count, err := db.NewSelect().
		Model((*models.BookCollection)(nil)).
		Where("collection_id = ?", collection.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The book itself survives.
	exists, err := db.NewSelect().Model((*models.Book)(nil)).Where("id = ?", book.ID).Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func intPtr(i int) *int { return &i }
