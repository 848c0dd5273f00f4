package collections

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

type CreateCollectionOptions struct {
	UserID      int
	Name        string
	Description *string
	CoverURL    *string
}

func (svc *Service) CreateCollection(ctx context.Context, opts CreateCollectionOptions) (*models.Collection, error) {
	now := time.Now()

	collection := &models.Collection{
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      opts.UserID,
		Name:        opts.Name,
		Description: opts.Description,
		CoverURL:    opts.CoverURL,
	}

	_, err := svc.db.
		NewInsert().
		Model(collection).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return collection, nil
}

type RetrieveCollectionOptions struct {
	ID     *int
	UserID *int
}

// RetrieveCollection loads a collection with its books in display order:
// positioned rows first in ascending order, then unpositioned rows. Ties and
// nulls fall back to the join row id, so relative insert order is stable.
func (svc *Service) RetrieveCollection(ctx context.Context, opts RetrieveCollectionOptions) (*models.Collection, error) {
	collection := &models.Collection{}

	q := svc.db.
		NewSelect().
		Model(collection).
		Relation("BookCollections", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("bc.position ASC NULLS LAST", "bc.id ASC")
		}).
		Relation("BookCollections.Book").
		Relation("BookCollections.Book.UserBook")

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}
	if opts.UserID != nil {
		q = q.Where("c.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Collection")
		}
		return nil, errors.WithStack(err)
	}

	return collection, nil
}

type ListCollectionsOptions struct {
	UserID       *int
	Limit        *int
	Offset       *int
	includeTotal bool
}

func (svc *Service) ListCollections(ctx context.Context, opts ListCollectionsOptions) ([]*models.Collection, error) {
	collections, _, err := svc.listCollectionsWithTotal(ctx, opts)
	return collections, errors.WithStack(err)
}

func (svc *Service) ListCollectionsWithTotal(ctx context.Context, opts ListCollectionsOptions) ([]*models.Collection, int, error) {
	opts.includeTotal = true
	return svc.listCollectionsWithTotal(ctx, opts)
}

func (svc *Service) listCollectionsWithTotal(ctx context.Context, opts ListCollectionsOptions) ([]*models.Collection, int, error) {
	collections := []*models.Collection{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&collections).
		ColumnExpr("c.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_collections AS bc WHERE bc.collection_id = c.id) AS book_count").
		Order("c.name ASC")

	if opts.UserID != nil {
		q = q.Where("c.user_id = ?", *opts.UserID)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	if err := svc.attachPreviewCovers(ctx, collections); err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return collections, total, nil
}

// attachPreviewCovers fills in up to four cover URLs per collection, taken in
// display order, for the collection grid.
func (svc *Service) attachPreviewCovers(ctx context.Context, collections []*models.Collection) error {
	for _, collection := range collections {
		memberships := []*models.BookCollection{}
		err := svc.db.
			NewSelect().
			Model(&memberships).
			Relation("Book").
			Where("bc.collection_id = ?", collection.ID).
			Order("bc.position ASC NULLS LAST", "bc.id ASC").
			Limit(4).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		covers := []string{}
		for _, membership := range memberships {
			if membership.Book != nil && membership.Book.CoverURL != nil {
				covers = append(covers, *membership.Book.CoverURL)
			}
		}
		collection.PreviewCovers = covers
	}
	return nil
}

type UpdateCollectionOptions struct {
	Columns []string
}

func (svc *Service) UpdateCollection(ctx context.Context, collection *models.Collection, opts UpdateCollectionOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	collection.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(collection).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Collection")
		}
		return errors.WithStack(err)
	}

	return nil
}

type DeleteCollectionOptions struct {
	ID     *int
	UserID *int
}

func (svc *Service) DeleteCollection(ctx context.Context, opts DeleteCollectionOptions) error {
	collection, err := svc.RetrieveCollection(ctx, RetrieveCollectionOptions{ID: opts.ID, UserID: opts.UserID})
	if err != nil {
		return errors.WithStack(err)
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.BookCollection)(nil)).
			Where("collection_id = ?", collection.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model(collection).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

type AddBooksOptions struct {
	CollectionID int
	BookIDs      []int
}

// AddBooks appends books to a collection with no position, so they display
// after every positioned row until the next reorder.
func (svc *Service) AddBooks(ctx context.Context, opts AddBooksOptions) error {
	if len(opts.BookIDs) == 0 {
		return nil
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		memberships := make([]*models.BookCollection, 0, len(opts.BookIDs))
		for _, bookID := range opts.BookIDs {
			memberships = append(memberships, &models.BookCollection{
				CollectionID: opts.CollectionID,
				BookID:       bookID,
				CreatedAt:    now,
			})
		}

		_, err := tx.
			NewInsert().
			Model(&memberships).
			On("CONFLICT (collection_id, book_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewUpdate().
			Model((*models.Collection)(nil)).
			Set("updated_at = ?", now).
			Where("id = ?", opts.CollectionID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

type RemoveBooksOptions struct {
	CollectionID int
	BookIDs      []int
}

func (svc *Service) RemoveBooks(ctx context.Context, opts RemoveBooksOptions) error {
	if len(opts.BookIDs) == 0 {
		return nil
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.BookCollection)(nil)).
			Where("collection_id = ?", opts.CollectionID).
			Where("book_id IN (?)", bun.In(opts.BookIDs)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewUpdate().
			Model((*models.Collection)(nil)).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", opts.CollectionID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

type ReorderBooksOptions struct {
	CollectionID int
	BookIDs      []int // New order - book IDs in desired sequence
}

// ReorderBooks rewrites every listed book's position to its index in the
// request, zero-based, in one transaction. Books in the collection but not in
// the list keep their old positions.
func (svc *Service) ReorderBooks(ctx context.Context, opts ReorderBooksOptions) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for i, bookID := range opts.BookIDs {
			_, err := tx.
				NewUpdate().
				Model((*models.BookCollection)(nil)).
				Set("position = ?", i).
				Where("collection_id = ? AND book_id = ?", opts.CollectionID, bookID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err := tx.
			NewUpdate().
			Model((*models.Collection)(nil)).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", opts.CollectionID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}
