package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID     *int
	UserID *int
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	UserID   *int
	Wishlist *bool

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type DeleteBookOptions struct {
	ID     *int
	UserID *int
}

type RetrieveUserBookOptions struct {
	BookID *int
	UserID *int
}

type UpdateUserBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts a book along with its progress record. When the initial
// status is reading or completed, the first reading session is created in the
// same transaction so the ledger starts consistent with the status.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book, userBook *models.UserBook) error {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		userBook.UserID = book.UserID
		userBook.BookID = book.ID
		userBook.CreatedAt = now
		userBook.UpdatedAt = now
		if userBook.Status == "" {
			userBook.Status = models.StatusWantToRead
		}

		switch userBook.Status {
		case models.StatusReading:
			userBook.StartedAt = &now
		case models.StatusCompleted:
			userBook.StartedAt = &now
			userBook.FinishedAt = &now
			if book.PageCount != nil {
				userBook.CurrentPage = *book.PageCount
			}
		}

		_, err = tx.
			NewInsert().
			Model(userBook).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Books that arrive already in progress or finished get their first
		// session recorded up front.
		if userBook.Status == models.StatusReading || userBook.Status == models.StatusCompleted {
			session := &models.ReadingSession{
				CreatedAt:  now,
				UpdatedAt:  now,
				UserID:     book.UserID,
				BookID:     book.ID,
				UserBookID: userBook.ID,
				ReadNumber: 1,
				StartedAt:  &now,
			}
			if userBook.Status == models.StatusCompleted {
				session.FinishedAt = &now
				session.Rating = userBook.Rating
				session.Review = userBook.Review
			}

			_, err = tx.
				NewInsert().
				Model(session).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			userBook.CurrentSessionID = &session.ID
			_, err = tx.
				NewUpdate().
				Model(userBook).
				Column("current_session_id").
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("UserBook").
		Relation("Sessions", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("rs.read_number DESC")
		}).
		Relation("Notes", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("n.created_at DESC")
		}).
		Relation("Vocabulary", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("v.created_at DESC")
		}).
		Relation("BookCollections").
		Relation("BookCollections.Collection")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.UserID != nil {
		q = q.Where("b.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	book.DisplayRating = book.LatestSessionRating()

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("UserBook").
		Relation("Sessions", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("rs.read_number DESC")
		}).
		Order("b.created_at DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.UserID != nil {
		q = q.Where("b.user_id = ?", *opts.UserID)
	}
	if opts.Wishlist != nil {
		// The wishlist is stored as a status, so the main library view and
		// the wishlist view are two sides of the same filter.
		sub := svc.db.
			NewSelect().
			Model((*models.UserBook)(nil)).
			Column("ub.book_id").
			Where("ub.status = ?", models.StatusWishlist)
		if *opts.Wishlist {
			q = q.Where("b.id IN (?)", sub)
		} else {
			q = q.Where("b.id NOT IN (?)", sub)
		}
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	for _, book := range books {
		book.DisplayRating = book.LatestSessionRating()
	}

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	book.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}

	return nil
}

// DeleteBook removes a book and everything hanging off of it. SQLite foreign
// keys aren't enforced here, so the dependent rows are deleted explicitly.
func (svc *Service) DeleteBook(ctx context.Context, opts DeleteBookOptions) error {
	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: opts.ID, UserID: opts.UserID})
	if err != nil {
		return errors.WithStack(err)
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		deletes := []interface{}{
			(*models.Note)(nil),
			(*models.Vocabulary)(nil),
			(*models.BookCollection)(nil),
			(*models.ReadingSession)(nil),
			(*models.UserBook)(nil),
		}
		for _, model := range deletes {
			_, err := tx.
				NewDelete().
				Model(model).
				Where("book_id = ?", book.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err := tx.
			NewDelete().
			Model(book).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveUserBook(ctx context.Context, opts RetrieveUserBookOptions) (*models.UserBook, error) {
	userBook := &models.UserBook{}

	q := svc.db.
		NewSelect().
		Model(userBook).
		Relation("Book")

	if opts.BookID != nil {
		q = q.Where("ub.book_id = ?", *opts.BookID)
	}
	if opts.UserID != nil {
		q = q.Where("ub.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return userBook, nil
}

func (svc *Service) UpdateUserBook(ctx context.Context, userBook *models.UserBook, opts UpdateUserBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	userBook.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(userBook).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}

	return nil
}

// TransitionStatus moves a progress record to a new status and keeps the
// session ledger consistent with it. The whole transition runs in a single
// transaction so a crash can't leave the status pointing at a session that
// was never created.
//
// Moving to reading opens a new session when there is no current one, or when
// the previous status was completed (a re-read). A current session left over
// from a non-completed status is reused as-is. Moving to completed closes the
// current session if there is one. The two shelf statuses only change the
// status itself.
func (svc *Service) TransitionStatus(ctx context.Context, userBook *models.UserBook, status string) error {
	if status == userBook.Status {
		return nil
	}

	prev := userBook.Status
	now := time.Now()

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		userBook.Status = status
		userBook.UpdatedAt = now
		columns := []string{"status", "updated_at"}

		switch status {
		case models.StatusReading:
			if userBook.CurrentSessionID == nil || prev == models.StatusCompleted {
				session, err := createNextSession(ctx, tx, userBook, now)
				if err != nil {
					return errors.WithStack(err)
				}
				userBook.CurrentSessionID = &session.ID
				columns = append(columns, "current_session_id")
			}
			userBook.StartedAt = &now
			columns = append(columns, "started_at")
		case models.StatusCompleted:
			if userBook.CurrentSessionID != nil {
				_, err := tx.
					NewUpdate().
					Model((*models.ReadingSession)(nil)).
					Set("finished_at = ?", now).
					Set("updated_at = ?", now).
					Where("id = ?", *userBook.CurrentSessionID).
					Exec(ctx)
				if err != nil {
					return errors.WithStack(err)
				}
			}
			userBook.FinishedAt = &now
			columns = append(columns, "finished_at")
		}

		_, err := tx.
			NewUpdate().
			Model(userBook).
			Column(columns...).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errcodes.Conflict("This read was already started.")
		}
		return errors.WithStack(err)
	}

	return nil
}

// createNextSession inserts a session numbered one past the current max for
// the progress record. The unique index on (user_book_id, read_number) turns
// a lost race between two writers into a constraint error instead of two
// sessions with the same number.
func createNextSession(ctx context.Context, tx bun.Tx, userBook *models.UserBook, now time.Time) (*models.ReadingSession, error) {
	var maxNumber int
	err := tx.
		NewSelect().
		Model((*models.ReadingSession)(nil)).
		ColumnExpr("COALESCE(MAX(read_number), 0)").
		Where("user_book_id = ?", userBook.ID).
		Scan(ctx, &maxNumber)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	session := &models.ReadingSession{
		CreatedAt:  now,
		UpdatedAt:  now,
		UserID:     userBook.UserID,
		BookID:     userBook.BookID,
		UserBookID: userBook.ID,
		ReadNumber: maxNumber + 1,
		StartedAt:  &now,
	}

	_, err = tx.
		NewInsert().
		Model(session).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return session, nil
}
