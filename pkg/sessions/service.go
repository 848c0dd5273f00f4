package sessions

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

type ListSessionsOptions struct {
	BookID *int
	UserID *int
}

type RetrieveSessionOptions struct {
	ID     *int
	BookID *int
	UserID *int
}

type UpdateSessionOptions struct {
	Columns []string
}

type StartNewReadOptions struct {
	BookID *int
	UserID *int
}

type DeleteSessionOptions struct {
	ID     *int
	UserID *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ListSessions returns a book's reading sessions, most recent read first.
func (svc *Service) ListSessions(ctx context.Context, opts ListSessionsOptions) ([]*models.ReadingSession, error) {
	sessions := []*models.ReadingSession{}

	q := svc.db.
		NewSelect().
		Model(&sessions).
		Order("rs.read_number DESC")

	if opts.BookID != nil {
		q = q.Where("rs.book_id = ?", *opts.BookID)
	}
	if opts.UserID != nil {
		q = q.Where("rs.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return sessions, nil
}

func (svc *Service) RetrieveSession(ctx context.Context, opts RetrieveSessionOptions) (*models.ReadingSession, error) {
	session := &models.ReadingSession{}

	q := svc.db.
		NewSelect().
		Model(session)

	if opts.ID != nil {
		q = q.Where("rs.id = ?", *opts.ID)
	}
	if opts.BookID != nil {
		q = q.Where("rs.book_id = ?", *opts.BookID)
	}
	if opts.UserID != nil {
		q = q.Where("rs.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Session")
		}
		return nil, errors.WithStack(err)
	}

	return session, nil
}

// StartNewRead opens a re-read of a completed book: a fresh session numbered
// one past the last, with progress reset to the first page. The read_number
// is computed and inserted in the same transaction, and the unique index on
// (user_book_id, read_number) rejects the loser if two clients race.
func (svc *Service) StartNewRead(ctx context.Context, opts StartNewReadOptions) (*models.ReadingSession, error) {
	userBook := &models.UserBook{}

	q := svc.db.
		NewSelect().
		Model(userBook)
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

	if userBook.Status != models.StatusCompleted {
		return nil, errcodes.ValidationError("a new read can only be started for a completed book")
	}

	now := time.Now()
	session := &models.ReadingSession{}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var maxNumber int
		err := tx.
			NewSelect().
			Model((*models.ReadingSession)(nil)).
			ColumnExpr("COALESCE(MAX(read_number), 0)").
			Where("user_book_id = ?", userBook.ID).
			Scan(ctx, &maxNumber)
		if err != nil {
			return errors.WithStack(err)
		}

		*session = models.ReadingSession{
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
			return errors.WithStack(err)
		}

		userBook.CurrentSessionID = &session.ID
		userBook.Status = models.StatusReading
		userBook.CurrentPage = 0
		userBook.StartedAt = &now
		userBook.UpdatedAt = now

		_, err = tx.
			NewUpdate().
			Model(userBook).
			Column("current_session_id", "status", "current_page", "started_at", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, errcodes.Conflict("This read was already started.")
		}
		return nil, errors.WithStack(err)
	}

	return session, nil
}

func (svc *Service) UpdateSession(ctx context.Context, session *models.ReadingSession, opts UpdateSessionOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	session.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(session).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Session")
		}
		return errors.WithStack(err)
	}

	return nil
}

// DeleteSession removes a session from the ledger. Deleting the session the
// progress record points at also clears the pointer and drops the status back
// to want_to_read; other sessions are plain deletes.
func (svc *Service) DeleteSession(ctx context.Context, opts DeleteSessionOptions) error {
	session, err := svc.RetrieveSession(ctx, RetrieveSessionOptions{ID: opts.ID, UserID: opts.UserID})
	if err != nil {
		return errors.WithStack(err)
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		userBook := &models.UserBook{}
		err := tx.
			NewSelect().
			Model(userBook).
			Where("ub.id = ?", session.UserBookID).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model(session).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if userBook.CurrentSessionID != nil && *userBook.CurrentSessionID == session.ID {
			userBook.CurrentSessionID = nil
			userBook.Status = models.StatusWantToRead
			userBook.UpdatedAt = time.Now()

			_, err = tx.
				NewUpdate().
				Model(userBook).
				Column("current_session_id", "status", "updated_at").
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
