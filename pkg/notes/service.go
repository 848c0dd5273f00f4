package notes

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/models"
	"github.com/uptrace/bun"
)

type ListNotesOptions struct {
	BookID *int
	UserID *int
}

type RetrieveNoteOptions struct {
	ID     *int
	UserID *int
}

type UpdateNoteOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateNote(ctx context.Context, note *models.Note) error {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(note).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveNote(ctx context.Context, opts RetrieveNoteOptions) (*models.Note, error) {
	note := &models.Note{}

	q := svc.db.
		NewSelect().
		Model(note)

	if opts.ID != nil {
		q = q.Where("n.id = ?", *opts.ID)
	}
	if opts.UserID != nil {
		q = q.Where("n.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Note")
		}
		return nil, errors.WithStack(err)
	}

	return note, nil
}

func (svc *Service) ListNotes(ctx context.Context, opts ListNotesOptions) ([]*models.Note, error) {
	notes := []*models.Note{}

	q := svc.db.
		NewSelect().
		Model(&notes).
		Order("n.created_at DESC")

	if opts.BookID != nil {
		q = q.Where("n.book_id = ?", *opts.BookID)
	}
	if opts.UserID != nil {
		q = q.Where("n.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return notes, nil
}

func (svc *Service) UpdateNote(ctx context.Context, note *models.Note, opts UpdateNoteOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	note.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(note).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Note")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) DeleteNote(ctx context.Context, opts RetrieveNoteOptions) error {
	note, err := svc.RetrieveNote(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = svc.db.
		NewDelete().
		Model(note).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}
