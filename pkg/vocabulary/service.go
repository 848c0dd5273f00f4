package vocabulary

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/errcodes"
	"github.com/tomeline/tomeline/pkg/models"
	"github.com/uptrace/bun"
)

type ListWordsOptions struct {
	BookID *int
	UserID *int
}

type RetrieveWordOptions struct {
	ID     *int
	UserID *int
}

type UpdateWordOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateWord(ctx context.Context, word *models.Vocabulary) error {
	now := time.Now()
	word.CreatedAt = now
	word.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(word).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveWord(ctx context.Context, opts RetrieveWordOptions) (*models.Vocabulary, error) {
	word := &models.Vocabulary{}

	q := svc.db.
		NewSelect().
		Model(word)

	if opts.ID != nil {
		q = q.Where("v.id = ?", *opts.ID)
	}
	if opts.UserID != nil {
		q = q.Where("v.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Word")
		}
		return nil, errors.WithStack(err)
	}

	return word, nil
}

func (svc *Service) ListWords(ctx context.Context, opts ListWordsOptions) ([]*models.Vocabulary, error) {
	words := []*models.Vocabulary{}

	q := svc.db.
		NewSelect().
		Model(&words).
		Order("v.created_at DESC")

	if opts.BookID != nil {
		q = q.Where("v.book_id = ?", *opts.BookID)
	}
	if opts.UserID != nil {
		q = q.Where("v.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return words, nil
}

func (svc *Service) UpdateWord(ctx context.Context, word *models.Vocabulary, opts UpdateWordOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	word.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(word).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Word")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) DeleteWord(ctx context.Context, opts RetrieveWordOptions) error {
	word, err := svc.RetrieveWord(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = svc.db.
		NewDelete().
		Model(word).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}
