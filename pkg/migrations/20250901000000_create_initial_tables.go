package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				username TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				display_name TEXT,
				theme TEXT NOT NULL DEFAULT 'flat-white'
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_users_username ON users (username COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) NOT NULL,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				author_nationality TEXT,
				isbn TEXT,
				cover_url TEXT,
				spine_color TEXT,
				page_count INTEGER,
				genre TEXT,
				description TEXT,
				published_year INTEGER
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_user_id ON books (user_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE user_books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) NOT NULL,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				status TEXT NOT NULL DEFAULT 'want_to_read',
				current_page INTEGER NOT NULL DEFAULT 0,
				current_session_id INTEGER REFERENCES reading_sessions (id),
				rating INTEGER,
				review TEXT,
				started_at TIMESTAMPTZ,
				finished_at TIMESTAMPTZ
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_user_books_user_id_book_id ON user_books (user_id, book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE reading_sessions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) NOT NULL,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				user_book_id INTEGER REFERENCES user_books (id) NOT NULL,
				read_number INTEGER NOT NULL,
				started_at TIMESTAMPTZ,
				finished_at TIMESTAMPTZ,
				rating INTEGER,
				review TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		// Two clients racing the same re-read must not both win a read_number.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_reading_sessions_user_book_id_read_number ON reading_sessions (user_book_id, read_number)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_reading_sessions_user_id_finished_at ON reading_sessions (user_id, finished_at)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_reading_sessions_book_id ON reading_sessions (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE collections (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) NOT NULL,
				name TEXT NOT NULL,
				description TEXT,
				cover_url TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_collections_user_id ON collections (user_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE book_collections (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				collection_id INTEGER REFERENCES collections (id) NOT NULL,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				position INTEGER
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_collections_collection_id_book_id ON book_collections (collection_id, book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE notes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) NOT NULL,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				content TEXT NOT NULL,
				is_quote BOOLEAN NOT NULL DEFAULT FALSE,
				page_number INTEGER
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_notes_book_id ON notes (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE vocabulary (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) NOT NULL,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				term TEXT NOT NULL,
				definition TEXT NOT NULL,
				part_of_speech TEXT,
				phonetic TEXT,
				example TEXT,
				page_number INTEGER
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_vocabulary_book_id ON vocabulary (book_id)`)
		return errors.WithStack(err)
	}
	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{
			"vocabulary",
			"notes",
			"book_collections",
			"collections",
			"reading_sessions",
			"user_books",
			"books",
			"users",
		} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
