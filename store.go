package restblog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DateLayout is the format of BlogPost.Date, e.g. "April 05, 2024".
const DateLayout = "January 02, 2006"

// PostStore is the persistence contract for blog posts. Every mutating call is
// atomic: it either commits completely or leaves the table untouched.
type PostStore interface {
	ListPosts(ctx context.Context) ([]BlogPost, error)
	GetPost(ctx context.Context, id int64) (BlogPost, error)
	CreatePost(ctx context.Context, f PostFields) (BlogPost, error)
	UpdatePost(ctx context.Context, id int64, f PostFields) (BlogPost, error)
	DeletePost(ctx context.Context, id int64) error
	Close() error
}

// Store wraps a SQLite database and provides CRUD operations for blog posts.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ PostStore = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreClock sets the clock used to stamp the creation date of new posts.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// busy_timeout must come first so the connection blocks on busy before WAL is
// switched on.
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-8000)"

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the posts table.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// AUTOINCREMENT keeps SQLite from handing out the id of a deleted row again.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS blog_post (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL UNIQUE,
    subtitle TEXT NOT NULL,
    date TEXT NOT NULL,
    body TEXT NOT NULL,
    author TEXT NOT NULL,
    img_url TEXT NOT NULL
);
`)
	return err
}

const postColumns = `id, title, subtitle, date, body, author, img_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var p BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.Author, &p.ImgURL)
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// ListPosts returns every post ordered by id.
func (s *Store) ListPosts(ctx context.Context) ([]BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM blog_post ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a single post by id, or ErrNotFound.
func (s *Store) GetPost(ctx context.Context, id int64) (BlogPost, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_post WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		return BlogPost{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return p, nil
}

// CreatePost inserts a new post stamped with today's date and returns it with
// its assigned id. A duplicate title yields ErrConflict.
func (s *Store) CreatePost(ctx context.Context, f PostFields) (BlogPost, error) {
	var post BlogPost
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		date := s.now().Format(DateLayout)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO blog_post (title, subtitle, date, body, author, img_url) VALUES (?, ?, ?, ?, ?, ?)`,
			f.Title, f.Subtitle, date, f.Body, f.Author, f.ImgURL)
		if err != nil {
			return mapWriteErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		post = BlogPost{
			ID:       id,
			Title:    f.Title,
			Subtitle: f.Subtitle,
			Date:     date,
			Body:     f.Body,
			Author:   f.Author,
			ImgURL:   f.ImgURL,
		}
		return nil
	})
	if err != nil {
		return BlogPost{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// UpdatePost overwrites every field of post id except its id and date.
func (s *Store) UpdatePost(ctx context.Context, id int64, f PostFields) (BlogPost, error) {
	var post BlogPost
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE blog_post SET title = ?, subtitle = ?, body = ?, author = ?, img_url = ? WHERE id = ?`,
			f.Title, f.Subtitle, f.Body, f.Author, f.ImgURL, id)
		if err != nil {
			return mapWriteErr(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}
		post, err = scanPost(tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_post WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return BlogPost{}, fmt.Errorf("update post %d: %w", id, err)
	}
	return post, nil
}

// DeletePost removes post id permanently, or returns ErrNotFound.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM blog_post WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func mapWriteErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return ErrConflict
	}
	return err
}
