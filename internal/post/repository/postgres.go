package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogotex/gogoblog/internal/post"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensurePostTable mirrors the blog_post table the application expects. It is
// applied idempotently at startup; schema changes are managed elsewhere.
var ensurePostTable = []string{`
CREATE TABLE IF NOT EXISTS blog_post (
	id           BIGSERIAL PRIMARY KEY,
	title        VARCHAR(200) NOT NULL,
	text         TEXT NOT NULL,
	author_id    TEXT NOT NULL,
	created_date TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS blog_post_created_date_idx ON blog_post (created_date DESC, id DESC)`,
}

// PostgresRepo stores posts in the blog_post table.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, db *pgxpool.Pool) (*PostgresRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	for _, stmt := range ensurePostTable {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("ensure blog_post table: %w", err)
		}
	}
	return &PostgresRepo{db: db}, nil
}

func (r *PostgresRepo) Create(ctx context.Context, p *post.Post) (int64, error) {
	const q = `
	INSERT INTO blog_post (title, text, author_id)
	VALUES ($1, $2, $3)
	RETURNING id, created_date;
	`
	if err := r.db.QueryRow(ctx, q, p.Title, p.Text, p.Author).Scan(&p.ID, &p.CreatedDate); err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	p.CreatedDate = p.CreatedDate.UTC()
	return p.ID, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (*post.Post, error) {
	const q = `
	SELECT id, title, text, author_id, created_date
	FROM blog_post
	WHERE id = $1;
	`
	var p post.Post
	err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.Title, &p.Text, &p.Author, &p.CreatedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, post.ErrNotFound
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	p.CreatedDate = p.CreatedDate.UTC()
	return &p, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]*post.Post, error) {
	const q = `
	SELECT id, title, text, author_id, created_date
	FROM blog_post
	ORDER BY created_date DESC, id DESC;
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	out := []*post.Post{}
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Text, &p.Author, &p.CreatedDate); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.CreatedDate = p.CreatedDate.UTC()
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, title, text string) error {
	const q = `UPDATE blog_post SET title = $1, text = $2 WHERE id = $3;`
	tag, err := r.db.Exec(ctx, q, title, text, id)
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return post.ErrNotFound
	}
	return nil
}
