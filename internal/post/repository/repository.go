package repository

import (
	"context"

	"github.com/gogotex/gogoblog/internal/post"
)

// Repository persists posts. Implementations return post.ErrNotFound for
// unknown ids and order List by CreatedDate descending, newest id first on ties.
type Repository interface {
	List(ctx context.Context) ([]*post.Post, error)
	Get(ctx context.Context, id int64) (*post.Post, error)
	Create(ctx context.Context, p *post.Post) (int64, error)
	Update(ctx context.Context, id int64, title, text string) error
}
