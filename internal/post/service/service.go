package service

import (
	"context"
	"fmt"

	"github.com/gogotex/gogoblog/internal/models"
	"github.com/gogotex/gogoblog/internal/post"
	"github.com/gogotex/gogoblog/internal/post/repository"
	"github.com/gogotex/gogoblog/pkg/logger"
	"github.com/gogotex/gogoblog/pkg/metrics"
)

// Service defines the post store operations used by the handler layer.
type Service interface {
	List(ctx context.Context) ([]*post.Post, error)
	Get(ctx context.Context, id int64) (*post.Post, error)
	Create(ctx context.Context, author *models.User, in post.Input) (*post.Post, error)
	Update(ctx context.Context, id int64, in post.Input) (*post.Post, error)
}

// AuthorLookup confirms that a post author exists. *users.Service satisfies it.
type AuthorLookup interface {
	GetBySub(ctx context.Context, sub string) (*models.User, error)
}

// New returns a Service over repo. When authors is nil, any non-empty author
// subject is accepted.
func New(repo repository.Repository, authors AuthorLookup) Service {
	return &postService{repo: repo, authors: authors}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(authors AuthorLookup) Service {
	return New(repository.NewMemoryRepo(), authors)
}

type postService struct {
	repo    repository.Repository
	authors AuthorLookup
}

func (s *postService) List(ctx context.Context) ([]*post.Post, error) {
	return s.repo.List(ctx)
}

func (s *postService) Get(ctx context.Context, id int64) (*post.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *postService) Create(ctx context.Context, author *models.User, in post.Input) (*post.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, author); err != nil {
		return nil, err
	}
	p := &post.Post{Title: in.Title, Text: in.Text, Author: author.Sub}
	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	metrics.PostsCreated.Inc()
	logger.Infof("post %d created by %s", p.ID, p.Author)
	return p, nil
}

func (s *postService) Update(ctx context.Context, id int64, in post.Input) (*post.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, in.Title, in.Text); err != nil {
		return nil, err
	}
	metrics.PostsUpdated.Inc()
	logger.Infof("post %d updated", id)
	return s.repo.Get(ctx, id)
}

func (s *postService) checkAuthor(ctx context.Context, author *models.User) error {
	if author == nil || author.Sub == "" {
		return &post.ValidationError{Fields: map[string]string{"author": "An authenticated author is required."}}
	}
	if s.authors == nil {
		return nil
	}
	u, err := s.authors.GetBySub(ctx, author.Sub)
	if err != nil {
		return fmt.Errorf("lookup author %s: %w", author.Sub, err)
	}
	if u == nil {
		return &post.ValidationError{Fields: map[string]string{"author": "Unknown author."}}
	}
	return nil
}
