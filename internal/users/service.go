package users

import (
	"context"

	"github.com/gogotex/gogoblog/internal/models"
)

// Service resolves the acting user of a request from verified token claims
// and answers author lookups for the post store.
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a user using a claims map. It returns
// (nil, nil) when the claims carry no subject.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if name == "" {
		name, _ = claims["preferred_username"].(string)
	}
	if sub == "" {
		return nil, nil
	}
	u := &models.User{
		Sub:   sub,
		Email: email,
		Name:  name,
	}
	return s.repo.UpsertBySub(ctx, u)
}

// GetBySub returns the user or (nil, nil) when unknown.
func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}
