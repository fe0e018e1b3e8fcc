package users

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gogotex/gogoblog/internal/models"
)

// MemoryUserRepository keeps users in process; used when MongoDB is not configured.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	seq   int
	bySub map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{bySub: map[string]*models.User{}}
}

func (r *MemoryUserRepository) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := r.bySub[u.Sub]
	if !ok {
		r.seq++
		cur = &models.User{ID: strconv.Itoa(r.seq), Sub: u.Sub, CreatedAt: now}
		r.bySub[u.Sub] = cur
	}
	cur.Email = u.Email
	cur.Name = u.Name
	cur.UpdatedAt = now
	out := *cur
	return &out, nil
}

func (r *MemoryUserRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.bySub[sub]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}
