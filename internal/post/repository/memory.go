package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gogotex/gogoblog/internal/post"
)

// MemoryRepo keeps posts in a map. It backs the default "memory" store driver
// and the unit tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]*post.Post
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[int64]*post.Post), now: time.Now}
}

func (m *MemoryRepo) Create(ctx context.Context, p *post.Post) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.CreatedDate = m.now().UTC()
	cp := *p
	m.store[p.ID] = &cp
	return p.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id int64) (*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, post.ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context) ([]*post.Post, error) {
	m.mu.RLock()
	out := make([]*post.Post, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id int64, title, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return post.ErrNotFound
	}
	p.Title = title
	p.Text = text
	return nil
}

func sortNewestFirst(ps []*post.Post) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedDate.Equal(ps[j].CreatedDate) {
			return ps[i].CreatedDate.After(ps[j].CreatedDate)
		}
		return ps[i].ID > ps[j].ID
	})
}
