package users

import (
	"context"
	"testing"

	"github.com/gogotex/gogoblog/internal/models"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository_UpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u1, err := repo.UpsertBySub(ctx, &models.User{Sub: "s1", Name: "Old"})
	require.NoError(t, err)
	u2, err := repo.UpsertBySub(ctx, &models.User{Sub: "s1", Name: "New"})
	require.NoError(t, err)

	require.Equal(t, u1.ID, u2.ID)
	require.Equal(t, u1.CreatedAt, u2.CreatedAt)
	require.Equal(t, "New", u2.Name)

	got, err := repo.GetBySub(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "New", got.Name)

	missing, err := repo.GetBySub(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, missing)
}
