package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-consult-intake/internal/domain/veterinarians"
)

func TestVeterinarianRepo(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	repo := NewVeterinarianRepo(veterinarians.Veterinarian{ID: "vet-b", UserID: "user-b", Name: "B", CreatedAt: t0.Add(time.Hour)})
	require.NoError(t, repo.Create(ctx, veterinarians.Veterinarian{ID: "vet-a", UserID: "user-a", Name: "A", CreatedAt: t0}))

	assert.Error(t, repo.Create(ctx, veterinarians.Veterinarian{ID: "vet-c", UserID: "user-a"}), "duplicate user")
	assert.Error(t, repo.Create(ctx, veterinarians.Veterinarian{ID: "vet-a", UserID: "user-z"}), "duplicate id")

	got, err := repo.GetByUserID(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, "vet-b", got.ID)

	_, err = repo.GetByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, veterinarians.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "vet-a", all[0].ID)
}
