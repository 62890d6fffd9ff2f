package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-consult-intake/internal/domain/veterinarians"
)

// Requiere un Postgres real: TEST_DB_DSN=postgres://... go test ./internal/adapters/storage/postgres
func TestVeterinariansRepo_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db))

	repo := NewVeterinariansRepo(db)
	v := veterinarians.Veterinarian{
		ID:            uuid.NewString(),
		UserID:        "user-" + uuid.NewString(),
		Name:          "Dra. Paz",
		LicenseNumber: "MP-1234",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, v))
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM veterinarians WHERE id = $1`, v.ID)
	})

	got, err := repo.GetByUserID(ctx, v.UserID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, v.LicenseNumber, got.LicenseNumber)
	assert.True(t, v.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByUserID(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, veterinarians.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}
