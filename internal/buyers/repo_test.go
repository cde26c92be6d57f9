package buyers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adegtyareva/marketpoint-backend/pkg/db/models"
)

func setupBuyersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	buyers := `
CREATE TABLE IF NOT EXISTS buyers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(buyers).Error)
	return db
}

func TestRepositoryCRUD(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	phone := "+79990001122"
	created, err := repo.Create(ctx, &models.Buyer{
		ID:    uuid.New(),
		Name:  "Anna",
		Email: "anna@example.com",
		Phone: &phone,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Anna", found.Name)
	require.NotNil(t, found.Phone)

	found.Name = "Anna K"
	found.Phone = nil
	updated, err := repo.Update(ctx, found)
	require.NoError(t, err)
	require.Equal(t, "Anna K", updated.Name)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = repo.FindByID(ctx, created.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDeleteMissing(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)

	deleted, err := repo.Delete(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, deleted)
}
