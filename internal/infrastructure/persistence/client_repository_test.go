package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPartyTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ClientModel{}, &models.InstitutionModel{})
	require.NoError(t, err)

	return db
}

func TestGormClientRepository(t *testing.T) {
	db := setupPartyTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	kyc := time.Now().UTC().AddDate(1, 0, 0)
	client, err := party.NewClient("001-1234567-8", "Juana Perez", party.ClientTypePerson, &kyc)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, client))

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, "001-1234567-8", found.CedulaRNC)
		assert.Equal(t, party.ClientTypePerson, found.Type)
		require.NotNil(t, found.KYCValidUntil)
	})

	t.Run("finds by cedula", func(t *testing.T) {
		found, err := repo.FindByCedulaRNC(ctx, "001-1234567-8")
		require.NoError(t, err)
		assert.Equal(t, client.ID, found.ID)
	})

	t.Run("unknown client yields CLIENT_NOT_FOUND", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrClientNotFound)

		_, err = repo.FindByCedulaRNC(ctx, "999-9999999-9")
		assert.ErrorIs(t, err, shared.ErrClientNotFound)
	})

	t.Run("exists by cedula", func(t *testing.T) {
		exists, err := repo.ExistsByCedulaRNC(ctx, "001-1234567-8")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByCedulaRNC(ctx, "999-9999999-9")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("lists with pagination", func(t *testing.T) {
		clients, total, err := repo.FindAll(ctx, party.ClientFilter{
			Filter: shared.Filter{Page: 1, PageSize: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, clients, 1)
	})

	t.Run("updates KYC through save", func(t *testing.T) {
		later := kyc.AddDate(1, 0, 0)
		require.NoError(t, client.RenewKYC(later))
		require.NoError(t, repo.Save(ctx, client))

		found, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)
		require.NotNil(t, found.KYCValidUntil)
		assert.WithinDuration(t, later, *found.KYCValidUntil, time.Second)
	})
}

func TestGormInstitutionRepository(t *testing.T) {
	db := setupPartyTestDB(t)
	repo := NewGormInstitutionRepository(db)
	ctx := context.Background()

	institution, err := party.NewInstitution("B001", "Banco Popular", party.InstitutionTypeBank)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, institution))

	t.Run("finds by SIB code", func(t *testing.T) {
		found, err := repo.FindBySIBCode(ctx, "B001")
		require.NoError(t, err)
		assert.Equal(t, institution.ID, found.ID)
		assert.True(t, found.Active)
	})

	t.Run("exists by SIB code", func(t *testing.T) {
		exists, err := repo.ExistsBySIBCode(ctx, "B001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySIBCode(ctx, "X999")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unknown institution yields NOT_FOUND", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
