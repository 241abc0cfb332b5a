package persistence

import (
	"context"
	"testing"

	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormAccountRepository_SaveAndFind(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	t.Run("round trips an account", func(t *testing.T) {
		clientID := uuid.New()
		account, err := ledger.NewAccount(&clientID, "AHORRO", "DOP")
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, account))

		found, err := repo.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)
		assert.Equal(t, "AHORRO", found.ProductCode)
		assert.Equal(t, ledger.AccountStateActive, found.State)
		require.NotNil(t, found.ClientID)
		assert.Equal(t, clientID, *found.ClientID)
		assert.True(t, found.Balance.IsZero())
	})

	t.Run("unknown account yields ACCOUNT_NOT_FOUND", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrAccountNotFound)
	})

	t.Run("save never touches the balance column", func(t *testing.T) {
		account, err := ledger.NewAccount(nil, "CORRIENTE", "DOP")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, account))

		// Simulate a posted balance written by the posting path
		require.NoError(t, db.Model(&models.AccountModel{}).
			Where("id = ?", account.ID).
			Update("balance", gorm.Expr("balance + ?", decimal.RequireFromString("500.00"))).Error)

		require.NoError(t, account.Block())
		require.NoError(t, repo.Save(ctx, account))

		found, err := repo.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.AccountStateBlocked, found.State)
		assert.True(t, found.Balance.Equal(decimal.RequireFromString("500.00")))
	})
}

func TestGormAccountRepository_FindByIDs(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	first := createTestAccount(t, db)
	second := createTestAccount(t, db)
	missing := uuid.New()

	accounts, err := repo.FindByIDs(ctx, []uuid.UUID{first.ID, second.ID, missing})
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Contains(t, accounts, first.ID)
	assert.Contains(t, accounts, second.ID)
	assert.NotContains(t, accounts, missing)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormAccountRepository_FindByClient(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	for i := 0; i < 2; i++ {
		account, err := ledger.NewAccount(&clientID, "AHORRO", "DOP")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, account))
	}
	createTestAccount(t, db) // unrelated account

	accounts, err := repo.FindByClient(ctx, clientID)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestGormAccountRepository_FindAll(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	usdAccount, err := ledger.NewAccount(&clientID, "CORRIENTE", "USD")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, usdAccount))

	dopAccount, err := ledger.NewAccount(&clientID, "CORRIENTE", "DOP")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, dopAccount))

	t.Run("filters by currency", func(t *testing.T) {
		currency := "USD"
		accounts, total, err := repo.FindAll(ctx, ledger.AccountFilter{
			Filter:   shared.Filter{Page: 1, PageSize: 10},
			Currency: &currency,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, accounts, 1)
		assert.Equal(t, "USD", accounts[0].Currency)
	})

	t.Run("clamps oversized page size", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, ledger.AccountFilter{
			Filter: shared.Filter{Page: 1, PageSize: 100000},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestGormAccountRepository_SumReservesByCurrency(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	institutionID := uuid.New()

	reserve, err := ledger.NewAccount(nil, "ENCAJE", "DOP")
	require.NoError(t, err)
	reserve.AttachInstitution(institutionID)
	require.NoError(t, repo.Save(ctx, reserve))

	require.NoError(t, db.Model(&models.AccountModel{}).
		Where("id = ?", reserve.ID).
		Update("balance", decimal.RequireFromString("75000.00")).Error)

	// Non-institutional account never counts toward reserves
	createTestAccount(t, db)

	reserves, err := repo.SumReservesByCurrency(ctx)
	require.NoError(t, err)
	require.Len(t, reserves, 1)
	assert.Equal(t, "DOP", reserves[0].Currency)
	assert.True(t, reserves[0].Balance.Equal(decimal.RequireFromString("75000.00")))
}
