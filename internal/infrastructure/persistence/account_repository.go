package persistence

import (
	"context"
	"errors"

	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs resolves a set of accounts in one round trip
func (r *GormAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Account, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*ledger.Account{}, nil
	}

	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make(map[uuid.UUID]*ledger.Account, len(accountModels))
	for i := range accountModels {
		accounts[accountModels[i].ID] = accountModels[i].ToDomain()
	}
	return accounts, nil
}

// FindByClient finds all accounts owned by a client
func (r *GormAccountRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]ledger.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("opened_at ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// FindByInstitution finds the reserve accounts linked to an institution
func (r *GormAccountRepository) FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]ledger.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("opened_at ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// FindAll lists accounts with filtering and returns the unpaged total
func (r *GormAccountRepository) FindAll(ctx context.Context, filter ledger.AccountFilter) ([]ledger.Account, int64, error) {
	f := filter
	f.Filter = f.Filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.AccountModel{})
	if f.ClientID != nil {
		query = query.Where("client_id = ?", *f.ClientID)
	}
	if f.Currency != nil {
		query = query.Where("currency = ?", *f.Currency)
	}
	if f.ProductCode != nil {
		query = query.Where("product_code = ?", *f.ProductCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accountModels []models.AccountModel
	if err := query.
		Order("opened_at ASC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, total, nil
}

// Save creates or updates an account's state and metadata. The balance column
// is written only by the posting path in GormTransactionRepository.
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).
		Omit("Balance").
		Save(model).Error
}

// SumReservesByCurrency aggregates institution reserve account balances per currency
func (r *GormAccountRepository) SumReservesByCurrency(ctx context.Context) ([]ledger.CurrencyReserve, error) {
	var rows []ledger.CurrencyReserve
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Select("currency, COALESCE(SUM(balance), 0) as balance").
		Where("institution_id IS NOT NULL").
		Group("currency").
		Order("currency ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
