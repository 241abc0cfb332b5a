package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM.
// Post and PostReversal are the only writers of account balances; each runs
// in a single database transaction and moves balances with relative
// `balance = balance + delta` updates rather than read-modify-write.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction with its journal lines
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByExternalRef reports whether a transaction already carries the reference
func (r *GormTransactionRepository) ExistsByExternalRef(ctx context.Context, externalRef string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("external_ref = ?", externalRef).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Post atomically persists a validated transaction: the transaction row, its
// journal lines, and one relative balance update per affected account.
func (r *GormTransactionRepository) Post(ctx context.Context, tx *ledger.Transaction) error {
	if err := tx.MarkPosted(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		model := models.TransactionModelFromDomain(tx)
		if err := dbTx.Create(model).Error; err != nil {
			// The service pre-checks the external reference, but two
			// concurrent postings can both pass it; the unique index on
			// external_ref is the real arbiter and it is the only unique
			// constraint this insert can hit.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrDuplicateReference
			}
			return err
		}
		return applyBalanceDeltas(dbTx, tx.BalanceDeltas())
	})
}

// PostReversal atomically posts the mirror transaction and flips the original
// to REVERSED in the same database transaction. The original's lines are
// never touched.
func (r *GormTransactionRepository) PostReversal(ctx context.Context, original, reversal *ledger.Transaction) error {
	if err := reversal.MarkPosted(); err != nil {
		return err
	}
	if err := original.MarkReversed(reversal.ID, reversal.Description); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		reversalModel := models.TransactionModelFromDomain(reversal)
		if err := dbTx.Create(reversalModel).Error; err != nil {
			return err
		}

		result := dbTx.Model(&models.TransactionModel{}).
			Where("id = ? AND state = ?", original.ID, ledger.TransactionStatePosted).
			Updates(map[string]interface{}{
				"state":           ledger.TransactionStateReversed,
				"reversed_at":     original.ReversedAt,
				"reversed_by":     reversal.ID,
				"reversal_reason": original.ReversalReason,
				"updated_at":      original.UpdatedAt,
				"version":         original.Version,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrAlreadyReversed
		}

		return applyBalanceDeltas(dbTx, reversal.BalanceDeltas())
	})
}

// applyBalanceDeltas moves account balances by the given signed amounts.
// Expressed as SQL increments so concurrent postings never clobber each
// other's writes.
func applyBalanceDeltas(dbTx *gorm.DB, deltas map[uuid.UUID]decimal.Decimal) error {
	for accountID, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		result := dbTx.Model(&models.AccountModel{}).
			Where("id = ?", accountID).
			Update("balance", gorm.Expr("balance + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrAccountNotFound
		}
	}
	return nil
}

// FindMovements pages through an account's posted journal lines and returns
// the unpaged total
func (r *GormTransactionRepository) FindMovements(ctx context.Context, accountID uuid.UUID, filter ledger.MovementFilter) ([]ledger.Movement, int64, error) {
	f := filter
	f.Filter = f.Filter.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.JournalLineModel{}).
		Joins("JOIN transactions ON transactions.id = journal_lines.transaction_id").
		Where("journal_lines.account_id = ?", accountID)

	if f.From != nil {
		query = query.Where("journal_lines.effective_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("journal_lines.effective_at <= ?", *f.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ledger.Movement
	if err := query.
		Select("journal_lines.transaction_id, journal_lines.account_id, journal_lines.debit, journal_lines.credit, transactions.currency, journal_lines.effective_at as posted_at").
		Order("journal_lines.effective_at DESC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// SumDeltaAsOf reconstructs the balance contribution of all lines with
// effective date at or before the cut-off
func (r *GormTransactionRepository) SumDeltaAsOf(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.JournalLineModel{}).
		Select("COALESCE(SUM(credit - debit), 0) as total").
		Where("account_id = ? AND effective_at <= ?", accountID, cutoff).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindAll lists transactions with filtering and returns the unpaged total
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, int64, error) {
	f := filter
	f.Filter = f.Filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	if f.From != nil {
		query = query.Where("posted_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("posted_at <= ?", *f.To)
	}
	if f.Type != nil {
		query = query.Where("type = ?", *f.Type)
	}
	if f.ClientID != nil {
		query = query.Where(
			"id IN (SELECT DISTINCT transaction_id FROM journal_lines JOIN accounts ON accounts.id = journal_lines.account_id WHERE accounts.client_id = ?)",
			*f.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactionModels []models.TransactionModel
	if err := query.
		Preload("Lines").
		Order("posted_at DESC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&transactionModels).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]ledger.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions, total, nil
}

// Indicators aggregates posting activity between two dates
func (r *GormTransactionRepository) Indicators(ctx context.Context, from, to time.Time) (ledger.ActivityIndicators, error) {
	var result struct {
		TransactionCount int64
		TotalAmount      decimal.Decimal
		FirstPostedAt    *time.Time
		LastPostedAt     *time.Time
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select("COUNT(*) as transaction_count, COALESCE(SUM(total_amount), 0) as total_amount, MIN(posted_at) as first_posted_at, MAX(posted_at) as last_posted_at").
		Where("posted_at >= ? AND posted_at <= ?", from, to).
		Scan(&result).Error; err != nil {
		return ledger.ActivityIndicators{}, err
	}
	return ledger.ActivityIndicators{
		TransactionCount: result.TransactionCount,
		TotalAmount:      result.TotalAmount,
		FirstPostedAt:    result.FirstPostedAt,
		LastPostedAt:     result.LastPostedAt,
	}, nil
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
