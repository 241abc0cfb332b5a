package ledger

import (
	"context"
	"time"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement is a read-model row of an account statement: one journal line
// together with its transaction reference.
type Movement struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Currency      string          `json:"currency"`
	PostedAt      time.Time       `json:"posted_at"`
}

// MovementFilter defines filtering options for statement queries
type MovementFilter struct {
	shared.Filter
	From *time.Time
	To   *time.Time
}

// TransactionFilter defines filtering options for transaction listings
type TransactionFilter struct {
	shared.Filter
	From     *time.Time
	To       *time.Time
	Type     *string
	ClientID *uuid.UUID
}

// AccountFilter defines filtering options for account listings
type AccountFilter struct {
	shared.Filter
	ClientID    *uuid.UUID
	Currency    *string
	ProductCode *string
}

// ActivityIndicators aggregates posting activity over a date range
type ActivityIndicators struct {
	TransactionCount int64           `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	FirstPostedAt    *time.Time      `json:"first_posted_at,omitempty"`
	LastPostedAt     *time.Time      `json:"last_posted_at,omitempty"`
}

// CurrencyReserve is the aggregate balance held in reserve accounts of one currency
type CurrencyReserve struct {
	Currency string          `json:"currency"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
}

// AccountRepository defines the interface for account persistence.
// Balance columns are written exclusively by the TransactionRepository
// posting path; nothing here mutates a balance.
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByIDs resolves a set of accounts in one round trip; missing IDs are
	// simply absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Account, error)

	// FindByClient finds all accounts owned by a client
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Account, error)

	// FindByInstitution finds the reserve accounts linked to an institution
	FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]Account, error)

	// FindAll lists accounts with filtering and returns the unpaged total
	FindAll(ctx context.Context, filter AccountFilter) ([]Account, int64, error)

	// Save creates or updates an account (state and metadata only)
	Save(ctx context.Context, account *Account) error

	// SumReservesByCurrency aggregates institution reserve account balances per currency
	SumReservesByCurrency(ctx context.Context) ([]CurrencyReserve, error)
}

// TransactionRepository defines the interface for transaction persistence.
// Post and PostReversal are the only writers of account balances in the
// whole system; each executes as a single storage transaction so that the
// line inserts, the balance increments and the state transition land
// together or not at all.
type TransactionRepository interface {
	// FindByID finds a transaction with its journal lines
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// ExistsByExternalRef reports whether a transaction already carries the reference
	ExistsByExternalRef(ctx context.Context, externalRef string) (bool, error)

	// Post atomically persists a validated transaction: transaction row,
	// journal lines, and per-account balance increments expressed as SQL
	// `balance = balance + delta` updates, never read-modify-write
	Post(ctx context.Context, tx *Transaction) error

	// PostReversal atomically posts the mirror transaction and flips the
	// original to REVERSED in the same storage transaction
	PostReversal(ctx context.Context, original, reversal *Transaction) error

	// FindMovements pages through an account's posted journal lines and
	// returns the unpaged total
	FindMovements(ctx context.Context, accountID uuid.UUID, filter MovementFilter) ([]Movement, int64, error)

	// SumDeltaAsOf reconstructs the balance contribution of all lines with
	// effective date at or before the cut-off
	SumDeltaAsOf(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (decimal.Decimal, error)

	// FindAll lists transactions with filtering and returns the unpaged total
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, int64, error)

	// Indicators aggregates posting activity between two dates
	Indicators(ctx context.Context, from, to time.Time) (ActivityIndicators, error)
}
