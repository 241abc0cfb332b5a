package ledger

import (
	"fmt"
	"time"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionState represents the lifecycle state of a transaction
type TransactionState string

const (
	TransactionStateDraft     TransactionState = "DRAFT"
	TransactionStateValidated TransactionState = "VALIDATED"
	TransactionStatePosted    TransactionState = "POSTED"
	TransactionStateReversed  TransactionState = "REVERSED"
)

// IsValid checks if the state is a valid TransactionState
func (s TransactionState) IsValid() bool {
	switch s {
	case TransactionStateDraft, TransactionStateValidated, TransactionStatePosted, TransactionStateReversed:
		return true
	}
	return false
}

// String returns the string representation of TransactionState
func (s TransactionState) String() string {
	return string(s)
}

// TransactionTypeReversal marks compensating transactions produced by Reverse.
const TransactionTypeReversal = "REVERSA"

// JournalLine is a single debit-or-credit entry against one account within
// one transaction. Exactly one of debit/credit is positive, never both.
type JournalLine struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	EffectiveAt   time.Time       `json:"effective_at"`
}

// Validate enforces the single-direction invariant
func (l JournalLine) Validate() error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return shared.NewDomainError("INVALID_FORMAT", "debit and credit must be non-negative")
	}
	if l.Debit.IsPositive() == l.Credit.IsPositive() {
		return shared.NewDomainError("INVALID_FORMAT", "exactly one of debit or credit must be positive")
	}
	return nil
}

// Delta returns the signed balance effect of the line (credit minus debit)
func (l JournalLine) Delta() decimal.Decimal {
	return l.Credit.Sub(l.Debit)
}

// LineInput is one journal line of a posting request
type LineInput struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Transaction is the journal-entry aggregate root. Once posted it is
// immutable; the only permitted transition is POSTED -> REVERSED, and even
// that never touches the monetary lines.
type Transaction struct {
	shared.BaseAggregateRoot
	ExternalRef    *string          `json:"external_ref"`
	Type           string           `json:"type"`
	State          TransactionState `json:"state"`
	Currency       string           `json:"currency"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Description    string           `json:"description"`
	Lines          []JournalLine    `json:"lines"`
	ValidatedAt    *time.Time       `json:"validated_at"`
	PostedAt       *time.Time       `json:"posted_at"`
	ReversedAt     *time.Time       `json:"reversed_at"`
	ReversalOf     *uuid.UUID       `json:"reversal_of"`
	ReversedBy     *uuid.UUID       `json:"reversed_by"`
	ReversalReason string           `json:"reversal_reason"`
}

// NewTransaction builds a validated transaction from raw line inputs.
// It enforces, in order: non-empty type and lines, the per-line
// single-direction invariant, and the double-entry balance invariant
// (sum of debits equals sum of credits). The resulting transaction is in
// VALIDATED state; posting happens through the repository's atomic path.
func NewTransaction(txType, currency string, externalRef *string, description string, inputs []LineInput) (*Transaction, error) {
	if txType == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "transaction type is required")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, shared.NewDomainError("INVALID_FORMAT", "currency must be a 3-letter ISO code")
	}
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "at least one journal line is required")
	}
	if externalRef != nil && *externalRef == "" {
		externalRef = nil
	}

	tx := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalRef:       externalRef,
		Type:              txType,
		State:             TransactionStateDraft,
		Currency:          currency,
		Description:       description,
		Lines:             make([]JournalLine, 0, len(inputs)),
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, in := range inputs {
		line := JournalLine{
			ID:            uuid.New(),
			TransactionID: tx.ID,
			AccountID:     in.AccountID,
			Debit:         in.Debit,
			Credit:        in.Credit,
		}
		if err := line.Validate(); err != nil {
			return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("line %d: %s", i+1, err.Error()))
		}
		totalDebit = totalDebit.Add(in.Debit)
		totalCredit = totalCredit.Add(in.Credit)
		tx.Lines = append(tx.Lines, line)
	}

	if !totalDebit.Equal(totalCredit) {
		return nil, shared.ErrUnbalanced
	}

	now := time.Now().UTC()
	tx.TotalAmount = totalDebit
	tx.State = TransactionStateValidated
	tx.ValidatedAt = &now

	return tx, nil
}

// MarkPosted transitions VALIDATED -> POSTED and stamps every line with the
// posting time, which is the effective date used by cut-off balances.
func (t *Transaction) MarkPosted() error {
	if t.State != TransactionStateValidated {
		return shared.ErrInvalidState
	}
	now := time.Now().UTC()
	t.State = TransactionStatePosted
	t.PostedAt = &now
	for i := range t.Lines {
		t.Lines[i].EffectiveAt = now
	}
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionPostedEvent(t))

	return nil
}

// BuildReversal constructs the compensating transaction: same accounts and
// amounts with debit and credit swapped per line. The original is not
// modified here; MarkReversed runs in the same atomic unit as posting the
// mirror.
func (t *Transaction) BuildReversal(reason string) (*Transaction, error) {
	if t.State == TransactionStateReversed {
		return nil, shared.ErrAlreadyReversed
	}
	if t.State != TransactionStatePosted {
		return nil, shared.ErrNotPosted
	}

	inputs := make([]LineInput, len(t.Lines))
	for i, l := range t.Lines {
		inputs[i] = LineInput{
			AccountID: l.AccountID,
			Debit:     l.Credit,
			Credit:    l.Debit,
		}
	}

	description := reason
	if description == "" {
		description = fmt.Sprintf("reversal of %s", t.ID)
	}

	rev, err := NewTransaction(TransactionTypeReversal, t.Currency, nil, description, inputs)
	if err != nil {
		return nil, err
	}
	originalID := t.ID
	rev.ReversalOf = &originalID

	return rev, nil
}

// MarkReversed records that the transaction has been compensated by the
// given reversal transaction. Lines are left untouched.
func (t *Transaction) MarkReversed(reversalID uuid.UUID, reason string) error {
	if t.State == TransactionStateReversed {
		return shared.ErrAlreadyReversed
	}
	if t.State != TransactionStatePosted {
		return shared.ErrNotPosted
	}
	now := time.Now().UTC()
	t.State = TransactionStateReversed
	t.ReversedAt = &now
	t.ReversedBy = &reversalID
	t.ReversalReason = reason
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionReversedEvent(t, reversalID))

	return nil
}

// IsPosted returns true if the transaction is posted
func (t *Transaction) IsPosted() bool {
	return t.State == TransactionStatePosted
}

// IsReversed returns true if the transaction has been reversed
func (t *Transaction) IsReversed() bool {
	return t.State == TransactionStateReversed
}

// BalanceDeltas returns the net balance effect per account, credit minus
// debit, in line order of first appearance.
func (t *Transaction) BalanceDeltas() map[uuid.UUID]decimal.Decimal {
	deltas := make(map[uuid.UUID]decimal.Decimal, len(t.Lines))
	for _, l := range t.Lines {
		deltas[l.AccountID] = deltas[l.AccountID].Add(l.Delta())
	}
	return deltas
}
