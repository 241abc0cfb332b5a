package ledger

import (
	"regexp"
	"time"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the home currency applied when a request omits one.
const DefaultCurrency = "DOP"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// AccountState represents the lifecycle state of an account
type AccountState string

const (
	AccountStateActive  AccountState = "ACTIVE"
	AccountStateBlocked AccountState = "BLOCKED"
	AccountStateClosed  AccountState = "CLOSED"
)

// IsValid checks if the state is a valid AccountState
func (s AccountState) IsValid() bool {
	switch s {
	case AccountStateActive, AccountStateBlocked, AccountStateClosed:
		return true
	}
	return false
}

// String returns the string representation of AccountState
func (s AccountState) String() string {
	return string(s)
}

// Account is the ledger account aggregate root. Its balance is derived state:
// it always equals the sum of credit minus debit over every posted journal
// line, and only the posting path may move it.
type Account struct {
	shared.BaseAggregateRoot
	ClientID      *uuid.UUID      `json:"client_id"`
	InstitutionID *uuid.UUID      `json:"institution_id"`
	ProductCode   string          `json:"product_code"`
	Currency      string          `json:"currency"`
	State         AccountState    `json:"state"`
	Balance       decimal.Decimal `json:"balance"`
	OpenedAt      time.Time       `json:"opened_at"`
}

// NewAccount opens a new account. The client reference is optional (internal
// and institutional accounts have none); currency defaults to the home
// currency when empty.
func NewAccount(clientID *uuid.UUID, productCode, currency string) (*Account, error) {
	if productCode == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "product code is required")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, shared.NewDomainError("INVALID_FORMAT", "currency must be a 3-letter ISO code")
	}

	a := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		ProductCode:       productCode,
		Currency:          currency,
		State:             AccountStateActive,
		Balance:           decimal.Zero,
		OpenedAt:          time.Now().UTC(),
	}

	a.AddDomainEvent(NewAccountOpenedEvent(a))

	return a, nil
}

// AttachInstitution links the account to a supervised institution.
// Reserve accounts carry this link so encaje queries can find them.
func (a *Account) AttachInstitution(institutionID uuid.UUID) {
	a.InstitutionID = &institutionID
	a.Touch()
	a.IncrementVersion()
}

// Block suspends the account for new certificate issuance
func (a *Account) Block() error {
	if a.State == AccountStateClosed {
		return shared.ErrInvalidState
	}
	a.State = AccountStateBlocked
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Close closes the account permanently
func (a *Account) Close() error {
	if a.State == AccountStateClosed {
		return shared.ErrInvalidState
	}
	a.State = AccountStateClosed
	a.Touch()
	a.IncrementVersion()
	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.State == AccountStateActive
}
