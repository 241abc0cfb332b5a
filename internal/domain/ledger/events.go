package ledger

import (
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountOpenedEvent is raised when a new account is opened
type AccountOpenedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID  `json:"account_id"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	ProductCode string     `json:"product_code"`
	Currency    string     `json:"currency"`
}

// EventType returns the event type name
func (e *AccountOpenedEvent) EventType() string {
	return "AccountOpened"
}

// NewAccountOpenedEvent creates a new AccountOpenedEvent
func NewAccountOpenedEvent(a *Account) *AccountOpenedEvent {
	return &AccountOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountOpened", a.ID, "Account"),
		AccountID:       a.ID,
		ClientID:        a.ClientID,
		ProductCode:     a.ProductCode,
		Currency:        a.Currency,
	}
}

// TransactionPostedEvent is raised when a balanced transaction is posted
type TransactionPostedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	ExternalRef   *string         `json:"external_ref,omitempty"`
	Type          string          `json:"type"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	LineCount     int             `json:"line_count"`
}

// EventType returns the event type name
func (e *TransactionPostedEvent) EventType() string {
	return "TransactionPosted"
}

// NewTransactionPostedEvent creates a new TransactionPostedEvent
func NewTransactionPostedEvent(t *Transaction) *TransactionPostedEvent {
	return &TransactionPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransactionPosted", t.ID, "Transaction"),
		TransactionID:   t.ID,
		ExternalRef:     t.ExternalRef,
		Type:            t.Type,
		Currency:        t.Currency,
		TotalAmount:     t.TotalAmount,
		LineCount:       len(t.Lines),
	}
}

// TransactionReversedEvent is raised when a posted transaction is reversed
type TransactionReversedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	ReversalID    uuid.UUID       `json:"reversal_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Reason        string          `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *TransactionReversedEvent) EventType() string {
	return "TransactionReversed"
}

// NewTransactionReversedEvent creates a new TransactionReversedEvent
func NewTransactionReversedEvent(t *Transaction, reversalID uuid.UUID) *TransactionReversedEvent {
	return &TransactionReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransactionReversed", t.ID, "Transaction"),
		TransactionID:   t.ID,
		ReversalID:      reversalID,
		TotalAmount:     t.TotalAmount,
		Reason:          t.ReversalReason,
	}
}
