package models

import (
	"time"

	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate root.
type AccountModel struct {
	AggregateModel
	ClientID      *uuid.UUID          `gorm:"type:uuid;index"`
	InstitutionID *uuid.UUID          `gorm:"type:uuid;index"`
	ProductCode   string              `gorm:"type:varchar(30);not null;index"`
	Currency      string              `gorm:"type:char(3);not null;index"`
	State         ledger.AccountState `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Balance       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	OpenedAt      time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseAggregateRoot: m.toAggregateRoot(),
		ClientID:          m.ClientID,
		InstitutionID:     m.InstitutionID,
		ProductCode:       m.ProductCode,
		Currency:          m.Currency,
		State:             m.State,
		Balance:           m.Balance,
		OpenedAt:          m.OpenedAt,
	}
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.ClientID = a.ClientID
	m.InstitutionID = a.InstitutionID
	m.ProductCode = a.ProductCode
	m.Currency = a.Currency
	m.State = a.State
	m.Balance = a.Balance
	m.OpenedAt = a.OpenedAt
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// TransactionModel is the persistence model for the Transaction aggregate root.
type TransactionModel struct {
	AggregateModel
	ExternalRef    *string                 `gorm:"type:varchar(100);uniqueIndex:idx_transactions_external_ref"`
	Type           string                  `gorm:"type:varchar(30);not null;index"`
	State          ledger.TransactionState `gorm:"type:varchar(20);not null;index"`
	Currency       string                  `gorm:"type:char(3);not null"`
	TotalAmount    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Description    string                  `gorm:"type:varchar(500)"`
	Lines          []JournalLineModel      `gorm:"foreignKey:TransactionID;references:ID"`
	ValidatedAt    *time.Time
	PostedAt       *time.Time `gorm:"index"`
	ReversedAt     *time.Time
	ReversalOf     *uuid.UUID `gorm:"type:uuid;index"`
	ReversedBy     *uuid.UUID `gorm:"type:uuid"`
	ReversalReason string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	lines := make([]ledger.JournalLine, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = l.ToDomain()
	}
	return &ledger.Transaction{
		BaseAggregateRoot: m.toAggregateRoot(),
		ExternalRef:       m.ExternalRef,
		Type:              m.Type,
		State:             m.State,
		Currency:          m.Currency,
		TotalAmount:       m.TotalAmount,
		Description:       m.Description,
		Lines:             lines,
		ValidatedAt:       m.ValidatedAt,
		PostedAt:          m.PostedAt,
		ReversedAt:        m.ReversedAt,
		ReversalOf:        m.ReversalOf,
		ReversedBy:        m.ReversedBy,
		ReversalReason:    m.ReversalReason,
	}
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.ExternalRef = t.ExternalRef
	m.Type = t.Type
	m.State = t.State
	m.Currency = t.Currency
	m.TotalAmount = t.TotalAmount
	m.Description = t.Description
	m.ValidatedAt = t.ValidatedAt
	m.PostedAt = t.PostedAt
	m.ReversedAt = t.ReversedAt
	m.ReversalOf = t.ReversalOf
	m.ReversedBy = t.ReversedBy
	m.ReversalReason = t.ReversalReason

	m.Lines = make([]JournalLineModel, len(t.Lines))
	for i, l := range t.Lines {
		m.Lines[i] = JournalLineModelFromDomain(l)
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// JournalLineModel is the persistence model for a journal line.
// Lines are immutable once inserted; there is no update path.
type JournalLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_journal_lines_account_effective"`
	Debit         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EffectiveAt   time.Time       `gorm:"not null;index:idx_journal_lines_account_effective"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_lines"
}

// ToDomain converts the persistence model to a domain JournalLine.
func (m JournalLineModel) ToDomain() ledger.JournalLine {
	return ledger.JournalLine{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Debit:         m.Debit,
		Credit:        m.Credit,
		EffectiveAt:   m.EffectiveAt,
	}
}

// JournalLineModelFromDomain creates a persistence model from a domain JournalLine.
func JournalLineModelFromDomain(l ledger.JournalLine) JournalLineModel {
	return JournalLineModel{
		ID:            l.ID,
		TransactionID: l.TransactionID,
		AccountID:     l.AccountID,
		Debit:         l.Debit,
		Credit:        l.Credit,
		EffectiveAt:   l.EffectiveAt,
	}
}
