package models

import (
	"time"

	"github.com/bancentral/corebank/internal/domain/cert"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CertificateModel is the persistence model for the Certificate aggregate root.
type CertificateModel struct {
	AggregateModel
	Type          cert.CertificateType  `gorm:"type:varchar(15);not null;index"`
	State         cert.CertificateState `gorm:"type:varchar(15);not null;default:'ISSUED';index"`
	AccountID     *uuid.UUID            `gorm:"type:uuid;index"`
	ClientID      *uuid.UUID            `gorm:"type:uuid;index"`
	Balance       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Currency      string                `gorm:"type:char(3)"`
	IssuedBy      uuid.UUID             `gorm:"type:uuid;not null"`
	IssuedAt      time.Time             `gorm:"not null"`
	IntegrityHash string                `gorm:"type:char(64);not null"`
	RevokedAt     *time.Time
	RevokeReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CertificateModel) TableName() string {
	return "certificates"
}

// ToDomain converts the persistence model to a domain Certificate entity.
func (m *CertificateModel) ToDomain() *cert.Certificate {
	return &cert.Certificate{
		BaseAggregateRoot: m.toAggregateRoot(),
		Type:              m.Type,
		State:             m.State,
		AccountID:         m.AccountID,
		ClientID:          m.ClientID,
		Balance:           m.Balance,
		Currency:          m.Currency,
		IssuedBy:          m.IssuedBy,
		IssuedAt:          m.IssuedAt,
		IntegrityHash:     m.IntegrityHash,
		RevokedAt:         m.RevokedAt,
		RevokeReason:      m.RevokeReason,
	}
}

// FromDomain populates the persistence model from a domain Certificate entity.
func (m *CertificateModel) FromDomain(c *cert.Certificate) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Type = c.Type
	m.State = c.State
	m.AccountID = c.AccountID
	m.ClientID = c.ClientID
	m.Balance = c.Balance
	m.Currency = c.Currency
	m.IssuedBy = c.IssuedBy
	m.IssuedAt = c.IssuedAt
	m.IntegrityHash = c.IntegrityHash
	m.RevokedAt = c.RevokedAt
	m.RevokeReason = c.RevokeReason
}

// CertificateModelFromDomain creates a new persistence model from a domain Certificate.
func CertificateModelFromDomain(c *cert.Certificate) *CertificateModel {
	m := &CertificateModel{}
	m.FromDomain(c)
	return m
}
