package cert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CertificateType distinguishes the two certificate products
type CertificateType string

const (
	CertificateTypeBalance  CertificateType = "SALDO"
	CertificateTypeSolvency CertificateType = "SOLVENCIA"
)

// IsValid checks if the certificate type is valid
func (t CertificateType) IsValid() bool {
	return t == CertificateTypeBalance || t == CertificateTypeSolvency
}

// String returns the string representation of CertificateType
func (t CertificateType) String() string {
	return string(t)
}

// CertificateState represents the lifecycle state of a certificate
type CertificateState string

const (
	CertificateStateIssued  CertificateState = "ISSUED"
	CertificateStateRevoked CertificateState = "REVOKED"
)

// Certificate attests a fact about an account or a client at issuance time.
// It is immutable once issued; the only transition is ISSUED -> REVOKED.
// The integrity hash covers the canonical content so tampering with a stored
// row is detectable.
type Certificate struct {
	shared.BaseAggregateRoot
	Type          CertificateType  `json:"type"`
	State         CertificateState `json:"state"`
	AccountID     *uuid.UUID       `json:"account_id,omitempty"`
	ClientID      *uuid.UUID       `json:"client_id,omitempty"`
	Balance       decimal.Decimal  `json:"balance"`
	Currency      string           `json:"currency"`
	IssuedBy      uuid.UUID        `json:"issued_by"`
	IssuedAt      time.Time        `json:"issued_at"`
	IntegrityHash string           `json:"integrity_hash"`
	RevokedAt     *time.Time       `json:"revoked_at,omitempty"`
	RevokeReason  string           `json:"revoke_reason,omitempty"`
}

// NewBalanceCertificate issues a balance certificate for an account,
// capturing the balance at issuance time.
func NewBalanceCertificate(accountID, issuedBy uuid.UUID, balance decimal.Decimal, currency string) *Certificate {
	c := &Certificate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              CertificateTypeBalance,
		State:             CertificateStateIssued,
		AccountID:         &accountID,
		Balance:           balance,
		Currency:          currency,
		IssuedBy:          issuedBy,
		IssuedAt:          time.Now().UTC(),
	}
	c.IntegrityHash = c.computeHash()
	return c
}

// NewSolvencyCertificate issues a solvency certificate for a client
func NewSolvencyCertificate(clientID, issuedBy uuid.UUID) *Certificate {
	c := &Certificate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              CertificateTypeSolvency,
		State:             CertificateStateIssued,
		ClientID:          &clientID,
		Balance:           decimal.Zero,
		Currency:          "",
		IssuedBy:          issuedBy,
		IssuedAt:          time.Now().UTC(),
	}
	c.IntegrityHash = c.computeHash()
	return c
}

// computeHash derives the sha256 integrity hash over the canonical content
func (c *Certificate) computeHash() string {
	subject := ""
	if c.AccountID != nil {
		subject = c.AccountID.String()
	} else if c.ClientID != nil {
		subject = c.ClientID.String()
	}
	canonical := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		c.ID, c.Type, subject, c.Balance.StringFixed(4), c.Currency,
		c.IssuedAt.UTC().Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// VerifyIntegrity recomputes the hash and compares it to the stored value
func (c *Certificate) VerifyIntegrity() bool {
	return c.IntegrityHash == c.computeHash()
}

// Revoke withdraws an issued certificate
func (c *Certificate) Revoke(reason string) error {
	if c.State == CertificateStateRevoked {
		return shared.ErrInvalidState
	}
	now := time.Now().UTC()
	c.State = CertificateStateRevoked
	c.RevokedAt = &now
	c.RevokeReason = reason
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}
