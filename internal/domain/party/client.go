package party

import (
	"time"

	"github.com/bancentral/corebank/internal/domain/shared"
)

// ClientType distinguishes natural persons from juridical entities
type ClientType string

const (
	ClientTypePerson  ClientType = "FISICA"
	ClientTypeCompany ClientType = "JURIDICA"
)

// IsValid checks if the client type is valid
func (c ClientType) IsValid() bool {
	return c == ClientTypePerson || c == ClientTypeCompany
}

// String returns the string representation of ClientType
func (c ClientType) String() string {
	return string(c)
}

// Client is a ledger customer identified by its cedula or RNC. The KYC
// validity date gates account opening and solvency certificates.
type Client struct {
	shared.BaseAggregateRoot
	CedulaRNC     string     `json:"cedula_rnc"`
	FullName      string     `json:"full_name"`
	Type          ClientType `json:"type"`
	KYCValidUntil *time.Time `json:"kyc_valid_until"`
}

// NewClient registers a new client
func NewClient(cedulaRNC, fullName string, clientType ClientType, kycValidUntil *time.Time) (*Client, error) {
	if cedulaRNC == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "cedula_rnc is required")
	}
	if fullName == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "full name is required")
	}
	if !clientType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", "client type must be FISICA or JURIDICA")
	}

	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CedulaRNC:         cedulaRNC,
		FullName:          fullName,
		Type:              clientType,
		KYCValidUntil:     kycValidUntil,
	}, nil
}

// IsKYCCurrent reports whether the client's KYC validity covers the given
// instant. A client without a recorded validity date is never current.
func (c *Client) IsKYCCurrent(at time.Time) bool {
	if c.KYCValidUntil == nil {
		return false
	}
	return !c.KYCValidUntil.Before(at)
}

// RenewKYC extends the KYC validity date
func (c *Client) RenewKYC(until time.Time) error {
	if c.KYCValidUntil != nil && until.Before(*c.KYCValidUntil) {
		return shared.NewDomainError("INVALID_FORMAT", "KYC validity cannot move backwards")
	}
	c.KYCValidUntil = &until
	c.Touch()
	c.IncrementVersion()
	return nil
}
