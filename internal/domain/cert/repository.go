package cert

import (
	"context"

	"github.com/google/uuid"
)

// CertificateRepository defines the interface for certificate persistence
type CertificateRepository interface {
	// FindByID finds a certificate by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Certificate, error)

	// FindByAccount lists certificates issued for an account
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]Certificate, error)

	// FindByClient lists certificates issued for a client
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Certificate, error)

	// Save creates or updates a certificate
	Save(ctx context.Context, certificate *Certificate) error
}
