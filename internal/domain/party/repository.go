package party

import (
	"context"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientFilter defines filtering options for client listings
type ClientFilter struct {
	shared.Filter
	Search string // matches cedula_rnc or full name
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByCedulaRNC finds a client by its identity document
	FindByCedulaRNC(ctx context.Context, cedulaRNC string) (*Client, error)

	// ExistsByCedulaRNC reports whether the identity document is registered
	ExistsByCedulaRNC(ctx context.Context, cedulaRNC string) (bool, error)

	// FindAll lists clients with filtering and returns the unpaged total
	FindAll(ctx context.Context, filter ClientFilter) ([]Client, int64, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error
}

// InstitutionRepository defines the interface for institution persistence
type InstitutionRepository interface {
	// FindByID finds an institution by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Institution, error)

	// FindBySIBCode finds an institution by its SIB registry code
	FindBySIBCode(ctx context.Context, sibCode string) (*Institution, error)

	// ExistsBySIBCode reports whether the SIB code is registered
	ExistsBySIBCode(ctx context.Context, sibCode string) (bool, error)

	// Save creates or updates an institution
	Save(ctx context.Context, institution *Institution) error
}
