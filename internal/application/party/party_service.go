package party

import (
	"context"
	"fmt"
	"time"

	"github.com/bancentral/corebank/internal/application/events"
	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"github.com/bancentral/corebank/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReserveProductCode is the product under which institution reserve accounts
// are opened.
const ReserveProductCode = "ENCAJE"

// PartyService manages clients, supervised institutions and account opening
type PartyService struct {
	clients      party.ClientRepository
	institutions party.InstitutionRepository
	accounts     ledger.AccountRepository
}

// NewPartyService creates a new PartyService
func NewPartyService(
	clients party.ClientRepository,
	institutions party.InstitutionRepository,
	accounts ledger.AccountRepository,
) *PartyService {
	return &PartyService{
		clients:      clients,
		institutions: institutions,
		accounts:     accounts,
	}
}

// CreateClientRequest represents a client registration request
type CreateClientRequest struct {
	CedulaRNC     string
	FullName      string
	Type          party.ClientType
	KYCValidUntil *time.Time
}

// CreateClient registers a new client. The identity document must not be
// registered already.
func (s *PartyService) CreateClient(ctx context.Context, req CreateClientRequest) (*party.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "create_client")
	defer span.End()

	exists, err := s.clients.ExistsByCedulaRNC(ctx, req.CedulaRNC)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check identity document: %w", err)
	}
	if exists {
		telemetry.RecordError(span, shared.ErrClientExists)
		return nil, shared.ErrClientExists
	}

	client, err := party.NewClient(req.CedulaRNC, req.FullName, req.Type, req.KYCValidUntil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.clients.Save(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, client.ID.String())
	logger.L(ctx).Info("client registered",
		zap.String("client_id", client.ID.String()),
		zap.String("type", client.Type.String()),
	)

	return client, nil
}

// GetClient returns a client by ID
func (s *PartyService) GetClient(ctx context.Context, clientID uuid.UUID) (*party.Client, error) {
	return s.clients.FindByID(ctx, clientID)
}

// GetClientByCedulaRNC returns a client by its identity document
func (s *PartyService) GetClientByCedulaRNC(ctx context.Context, cedulaRNC string) (*party.Client, error) {
	if cedulaRNC == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "cedula_rnc is required")
	}
	return s.clients.FindByCedulaRNC(ctx, cedulaRNC)
}

// ListClients lists clients with filtering
func (s *PartyService) ListClients(ctx context.Context, filter party.ClientFilter) (shared.Paginated[party.Client], error) {
	filter.Filter = filter.Filter.Normalize()
	clients, total, err := s.clients.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[party.Client]{}, fmt.Errorf("failed to list clients: %w", err)
	}
	return shared.NewPaginated(clients, total, filter.Page, filter.PageSize), nil
}

// RenewKYC extends a client's KYC validity date
func (s *PartyService) RenewKYC(ctx context.Context, clientID uuid.UUID, until time.Time) (*party.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := client.RenewKYC(until); err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}
	return client, nil
}

// OpenAccountRequest represents an account opening request. ClientID is
// optional: internal and institutional accounts are opened without an owner.
type OpenAccountRequest struct {
	ClientID    *uuid.UUID
	ProductCode string
	Currency    string
}

// OpenAccount opens a ledger account. When an owning client is given, its
// KYC validity must cover the opening date; ownerless accounts skip the
// check.
func (s *PartyService) OpenAccount(ctx context.Context, req OpenAccountRequest) (*ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "open_account")
	defer span.End()

	if req.ClientID != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrClientID, req.ClientID.String())

		client, err := s.clients.FindByID(ctx, *req.ClientID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !client.IsKYCCurrent(time.Now().UTC()) {
			telemetry.RecordError(span, shared.ErrKYCExpired)
			return nil, shared.ErrKYCExpired
		}
	}

	account, err := ledger.NewAccount(req.ClientID, req.ProductCode, req.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	events.Publish(ctx, account)

	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, account.ID.String())
	fields := []zap.Field{
		zap.String("account_id", account.ID.String()),
		zap.String("product_code", account.ProductCode),
	}
	if req.ClientID != nil {
		fields = append(fields, zap.String("client_id", req.ClientID.String()))
	}
	logger.L(ctx).Info("account opened", fields...)

	return account, nil
}

// CreateInstitutionRequest represents an institution registration request
type CreateInstitutionRequest struct {
	SIBCode  string
	Name     string
	Type     party.InstitutionType
	Currency string
}

// CreateInstitution registers a supervised institution and opens its reserve
// account in the requested currency.
func (s *PartyService) CreateInstitution(ctx context.Context, req CreateInstitutionRequest) (*party.Institution, *ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "create_institution")
	defer span.End()

	exists, err := s.institutions.ExistsBySIBCode(ctx, req.SIBCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, fmt.Errorf("failed to check SIB code: %w", err)
	}
	if exists {
		telemetry.RecordError(span, shared.ErrInstitutionExists)
		return nil, nil, shared.ErrInstitutionExists
	}

	institution, err := party.NewInstitution(req.SIBCode, req.Name, req.Type)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	reserve, err := ledger.NewAccount(nil, ReserveProductCode, req.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}
	reserve.AttachInstitution(institution.ID)

	if err := s.institutions.Save(ctx, institution); err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, fmt.Errorf("failed to save institution: %w", err)
	}
	if err := s.accounts.Save(ctx, reserve); err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, fmt.Errorf("failed to save reserve account: %w", err)
	}
	events.Publish(ctx, reserve)

	logger.L(ctx).Info("institution registered",
		zap.String("institution_id", institution.ID.String()),
		zap.String("sib_code", institution.SIBCode),
		zap.String("reserve_account_id", reserve.ID.String()),
	)

	return institution, reserve, nil
}

// GetInstitution returns an institution by its SIB registry code
func (s *PartyService) GetInstitution(ctx context.Context, sibCode string) (*party.Institution, error) {
	if sibCode == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "sib_code is required")
	}
	return s.institutions.FindBySIBCode(ctx, sibCode)
}
