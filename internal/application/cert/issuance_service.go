package cert

import (
	"context"
	"fmt"
	"time"

	"github.com/bancentral/corebank/internal/domain/cert"
	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"github.com/bancentral/corebank/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssuanceService issues and revokes balance and solvency certificates
type IssuanceService struct {
	certificates cert.CertificateRepository
	accounts     ledger.AccountRepository
	clients      party.ClientRepository
}

// NewIssuanceService creates a new IssuanceService
func NewIssuanceService(
	certificates cert.CertificateRepository,
	accounts ledger.AccountRepository,
	clients party.ClientRepository,
) *IssuanceService {
	return &IssuanceService{
		certificates: certificates,
		accounts:     accounts,
		clients:      clients,
	}
}

// IssueBalanceCertificate issues a certificate attesting the current balance
// of an active account.
func (s *IssuanceService) IssueBalanceCertificate(ctx context.Context, accountID, issuedBy uuid.UUID) (*cert.Certificate, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "issuance", "issue_balance_certificate")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, accountID.String())

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !account.IsActive() {
		telemetry.RecordError(span, shared.ErrAccountNotActive)
		return nil, shared.ErrAccountNotActive
	}

	certificate := cert.NewBalanceCertificate(account.ID, issuedBy, account.Balance, account.Currency)
	if err := s.certificates.Save(ctx, certificate); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save certificate: %w", err)
	}

	logger.L(ctx).Info("balance certificate issued",
		zap.String("certificate_id", certificate.ID.String()),
		zap.String("account_id", account.ID.String()),
	)

	return certificate, nil
}

// IssueSolvencyCertificate issues a certificate attesting that a client with
// current KYC is in good standing.
func (s *IssuanceService) IssueSolvencyCertificate(ctx context.Context, clientID, issuedBy uuid.UUID) (*cert.Certificate, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "issuance", "issue_solvency_certificate")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, clientID.String())

	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !client.IsKYCCurrent(time.Now().UTC()) {
		telemetry.RecordError(span, shared.ErrKYCExpired)
		return nil, shared.ErrKYCExpired
	}

	certificate := cert.NewSolvencyCertificate(client.ID, issuedBy)
	if err := s.certificates.Save(ctx, certificate); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save certificate: %w", err)
	}

	logger.L(ctx).Info("solvency certificate issued",
		zap.String("certificate_id", certificate.ID.String()),
		zap.String("client_id", client.ID.String()),
	)

	return certificate, nil
}

// GetCertificate returns a certificate by ID
func (s *IssuanceService) GetCertificate(ctx context.Context, certificateID uuid.UUID) (*cert.Certificate, error) {
	return s.certificates.FindByID(ctx, certificateID)
}

// RevokeCertificate marks an issued certificate as revoked
func (s *IssuanceService) RevokeCertificate(ctx context.Context, certificateID uuid.UUID, reason string) (*cert.Certificate, error) {
	certificate, err := s.certificates.FindByID(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	if err := certificate.Revoke(reason); err != nil {
		return nil, err
	}
	if err := s.certificates.Save(ctx, certificate); err != nil {
		return nil, fmt.Errorf("failed to save certificate: %w", err)
	}

	logger.L(ctx).Info("certificate revoked",
		zap.String("certificate_id", certificate.ID.String()),
	)

	return certificate, nil
}
