package ledger

import (
	"context"
	"fmt"

	"github.com/bancentral/corebank/internal/application/events"
	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"github.com/bancentral/corebank/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostingService handles journal posting: regular transactions, reversals and
// RTGS settlement between institution reserve accounts.
type PostingService struct {
	accounts     ledger.AccountRepository
	transactions ledger.TransactionRepository
	institutions party.InstitutionRepository
}

// NewPostingService creates a new PostingService
func NewPostingService(
	accounts ledger.AccountRepository,
	transactions ledger.TransactionRepository,
	institutions party.InstitutionRepository,
) *PostingService {
	return &PostingService{
		accounts:     accounts,
		transactions: transactions,
		institutions: institutions,
	}
}

// LineRequest is one journal line of a posting request
type LineRequest struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// PostingRequest represents a request to post a balanced transaction
type PostingRequest struct {
	Type        string
	Currency    string
	ExternalRef string
	Description string
	Lines       []LineRequest
}

// Post validates and atomically posts a balanced transaction.
// Checks run in a fixed order: referenced accounts must exist and be active
// in the posting currency, the lines must balance, and the external reference
// must not have been posted before.
func (s *PostingService) Post(ctx context.Context, req PostingRequest) (*ledger.Transaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "posting", "post")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrExternalRef, req.ExternalRef,
		telemetry.SpanAttrCurrency, req.Currency,
	)

	if len(req.Lines) == 0 {
		err := shared.NewDomainError("MISSING_PARAMETER", "at least one journal line is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	ids := make([]uuid.UUID, len(req.Lines))
	for i, line := range req.Lines {
		ids[i] = line.AccountID
	}
	accounts, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = ledger.DefaultCurrency
	}
	for _, id := range ids {
		account, ok := accounts[id]
		if !ok {
			telemetry.RecordError(span, shared.ErrAccountNotFound)
			return nil, shared.ErrAccountNotFound
		}
		if !account.IsActive() {
			telemetry.RecordError(span, shared.ErrAccountNotActive)
			return nil, shared.ErrAccountNotActive
		}
		if account.Currency != currency {
			err := shared.NewDomainError("INVALID_FORMAT",
				fmt.Sprintf("account %s holds %s, not %s", id, account.Currency, currency))
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	inputs := make([]ledger.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		inputs[i] = ledger.LineInput{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
		}
	}

	var externalRef *string
	if req.ExternalRef != "" {
		externalRef = &req.ExternalRef
	}

	tx, err := ledger.NewTransaction(req.Type, currency, externalRef, req.Description, inputs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if externalRef != nil {
		exists, err := s.transactions.ExistsByExternalRef(ctx, *externalRef)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check external reference: %w", err)
		}
		if exists {
			telemetry.RecordError(span, shared.ErrDuplicateReference)
			return nil, shared.ErrDuplicateReference
		}
	}

	if err := s.transactions.Post(ctx, tx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	events.Publish(ctx, tx)

	telemetry.SetAttribute(span, telemetry.SpanAttrTransactionID, tx.ID.String())
	logger.L(ctx).Info("transaction posted",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", tx.Type),
		zap.String("amount", tx.TotalAmount.String()),
	)

	return tx, nil
}

// Reverse posts the compensating mirror of a posted transaction. The original
// keeps its lines and flips to REVERSED; balances net back out through the
// mirror's own increments.
func (s *PostingService) Reverse(ctx context.Context, transactionID uuid.UUID, reason string) (*ledger.Transaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "posting", "reverse")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrTransactionID, transactionID.String())

	original, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	reversal, err := original.BuildReversal(reason)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.transactions.PostReversal(ctx, original, reversal); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	events.Publish(ctx, original, reversal)

	logger.L(ctx).Info("transaction reversed",
		zap.String("transaction_id", original.ID.String()),
		zap.String("reversal_id", reversal.ID.String()),
	)

	return reversal, nil
}

// RTGSRequest represents a gross settlement transfer between two institutions
type RTGSRequest struct {
	FromSIBCode string
	ToSIBCode   string
	Amount      decimal.Decimal
	Currency    string
	ExternalRef string
	Description string
}

// TransactionTypeRTGS marks gross settlement transfers between reserve accounts.
const TransactionTypeRTGS = "RTGS"

// PostRTGS settles a transfer between the reserve accounts of two supervised
// institutions as a regular two-line posting.
func (s *PostingService) PostRTGS(ctx context.Context, req RTGSRequest) (*ledger.Transaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "posting", "post_rtgs")
	defer span.End()

	if req.FromSIBCode == "" || req.ToSIBCode == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "origin and destination institutions are required")
	}
	if req.FromSIBCode == req.ToSIBCode {
		return nil, shared.NewDomainError("INVALID_FORMAT", "origin and destination must differ")
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_FORMAT", "amount must be positive")
	}

	currency := req.Currency
	if currency == "" {
		currency = ledger.DefaultCurrency
	}

	from, err := s.reserveAccount(ctx, req.FromSIBCode, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	to, err := s.reserveAccount(ctx, req.ToSIBCode, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("RTGS %s -> %s", req.FromSIBCode, req.ToSIBCode)
	}

	return s.Post(ctx, PostingRequest{
		Type:        TransactionTypeRTGS,
		Currency:    currency,
		ExternalRef: req.ExternalRef,
		Description: description,
		Lines: []LineRequest{
			{AccountID: from.ID, Debit: req.Amount},
			{AccountID: to.ID, Credit: req.Amount},
		},
	})
}

// reserveAccount resolves the reserve account an institution holds in the
// given currency.
func (s *PostingService) reserveAccount(ctx context.Context, sibCode, currency string) (*ledger.Account, error) {
	institution, err := s.institutions.FindBySIBCode(ctx, sibCode)
	if err != nil {
		return nil, err
	}
	if !institution.Active {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("institution %s is not active", sibCode))
	}

	accounts, err := s.accounts.FindByInstitution(ctx, institution.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reserve accounts: %w", err)
	}
	for i := range accounts {
		if accounts[i].Currency == currency && accounts[i].IsActive() {
			return &accounts[i], nil
		}
	}
	return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND",
		fmt.Sprintf("institution %s has no active %s reserve account", sibCode, currency))
}
