package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/bancentral/corebank/internal/domain/admin"
	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QueryService answers read-only ledger questions: balances, cut-off
// balances, statements, listings and supervisory aggregates.
type QueryService struct {
	accounts     ledger.AccountRepository
	transactions ledger.TransactionRepository
	clients      party.ClientRepository
	institutions party.InstitutionRepository
	parameters   admin.ParameterRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(
	accounts ledger.AccountRepository,
	transactions ledger.TransactionRepository,
	clients party.ClientRepository,
	institutions party.InstitutionRepository,
	parameters admin.ParameterRepository,
) *QueryService {
	return &QueryService{
		accounts:     accounts,
		transactions: transactions,
		clients:      clients,
		institutions: institutions,
		parameters:   parameters,
	}
}

// GetAccount returns an account by ID
func (s *QueryService) GetAccount(ctx context.Context, accountID uuid.UUID) (*ledger.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

// GetBalance returns the current balance of an account
func (s *QueryService) GetBalance(ctx context.Context, accountID uuid.UUID) (*ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "get_balance")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, accountID.String())

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return account, nil
}

// CutoffBalance is a balance reconstructed as of a cut-off instant
type CutoffBalance struct {
	AccountID uuid.UUID       `json:"account_id"`
	Currency  string          `json:"currency"`
	Cutoff    time.Time       `json:"cutoff"`
	Balance   decimal.Decimal `json:"balance"`
}

// GetBalanceAsOf reconstructs an account balance from its journal lines with
// effective date at or before the cut-off. The stored balance column is never
// consulted.
func (s *QueryService) GetBalanceAsOf(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (*CutoffBalance, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "get_balance_cutoff")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, accountID.String())

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	balance, err := s.transactions.SumDeltaAsOf(ctx, accountID, cutoff)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum journal lines: %w", err)
	}

	return &CutoffBalance{
		AccountID: account.ID,
		Currency:  account.Currency,
		Cutoff:    cutoff,
		Balance:   balance,
	}, nil
}

// GetMovements pages through the posted journal lines of an account
func (s *QueryService) GetMovements(ctx context.Context, accountID uuid.UUID, filter ledger.MovementFilter) (shared.Paginated[ledger.Movement], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "get_movements")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, accountID.String())

	var empty shared.Paginated[ledger.Movement]
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		telemetry.RecordError(span, err)
		return empty, err
	}

	filter.Filter = filter.Filter.Normalize()
	movements, total, err := s.transactions.FindMovements(ctx, accountID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return empty, fmt.Errorf("failed to list movements: %w", err)
	}

	return shared.NewPaginated(movements, total, filter.Page, filter.PageSize), nil
}

// GetTransaction returns a transaction with its journal lines
func (s *QueryService) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*ledger.Transaction, error) {
	return s.transactions.FindByID(ctx, transactionID)
}

// ListAccounts lists accounts with filtering
func (s *QueryService) ListAccounts(ctx context.Context, filter ledger.AccountFilter) (shared.Paginated[ledger.Account], error) {
	filter.Filter = filter.Filter.Normalize()
	accounts, total, err := s.accounts.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ledger.Account]{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	return shared.NewPaginated(accounts, total, filter.Page, filter.PageSize), nil
}

// ListTransactions lists transactions with filtering
func (s *QueryService) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) (shared.Paginated[ledger.Transaction], error) {
	filter.Filter = filter.Filter.Normalize()
	transactions, total, err := s.transactions.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ledger.Transaction]{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	return shared.NewPaginated(transactions, total, filter.Page, filter.PageSize), nil
}

// AccountSummary is a client's account portfolio: the owning client together
// with every account opened under it.
type AccountSummary struct {
	Client   *party.Client    `json:"client"`
	Accounts []ledger.Account `json:"accounts"`
}

// GetAccountSummary returns the account portfolio of a client: one entry per
// account with product, currency, state and current balance.
func (s *QueryService) GetAccountSummary(ctx context.Context, clientID uuid.UUID) (*AccountSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "get_account_summary")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, clientID.String())

	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	accounts, err := s.accounts.FindByClient(ctx, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list client accounts: %w", err)
	}

	return &AccountSummary{Client: client, Accounts: accounts}, nil
}

// Indicators aggregates posting activity between two dates
func (s *QueryService) Indicators(ctx context.Context, from, to time.Time) (ledger.ActivityIndicators, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "indicators")
	defer span.End()

	indicators, err := s.transactions.Indicators(ctx, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return ledger.ActivityIndicators{}, fmt.Errorf("failed to aggregate indicators: %w", err)
	}
	return indicators, nil
}

// Reserves aggregates institution reserve balances per currency
func (s *QueryService) Reserves(ctx context.Context) ([]ledger.CurrencyReserve, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "reserves")
	defer span.End()

	reserves, err := s.accounts.SumReservesByCurrency(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to aggregate reserves: %w", err)
	}
	return reserves, nil
}

// DepositBaseKeyPrefix prefixes the registry keys holding each institution's
// declared deposit base, e.g. "DEPOSITOS_B001". Institutions' client deposits
// live outside this ledger, so the base is declared through SET_PARAM.
const DepositBaseKeyPrefix = "DEPOSITOS_"

// EncajePosition is the reserve requirement standing of one institution as of
// a cut-off date.
type EncajePosition struct {
	SIBCode    string          `json:"sib_code"`
	Date       time.Time       `json:"date"`
	Ratio      decimal.Decimal `json:"ratio"`
	Deposits   decimal.Decimal `json:"deposits"`
	Required   decimal.Decimal `json:"required"`
	Maintained decimal.Decimal `json:"maintained"`
	Difference decimal.Decimal `json:"difference"`
}

// Encaje computes the reserve requirement standing of an institution:
// required is the declared deposit base times the configured ratio;
// maintained is the cut-off balance of the institution's reserve accounts.
func (s *QueryService) Encaje(ctx context.Context, sibCode string, date time.Time) (*EncajePosition, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "encaje")
	defer span.End()
	telemetry.SetAttribute(span, "sib_code", sibCode)

	if sibCode == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "sib_code is required")
	}

	institution, err := s.institutions.FindBySIBCode(ctx, sibCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	ratio, err := s.decimalParameter(ctx, admin.ReserveRatioKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	deposits, err := s.decimalParameter(ctx, DepositBaseKeyPrefix+institution.SIBCode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	reserves, err := s.accounts.FindByInstitution(ctx, institution.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to resolve reserve accounts: %w", err)
	}

	maintained := decimal.Zero
	for _, account := range reserves {
		delta, err := s.transactions.SumDeltaAsOf(ctx, account.ID, date)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to sum reserve lines: %w", err)
		}
		maintained = maintained.Add(delta)
	}

	required := deposits.Mul(ratio)
	return &EncajePosition{
		SIBCode:    institution.SIBCode,
		Date:       date,
		Ratio:      ratio,
		Deposits:   deposits,
		Required:   required,
		Maintained: maintained,
		Difference: maintained.Sub(required),
	}, nil
}

// decimalParameter reads a registry parameter and parses it as a decimal
func (s *QueryService) decimalParameter(ctx context.Context, key string) (decimal.Decimal, error) {
	parameter, err := s.parameters.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	value, err := decimal.NewFromString(parameter.Value)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_FORMAT",
			fmt.Sprintf("parameter %s is not a decimal: %s", key, parameter.Value))
	}
	return value, nil
}
