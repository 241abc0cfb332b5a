package ledger

import (
	"context"
	"time"

	"github.com/bancentral/corebank/internal/domain/admin"
	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of ledger.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Account, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]ledger.Account, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]ledger.Account, error) {
	args := m.Called(ctx, institutionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, filter ledger.AccountFilter) ([]ledger.Account, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SumReservesByCurrency(ctx context.Context) ([]ledger.CurrencyReserve, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.CurrencyReserve), args.Error(1)
}

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ExistsByExternalRef(ctx context.Context, externalRef string) (bool, error) {
	args := m.Called(ctx, externalRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) Post(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) PostReversal(ctx context.Context, original, reversal *ledger.Transaction) error {
	args := m.Called(ctx, original, reversal)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindMovements(ctx context.Context, accountID uuid.UUID, filter ledger.MovementFilter) ([]ledger.Movement, int64, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.Movement), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) SumDeltaAsOf(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) Indicators(ctx context.Context, from, to time.Time) (ledger.ActivityIndicators, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(ledger.ActivityIndicators), args.Error(1)
}

// MockInstitutionRepository is a mock implementation of party.InstitutionRepository
type MockInstitutionRepository struct {
	mock.Mock
}

func (m *MockInstitutionRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Institution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Institution), args.Error(1)
}

func (m *MockInstitutionRepository) FindBySIBCode(ctx context.Context, sibCode string) (*party.Institution, error) {
	args := m.Called(ctx, sibCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Institution), args.Error(1)
}

func (m *MockInstitutionRepository) ExistsBySIBCode(ctx context.Context, sibCode string) (bool, error) {
	args := m.Called(ctx, sibCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstitutionRepository) Save(ctx context.Context, institution *party.Institution) error {
	args := m.Called(ctx, institution)
	return args.Error(0)
}

// MockClientRepository is a mock implementation of party.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*party.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Client), args.Error(1)
}

func (m *MockClientRepository) FindByCedulaRNC(ctx context.Context, cedulaRNC string) (*party.Client, error) {
	args := m.Called(ctx, cedulaRNC)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Client), args.Error(1)
}

func (m *MockClientRepository) ExistsByCedulaRNC(ctx context.Context, cedulaRNC string) (bool, error) {
	args := m.Called(ctx, cedulaRNC)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter party.ClientFilter) ([]party.Client, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]party.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) Save(ctx context.Context, client *party.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

// MockParameterRepository is a mock implementation of admin.ParameterRepository
type MockParameterRepository struct {
	mock.Mock
}

func (m *MockParameterRepository) Get(ctx context.Context, key string) (*admin.Parameter, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.Parameter), args.Error(1)
}

func (m *MockParameterRepository) Set(ctx context.Context, parameter *admin.Parameter) error {
	args := m.Called(ctx, parameter)
	return args.Error(0)
}
