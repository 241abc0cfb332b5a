package wire

import (
	"context"
	"strings"
	"testing"
	"time"

	appadmin "github.com/bancentral/corebank/internal/application/admin"
	appcert "github.com/bancentral/corebank/internal/application/cert"
	appledger "github.com/bancentral/corebank/internal/application/ledger"
	appparty "github.com/bancentral/corebank/internal/application/party"
	"github.com/bancentral/corebank/internal/infrastructure/auth"
	"github.com/bancentral/corebank/internal/infrastructure/persistence"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSession = "sess-operator"

// newTestRouter wires the full stack over an in-memory database: real
// repositories, real services, and an in-memory gate holding one operator
// session with every capability.
func newTestRouter(t *testing.T) *CommandRouter {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AccountModel{},
		&models.TransactionModel{},
		&models.JournalLineModel{},
		&models.ClientModel{},
		&models.InstitutionModel{},
		&models.CertificateModel{},
		&models.ParameterModel{},
		&models.ExchangeRateModel{},
	))

	accounts := persistence.NewGormAccountRepository(db)
	transactions := persistence.NewGormTransactionRepository(db)
	clients := persistence.NewGormClientRepository(db)
	institutions := persistence.NewGormInstitutionRepository(db)
	certificates := persistence.NewGormCertificateRepository(db)
	parameters := persistence.NewGormParameterRepository(db)
	rates := persistence.NewGormExchangeRateRepository(db)

	services := Services{
		Posting:  appledger.NewPostingService(accounts, transactions, institutions),
		Query:    appledger.NewQueryService(accounts, transactions, clients, institutions, parameters),
		Party:    appparty.NewPartyService(clients, institutions, accounts),
		Issuance: appcert.NewIssuanceService(certificates, accounts, clients),
		Admin:    appadmin.NewAdminService(parameters, rates),
	}

	gate := auth.NewInMemorySessionGate()
	operator := uuid.New()
	gate.AddSession(testSession, operator, time.Now().UTC().Add(time.Hour))
	gate.Grant(operator,
		auth.CapCreateClient, auth.CapOpenAccount, auth.CapPostTransaction,
		auth.CapReverseTransaction, auth.CapQueryBalance, auth.CapQueryMovements,
		auth.CapIssueBalanceCert, auth.CapIssueSolvencyCert, auth.CapOperateRTGS,
		auth.CapConfigParameters, auth.CapQueryReserves, auth.CapQueryEncaje,
		auth.CapQueryIndicators, auth.CapQueryInstitutions)

	limited := uuid.New()
	gate.AddSession("sess-limited", limited, time.Now().UTC().Add(time.Hour))
	gate.Grant(limited, auth.CapQueryBalance)

	return NewCommandRouter(gate, services)
}

// decodeReply splits a wire reply into its status and fields
func decodeReply(t *testing.T, raw string) (string, map[string]string) {
	t.Helper()
	req, err := ParseRequest(raw)
	require.NoError(t, err)
	fields := make(map[string]string, len(req.fields))
	for k, v := range req.fields {
		fields[k] = v
	}
	return req.Command, fields
}

func dispatchOK(t *testing.T, router *CommandRouter, message string) map[string]string {
	t.Helper()
	status, fields := decodeReply(t, router.Dispatch(context.Background(), message))
	require.Equal(t, "OK", status, "unexpected reply: %v", fields)
	return fields
}

func dispatchError(t *testing.T, router *CommandRouter, message string) map[string]string {
	t.Helper()
	status, fields := decodeReply(t, router.Dispatch(context.Background(), message))
	require.Equal(t, "ERROR", status)
	return fields
}

func withSession(command string, pairs ...string) string {
	parts := append([]string{command, "session_id=" + testSession}, pairs...)
	return strings.Join(parts, "|")
}

// createClientAndAccount drives the wire surface to register a client with
// current KYC and open one account, returning both ids.
func createClientAndAccount(t *testing.T, router *CommandRouter, cedula string) (string, string) {
	t.Helper()
	kyc := time.Now().UTC().AddDate(1, 0, 0).Format(time.RFC3339Nano)
	client := dispatchOK(t, router, withSession("CREATE_CLIENT",
		"cedula_rnc="+cedula, "full_name=Maria Santos", "type=FISICA", "kyc_valid_until="+kyc))
	account := dispatchOK(t, router, withSession("OPEN_ACCOUNT",
		"client_id="+client["client_id"], "product_code=CORRIENTE", "currency=DOP"))
	return client["client_id"], account["account_id"]
}

func TestRouter_GateChecks(t *testing.T) {
	router := newTestRouter(t)
	ctx := context.Background()

	t.Run("ping needs no session", func(t *testing.T) {
		fields := dispatchOK(t, router, "PING")
		assert.Equal(t, "1", fields["pong"])
	})

	t.Run("unknown command", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("DROP_LEDGER"))
		assert.Equal(t, "UNKNOWN_COMMAND", fields["code"])
	})

	t.Run("missing session refuses with SESSION_INVALID", func(t *testing.T) {
		fields := dispatchError(t, router, "GET_BALANCE|account_id="+uuid.NewString())
		assert.Equal(t, "SESSION_INVALID", fields["code"])
	})

	t.Run("unknown session refuses with SESSION_INVALID", func(t *testing.T) {
		fields := dispatchError(t, router, "GET_BALANCE|session_id=forged|account_id="+uuid.NewString())
		assert.Equal(t, "SESSION_INVALID", fields["code"])
	})

	t.Run("missing capability refuses with UNAUTHORIZED", func(t *testing.T) {
		raw := "POST_TRANSACTION|session_id=sess-limited|type=TRANSFERENCIA|n=1|line1_account=" + uuid.NewString()
		fields := dispatchError(t, router, raw)
		assert.Equal(t, "UNAUTHORIZED", fields["code"])

		// the refused posting left nothing behind
		status, _ := decodeReply(t, router.Dispatch(ctx, withSession("LIST_TRANSACTIONS")))
		assert.Equal(t, "OK", status)
	})

	t.Run("malformed message", func(t *testing.T) {
		fields := dispatchError(t, router, "")
		assert.Equal(t, "MISSING_PARAMETER", fields["code"])
	})
}

func TestRouter_PostingFlow(t *testing.T) {
	router := newTestRouter(t)

	_, accountA := createClientAndAccount(t, router, "001-0000001-1")
	_, accountB := createClientAndAccount(t, router, "001-0000002-2")

	t.Run("posts a balanced two-line transaction", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("POST_TRANSACTION",
			"type=TRANSFERENCIA", "n=2", "external_ref=OP-1001",
			"line1_account="+accountA, "line1_debit=100.00",
			"line2_account="+accountB, "line2_credit=100.00"))
		assert.Equal(t, "100.00", fields["total"])
		assert.Equal(t, "POSTED", fields["state"])
		assert.NotEmpty(t, fields["transaction_id"])

		balanceA := dispatchOK(t, router, withSession("GET_BALANCE", "account_id="+accountA))
		assert.Equal(t, "-100.00", balanceA["balance"])
		balanceB := dispatchOK(t, router, withSession("GET_BALANCE", "account_id="+accountB))
		assert.Equal(t, "100.00", balanceB["balance"])
	})

	t.Run("unbalanced lines leave no trace", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("POST_TRANSACTION",
			"type=TRANSFERENCIA", "n=2",
			"line1_account="+accountA, "line1_debit=100.00",
			"line2_account="+accountB, "line2_credit=50.00"))
		assert.Equal(t, "UNBALANCED", fields["code"])

		balanceA := dispatchOK(t, router, withSession("GET_BALANCE", "account_id="+accountA))
		assert.Equal(t, "-100.00", balanceA["balance"])
	})

	t.Run("duplicate external reference", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("POST_TRANSACTION",
			"type=TRANSFERENCIA", "n=2", "external_ref=OP-1001",
			"line1_account="+accountA, "line1_debit=10.00",
			"line2_account="+accountB, "line2_credit=10.00"))
		assert.Equal(t, "DUPLICATE_REFERENCE", fields["code"])
	})

	t.Run("unknown account", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("POST_TRANSACTION",
			"type=TRANSFERENCIA", "n=2",
			"line1_account="+uuid.NewString(), "line1_debit=10.00",
			"line2_account="+accountB, "line2_credit=10.00"))
		assert.Equal(t, "ACCOUNT_NOT_FOUND", fields["code"])
	})

	t.Run("reversal mirrors the original", func(t *testing.T) {
		posted := dispatchOK(t, router, withSession("POST_TRANSACTION",
			"type=TRANSFERENCIA", "n=2",
			"line1_account="+accountA, "line1_debit=25.00",
			"line2_account="+accountB, "line2_credit=25.00"))

		reversal := dispatchOK(t, router, withSession("REVERSE_TRANSACTION",
			"transaction_id="+posted["transaction_id"], "reason=operator error"))
		assert.Equal(t, posted["transaction_id"], reversal["reversal_of"])
		assert.Equal(t, "25.00", reversal["total"])

		balanceA := dispatchOK(t, router, withSession("GET_BALANCE", "account_id="+accountA))
		assert.Equal(t, "-100.00", balanceA["balance"])

		again := dispatchError(t, router, withSession("REVERSE_TRANSACTION",
			"transaction_id="+posted["transaction_id"]))
		assert.Equal(t, "ALREADY_REVERSED", again["code"])
	})

	t.Run("movements page over the posted lines", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("GET_MOVEMENTS",
			"account_id="+accountA, "page=1", "page_size=2"))
		assert.Equal(t, "2", fields["count"])
		assert.Equal(t, "3", fields["total"])
		assert.Equal(t, "2", fields["page_size"])
		assert.NotEmpty(t, fields["r1_transaction_id"])
		assert.NotEmpty(t, fields["r2_posted_at"])
	})

	t.Run("oversized statement pages clamp to 100", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("GET_MOVEMENTS",
			"account_id="+accountA, "page_size=5000"))
		assert.Equal(t, "100", fields["page_size"])
	})

	t.Run("cutoff balance ignores later postings", func(t *testing.T) {
		cutoff := time.Now().UTC().Format(time.RFC3339Nano)

		dispatchOK(t, router, withSession("POST_TRANSACTION",
			"type=TRANSFERENCIA", "n=2",
			"line1_account="+accountA, "line1_debit=40.00",
			"line2_account="+accountB, "line2_credit=40.00"))

		asOf := dispatchOK(t, router, withSession("GET_BALANCE_CUTOFF",
			"account_id="+accountA, "date="+cutoff))
		assert.Equal(t, "-100.00", asOf["balance"])

		live := dispatchOK(t, router, withSession("GET_BALANCE", "account_id="+accountA))
		assert.Equal(t, "-140.00", live["balance"])
	})

	t.Run("transaction lookup returns the lines", func(t *testing.T) {
		_, accountC := createClientAndAccount(t, router, "001-0000005-5")
		_, accountD := createClientAndAccount(t, router, "001-0000006-6")

		posted := dispatchOK(t, router, withSession("POST_TRANSACTION",
			"type=TRANSFERENCIA", "n=2", "external_ref=OP-2002", "description=pago nomina",
			"line1_account="+accountC, "line1_debit=15.00",
			"line2_account="+accountD, "line2_credit=15.00"))

		fields := dispatchOK(t, router, withSession("GET_TRANSACTION",
			"transaction_id="+posted["transaction_id"]))
		assert.Equal(t, posted["transaction_id"], fields["transaction_id"])
		assert.Equal(t, "TRANSFERENCIA", fields["type"])
		assert.Equal(t, "POSTED", fields["state"])
		assert.Equal(t, "15.00", fields["total"])
		assert.Equal(t, "OP-2002", fields["external_ref"])
		assert.Equal(t, "pago nomina", fields["description"])
		assert.Equal(t, "2", fields["count"])
		assert.NotEmpty(t, fields["r1_account_id"])
		assert.NotEmpty(t, fields["r2_account_id"])
	})

	t.Run("unknown transaction lookup fails", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("GET_TRANSACTION",
			"transaction_id="+uuid.NewString()))
		assert.Equal(t, "NOT_FOUND", fields["code"])
	})
}

func TestRouter_PartyAndCertificates(t *testing.T) {
	router := newTestRouter(t)

	clientID, accountID := createClientAndAccount(t, router, "001-0000003-3")

	t.Run("duplicate cedula", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("CREATE_CLIENT",
			"cedula_rnc=001-0000003-3", "full_name=Otro Nombre", "type=FISICA"))
		assert.Equal(t, "CLIENT_EXISTS", fields["code"])
	})

	t.Run("get client by cedula", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("GET_CLIENT", "cedula_rnc=001-0000003-3"))
		assert.Equal(t, clientID, fields["client_id"])
		assert.Equal(t, "Maria Santos", fields["full_name"])
	})

	t.Run("account summary lists the client portfolio", func(t *testing.T) {
		dispatchOK(t, router, withSession("OPEN_ACCOUNT",
			"client_id="+clientID, "product_code=AHORRO", "currency=DOP"))

		fields := dispatchOK(t, router, withSession("GET_ACCOUNT_SUMMARY", "client_id="+clientID))
		assert.Equal(t, "Maria Santos", fields["client_name"])
		assert.Equal(t, "001-0000003-3", fields["cedula_rnc"])
		assert.Equal(t, "2", fields["count"])
		assert.Equal(t, accountID, fields["r1_account_id"])
		assert.Equal(t, "CORRIENTE", fields["r1_product_code"])
		assert.Equal(t, "0.00", fields["r1_balance"])
		assert.Equal(t, "AHORRO", fields["r2_product_code"])
	})

	t.Run("summary of an unknown client fails", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("GET_ACCOUNT_SUMMARY", "client_id="+uuid.NewString()))
		assert.Equal(t, "CLIENT_NOT_FOUND", fields["code"])
	})

	t.Run("account opens without an owner", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("OPEN_ACCOUNT",
			"product_code=CORRIENTE", "currency=DOP"))
		assert.Equal(t, "ACTIVE", fields["state"])
		assert.NotEmpty(t, fields["account_id"])
	})

	t.Run("opening an account without KYC fails", func(t *testing.T) {
		noKYC := dispatchOK(t, router, withSession("CREATE_CLIENT",
			"cedula_rnc=001-0000004-4", "full_name=Sin Kyc", "type=FISICA"))
		fields := dispatchError(t, router, withSession("OPEN_ACCOUNT",
			"client_id="+noKYC["client_id"], "product_code=AHORRO"))
		assert.Equal(t, "KYC_EXPIRED", fields["code"])
	})

	t.Run("balance certificate captures the live balance", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("ISSUE_CERT_BALANCE", "account_id="+accountID))
		assert.Equal(t, "SALDO", fields["type"])
		assert.Equal(t, "0.00", fields["balance"])
		assert.Len(t, fields["integrity_hash"], 64)
	})

	t.Run("solvency certificate needs current KYC", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("ISSUE_CERT_SOLVENCY", "client_id="+clientID))
		assert.Equal(t, "SOLVENCIA", fields["type"])
		assert.NotEmpty(t, fields["certificate_id"])
	})

	t.Run("list clients pages", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("LIST_CLIENTS", "page=1", "page_size=10"))
		assert.Equal(t, "2", fields["total"])
		assert.NotEmpty(t, fields["r1_cedula_rnc"])
	})
}

func TestRouter_SupervisionFlow(t *testing.T) {
	router := newTestRouter(t)

	origin := dispatchOK(t, router, withSession("CREATE_INSTITUTION",
		"sib_code=B001", "name=Banco Popular", "type=BANCO_MULTIPLE", "currency=DOP"))
	dest := dispatchOK(t, router, withSession("CREATE_INSTITUTION",
		"sib_code=B002", "name=Banreservas", "type=BANCO_MULTIPLE", "currency=DOP"))
	require.NotEmpty(t, origin["reserve_account_id"])
	require.NotEmpty(t, dest["reserve_account_id"])

	t.Run("duplicate SIB code", func(t *testing.T) {
		fields := dispatchError(t, router, withSession("CREATE_INSTITUTION",
			"sib_code=B001", "name=Clon", "type=BANCO_MULTIPLE"))
		assert.Equal(t, "INSTITUTION_EXISTS", fields["code"])
	})

	t.Run("rtgs settles between reserve accounts", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("POST_RTGS",
			"from_sib=B001", "to_sib=B002", "amount=250000.00", "external_ref=RTGS-1"))
		assert.Equal(t, "250000.00", fields["total"])

		originBalance := dispatchOK(t, router, withSession("GET_BALANCE",
			"account_id="+origin["reserve_account_id"]))
		assert.Equal(t, "-250000.00", originBalance["balance"])
	})

	t.Run("reserves aggregate per currency", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("GET_RESERVES"))
		assert.Equal(t, "1", fields["count"])
		assert.Equal(t, "DOP", fields["r1_currency"])
		assert.Equal(t, "0.00", fields["r1_balance"])
	})

	t.Run("encaje compares required and maintained", func(t *testing.T) {
		dispatchOK(t, router, withSession("SET_PARAM", "key=ENCAJE_RATIO", "value=0.1120"))
		dispatchOK(t, router, withSession("SET_PARAM", "key=DEPOSITOS_B002", "value=1000000.00"))

		fields := dispatchOK(t, router, withSession("GET_ENCAJE",
			"sib_code=B002", "date="+time.Now().UTC().Format(time.RFC3339Nano)))
		assert.Equal(t, "0.1120", fields["ratio"])
		assert.Equal(t, "1000000.00", fields["deposits"])
		assert.Equal(t, "112000.00", fields["required"])
		assert.Equal(t, "250000.00", fields["maintained"])
		assert.Equal(t, "138000.00", fields["difference"])
	})

	t.Run("institution registry lookup", func(t *testing.T) {
		fields := dispatchOK(t, router, withSession("GET_INSTITUTION", "sib_code=B001"))
		assert.Equal(t, "Banco Popular", fields["name"])
		assert.Equal(t, "1", fields["active"])
	})

	t.Run("indicators cover the settlement", func(t *testing.T) {
		from := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano)
		to := time.Now().UTC().Add(time.Hour).Format(time.RFC3339Nano)
		fields := dispatchOK(t, router, withSession("GET_INDICATORS", "from="+from, "to="+to))
		assert.Equal(t, "1", fields["transaction_count"])
		assert.Equal(t, "250000.00", fields["total_amount"])
	})

	t.Run("fx rate round trip", func(t *testing.T) {
		dispatchOK(t, router, withSession("SET_FX_RATE",
			"currency=USD", "date=2025-06-30", "buy=58.95", "sell=59.40"))
		fields := dispatchOK(t, router, withSession("GET_PARAM", "key=ENCAJE_RATIO"))
		assert.Equal(t, "0.1120", fields["value"])
	})
}
