package wire

import (
	"context"
	"fmt"

	appledger "github.com/bancentral/corebank/internal/application/ledger"
	appparty "github.com/bancentral/corebank/internal/application/party"
	"github.com/bancentral/corebank/internal/domain/ledger"
	"github.com/bancentral/corebank/internal/domain/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Statement pages are capped tighter than generic listings
const (
	movementsDefaultPageSize = 50
	movementsMaxPageSize     = 100
)

func (r *CommandRouter) handleGetBalance(ctx context.Context, req *Request) (*Response, error) {
	accountID, err := req.UUID("account_id")
	if err != nil {
		return nil, err
	}
	account, err := r.services.Query.GetBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("account_id", account.ID.String()).
		Set("currency", account.Currency).
		SetDecimal("balance", account.Balance).
		Set("state", account.State.String()), nil
}

func (r *CommandRouter) handleGetBalanceCutoff(ctx context.Context, req *Request) (*Response, error) {
	accountID, err := req.UUID("account_id")
	if err != nil {
		return nil, err
	}
	cutoff, err := req.Time("date")
	if err != nil {
		return nil, err
	}
	balance, err := r.services.Query.GetBalanceAsOf(ctx, accountID, cutoff)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("account_id", balance.AccountID.String()).
		Set("currency", balance.Currency).
		SetTime("cutoff", balance.Cutoff).
		SetDecimal("balance", balance.Balance), nil
}

func (r *CommandRouter) handleGetMovements(ctx context.Context, req *Request) (*Response, error) {
	accountID, err := req.UUID("account_id")
	if err != nil {
		return nil, err
	}
	page, err := req.IntDefault("page", 1)
	if err != nil {
		return nil, err
	}
	pageSize, err := req.IntDefault("page_size", movementsDefaultPageSize)
	if err != nil {
		return nil, err
	}
	if pageSize > movementsMaxPageSize {
		pageSize = movementsMaxPageSize
	}
	from, err := req.TimeOptional("from")
	if err != nil {
		return nil, err
	}
	to, err := req.TimeOptional("to")
	if err != nil {
		return nil, err
	}

	movements, err := r.services.Query.GetMovements(ctx, accountID, ledger.MovementFilter{
		Filter: shared.Filter{Page: page, PageSize: pageSize},
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, err
	}

	resp := NewResponse().Set("account_id", accountID.String())
	for i, m := range movements.Items {
		n := i + 1
		resp.Row(n, "transaction_id", m.TransactionID.String())
		resp.RowDecimal(n, "debit", m.Debit)
		resp.RowDecimal(n, "credit", m.Credit)
		resp.Row(n, "currency", m.Currency)
		resp.RowTime(n, "posted_at", m.PostedAt)
	}
	resp.Page(len(movements.Items), movements.Total, movements.Page, movements.PageSize)
	return resp, nil
}

func (r *CommandRouter) handleGetAccount(ctx context.Context, req *Request) (*Response, error) {
	accountID, err := req.UUID("account_id")
	if err != nil {
		return nil, err
	}
	account, err := r.services.Query.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return encodeAccount(NewResponse(), account), nil
}

func encodeAccount(resp *Response, account *ledger.Account) *Response {
	resp.Set("account_id", account.ID.String()).
		Set("product_code", account.ProductCode).
		Set("currency", account.Currency).
		Set("state", account.State.String()).
		SetDecimal("balance", account.Balance).
		SetTime("opened_at", account.OpenedAt)
	if account.ClientID != nil {
		resp.Set("client_id", account.ClientID.String())
	}
	if account.InstitutionID != nil {
		resp.Set("institution_id", account.InstitutionID.String())
	}
	return resp
}

func (r *CommandRouter) handleGetClient(ctx context.Context, req *Request) (*Response, error) {
	var client *party.Client
	if v, ok := req.Get("client_id"); ok && v != "" {
		clientID, err := req.UUID("client_id")
		if err != nil {
			return nil, err
		}
		client, err = r.services.Party.GetClient(ctx, clientID)
		if err != nil {
			return nil, err
		}
	} else {
		cedula, err := req.Require("cedula_rnc")
		if err != nil {
			return nil, err
		}
		client, err = r.services.Party.GetClientByCedulaRNC(ctx, cedula)
		if err != nil {
			return nil, err
		}
	}

	resp := NewResponse().
		Set("client_id", client.ID.String()).
		Set("cedula_rnc", client.CedulaRNC).
		Set("full_name", client.FullName).
		Set("type", client.Type.String())
	if client.KYCValidUntil != nil {
		resp.SetTime("kyc_valid_until", *client.KYCValidUntil)
	}
	return resp, nil
}

func (r *CommandRouter) handleGetAccountSummary(ctx context.Context, req *Request) (*Response, error) {
	clientID, err := req.UUID("client_id")
	if err != nil {
		return nil, err
	}
	summary, err := r.services.Query.GetAccountSummary(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := NewResponse().
		Set("client_id", summary.Client.ID.String()).
		Set("client_name", summary.Client.FullName).
		Set("cedula_rnc", summary.Client.CedulaRNC)
	for i, a := range summary.Accounts {
		n := i + 1
		resp.Row(n, "account_id", a.ID.String())
		resp.Row(n, "product_code", a.ProductCode)
		resp.Row(n, "currency", a.Currency)
		resp.Row(n, "state", a.State.String())
		resp.RowDecimal(n, "balance", a.Balance)
	}
	resp.SetInt("count", int64(len(summary.Accounts)))
	return resp, nil
}

func (r *CommandRouter) handleGetTransaction(ctx context.Context, req *Request) (*Response, error) {
	transactionID, err := req.UUID("transaction_id")
	if err != nil {
		return nil, err
	}
	tx, err := r.services.Query.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	resp := NewResponse().
		Set("transaction_id", tx.ID.String()).
		Set("type", tx.Type).
		Set("state", tx.State.String()).
		Set("currency", tx.Currency).
		SetDecimal("total", tx.TotalAmount)
	if tx.PostedAt != nil {
		resp.SetTime("posted_at", *tx.PostedAt)
	}
	if tx.ExternalRef != nil {
		resp.Set("external_ref", *tx.ExternalRef)
	}
	if tx.Description != "" {
		resp.Set("description", tx.Description)
	}
	if tx.ReversalOf != nil {
		resp.Set("reversal_of", tx.ReversalOf.String())
	}
	if tx.ReversedBy != nil {
		resp.Set("reversed_by", tx.ReversedBy.String())
	}
	for i, line := range tx.Lines {
		n := i + 1
		resp.Row(n, "account_id", line.AccountID.String())
		resp.RowDecimal(n, "debit", line.Debit)
		resp.RowDecimal(n, "credit", line.Credit)
	}
	resp.SetInt("count", int64(len(tx.Lines)))
	return resp, nil
}

func (r *CommandRouter) handleListClients(ctx context.Context, req *Request) (*Response, error) {
	filter, err := pageFilter(req)
	if err != nil {
		return nil, err
	}
	clients, err := r.services.Party.ListClients(ctx, party.ClientFilter{
		Filter: filter,
		Search: req.String("search"),
	})
	if err != nil {
		return nil, err
	}

	resp := NewResponse()
	for i, c := range clients.Items {
		n := i + 1
		resp.Row(n, "client_id", c.ID.String())
		resp.Row(n, "cedula_rnc", c.CedulaRNC)
		resp.Row(n, "full_name", c.FullName)
		resp.Row(n, "type", c.Type.String())
	}
	resp.Page(len(clients.Items), clients.Total, clients.Page, clients.PageSize)
	return resp, nil
}

func (r *CommandRouter) handleListAccounts(ctx context.Context, req *Request) (*Response, error) {
	filter, err := pageFilter(req)
	if err != nil {
		return nil, err
	}
	accountFilter := ledger.AccountFilter{Filter: filter}
	if v, ok := req.Get("client_id"); ok && v != "" {
		clientID, err := req.UUID("client_id")
		if err != nil {
			return nil, err
		}
		accountFilter.ClientID = &clientID
	}
	if v, ok := req.Get("currency"); ok && v != "" {
		accountFilter.Currency = &v
	}
	if v, ok := req.Get("product_code"); ok && v != "" {
		accountFilter.ProductCode = &v
	}

	accounts, err := r.services.Query.ListAccounts(ctx, accountFilter)
	if err != nil {
		return nil, err
	}

	resp := NewResponse()
	for i, a := range accounts.Items {
		n := i + 1
		resp.Row(n, "account_id", a.ID.String())
		resp.Row(n, "product_code", a.ProductCode)
		resp.Row(n, "currency", a.Currency)
		resp.Row(n, "state", a.State.String())
		resp.RowDecimal(n, "balance", a.Balance)
	}
	resp.Page(len(accounts.Items), accounts.Total, accounts.Page, accounts.PageSize)
	return resp, nil
}

func (r *CommandRouter) handleListTransactions(ctx context.Context, req *Request) (*Response, error) {
	filter, err := pageFilter(req)
	if err != nil {
		return nil, err
	}
	txFilter := ledger.TransactionFilter{Filter: filter}
	if txFilter.From, err = req.TimeOptional("from"); err != nil {
		return nil, err
	}
	if txFilter.To, err = req.TimeOptional("to"); err != nil {
		return nil, err
	}
	if v, ok := req.Get("type"); ok && v != "" {
		txFilter.Type = &v
	}

	transactions, err := r.services.Query.ListTransactions(ctx, txFilter)
	if err != nil {
		return nil, err
	}

	resp := NewResponse()
	for i, t := range transactions.Items {
		n := i + 1
		resp.Row(n, "transaction_id", t.ID.String())
		resp.Row(n, "type", t.Type)
		resp.Row(n, "state", t.State.String())
		resp.Row(n, "currency", t.Currency)
		resp.RowDecimal(n, "total", t.TotalAmount)
		if t.PostedAt != nil {
			resp.RowTime(n, "posted_at", *t.PostedAt)
		}
	}
	resp.Page(len(transactions.Items), transactions.Total, transactions.Page, transactions.PageSize)
	return resp, nil
}

func (r *CommandRouter) handleGetIndicators(ctx context.Context, req *Request) (*Response, error) {
	from, err := req.Time("from")
	if err != nil {
		return nil, err
	}
	to, err := req.Time("to")
	if err != nil {
		return nil, err
	}
	indicators, err := r.services.Query.Indicators(ctx, from, to)
	if err != nil {
		return nil, err
	}
	resp := NewResponse().
		SetInt("transaction_count", indicators.TransactionCount).
		SetDecimal("total_amount", indicators.TotalAmount)
	if indicators.FirstPostedAt != nil {
		resp.SetTime("first_posted_at", *indicators.FirstPostedAt)
	}
	if indicators.LastPostedAt != nil {
		resp.SetTime("last_posted_at", *indicators.LastPostedAt)
	}
	return resp, nil
}

func (r *CommandRouter) handleGetReserves(ctx context.Context, req *Request) (*Response, error) {
	reserves, err := r.services.Query.Reserves(ctx)
	if err != nil {
		return nil, err
	}
	resp := NewResponse()
	for i, reserve := range reserves {
		n := i + 1
		resp.Row(n, "currency", reserve.Currency)
		resp.RowDecimal(n, "balance", reserve.Balance)
	}
	resp.SetInt("count", int64(len(reserves)))
	return resp, nil
}

func (r *CommandRouter) handleGetEncaje(ctx context.Context, req *Request) (*Response, error) {
	sibCode, err := req.Require("sib_code")
	if err != nil {
		return nil, err
	}
	date, err := req.Time("date")
	if err != nil {
		return nil, err
	}
	position, err := r.services.Query.Encaje(ctx, sibCode, date)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("sib_code", position.SIBCode).
		SetTime("date", position.Date).
		// The ratio is a rate, not an amount; four places keep e.g. 0.1125 exact
		Set("ratio", position.Ratio.StringFixed(4)).
		SetDecimal("deposits", position.Deposits).
		SetDecimal("required", position.Required).
		SetDecimal("maintained", position.Maintained).
		SetDecimal("difference", position.Difference), nil
}

func (r *CommandRouter) handleGetInstitution(ctx context.Context, req *Request) (*Response, error) {
	sibCode, err := req.Require("sib_code")
	if err != nil {
		return nil, err
	}
	institution, err := r.services.Party.GetInstitution(ctx, sibCode)
	if err != nil {
		return nil, err
	}
	active := "0"
	if institution.Active {
		active = "1"
	}
	return NewResponse().
		Set("institution_id", institution.ID.String()).
		Set("sib_code", institution.SIBCode).
		Set("name", institution.Name).
		Set("type", string(institution.Type)).
		Set("active", active), nil
}

func (r *CommandRouter) handleCreateClient(ctx context.Context, req *Request) (*Response, error) {
	cedula, err := req.Require("cedula_rnc")
	if err != nil {
		return nil, err
	}
	fullName, err := req.Require("full_name")
	if err != nil {
		return nil, err
	}
	clientType, err := req.Require("type")
	if err != nil {
		return nil, err
	}
	kyc, err := req.TimeOptional("kyc_valid_until")
	if err != nil {
		return nil, err
	}

	client, err := r.services.Party.CreateClient(ctx, appparty.CreateClientRequest{
		CedulaRNC:     cedula,
		FullName:      fullName,
		Type:          party.ClientType(clientType),
		KYCValidUntil: kyc,
	})
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("client_id", client.ID.String()).
		Set("cedula_rnc", client.CedulaRNC), nil
}

func (r *CommandRouter) handleOpenAccount(ctx context.Context, req *Request) (*Response, error) {
	// client_id is optional: internal accounts are opened without an owner
	var clientID *uuid.UUID
	if v, ok := req.Get("client_id"); ok && v != "" {
		id, err := req.UUID("client_id")
		if err != nil {
			return nil, err
		}
		clientID = &id
	}
	productCode, err := req.Require("product_code")
	if err != nil {
		return nil, err
	}

	account, err := r.services.Party.OpenAccount(ctx, appparty.OpenAccountRequest{
		ClientID:    clientID,
		ProductCode: productCode,
		Currency:    req.String("currency"),
	})
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("account_id", account.ID.String()).
		Set("currency", account.Currency).
		Set("state", account.State.String()), nil
}

func (r *CommandRouter) handlePostTransaction(ctx context.Context, req *Request) (*Response, error) {
	txType, err := req.Require("type")
	if err != nil {
		return nil, err
	}
	count, err := req.IntDefault("n", 0)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "n must name at least one line")
	}

	lines := make([]appledger.LineRequest, 0, count)
	for i := 1; i <= count; i++ {
		accountID, err := req.UUID(fmt.Sprintf("line%d_account", i))
		if err != nil {
			return nil, err
		}
		debit, err := req.DecimalDefault(fmt.Sprintf("line%d_debit", i), decimal.Zero)
		if err != nil {
			return nil, err
		}
		credit, err := req.DecimalDefault(fmt.Sprintf("line%d_credit", i), decimal.Zero)
		if err != nil {
			return nil, err
		}
		lines = append(lines, appledger.LineRequest{
			AccountID: accountID,
			Debit:     debit,
			Credit:    credit,
		})
	}

	tx, err := r.services.Posting.Post(ctx, appledger.PostingRequest{
		Type:        txType,
		Currency:    req.String("currency"),
		ExternalRef: req.String("external_ref"),
		Description: req.String("description"),
		Lines:       lines,
	})
	if err != nil {
		return nil, err
	}
	return encodePostedTransaction(tx), nil
}

func (r *CommandRouter) handleReverseTransaction(ctx context.Context, req *Request) (*Response, error) {
	transactionID, err := req.UUID("transaction_id")
	if err != nil {
		return nil, err
	}
	reversal, err := r.services.Posting.Reverse(ctx, transactionID, req.String("reason"))
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("reversal_id", reversal.ID.String()).
		Set("reversal_of", transactionID.String()).
		SetDecimal("total", reversal.TotalAmount), nil
}

func (r *CommandRouter) handlePostRTGS(ctx context.Context, req *Request) (*Response, error) {
	fromSIB, err := req.Require("from_sib")
	if err != nil {
		return nil, err
	}
	toSIB, err := req.Require("to_sib")
	if err != nil {
		return nil, err
	}
	amount, err := req.Decimal("amount")
	if err != nil {
		return nil, err
	}

	tx, err := r.services.Posting.PostRTGS(ctx, appledger.RTGSRequest{
		FromSIBCode: fromSIB,
		ToSIBCode:   toSIB,
		Amount:      amount,
		Currency:    req.String("currency"),
		ExternalRef: req.String("external_ref"),
		Description: req.String("description"),
	})
	if err != nil {
		return nil, err
	}
	return encodePostedTransaction(tx), nil
}

func encodePostedTransaction(tx *ledger.Transaction) *Response {
	resp := NewResponse().
		Set("transaction_id", tx.ID.String()).
		SetDecimal("total", tx.TotalAmount).
		Set("currency", tx.Currency).
		Set("state", tx.State.String())
	if tx.PostedAt != nil {
		resp.SetTime("posted_at", *tx.PostedAt)
	}
	return resp
}

func (r *CommandRouter) handleIssueCertBalance(ctx context.Context, req *Request) (*Response, error) {
	accountID, err := req.UUID("account_id")
	if err != nil {
		return nil, err
	}
	issuedBy, err := r.gate.UserID(ctx, req.String("session_id"))
	if err != nil {
		return nil, shared.ErrSessionInvalid
	}
	certificate, err := r.services.Issuance.IssueBalanceCertificate(ctx, accountID, issuedBy)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("certificate_id", certificate.ID.String()).
		Set("type", certificate.Type.String()).
		SetDecimal("balance", certificate.Balance).
		Set("currency", certificate.Currency).
		SetTime("issued_at", certificate.IssuedAt).
		Set("integrity_hash", certificate.IntegrityHash), nil
}

func (r *CommandRouter) handleIssueCertSolvency(ctx context.Context, req *Request) (*Response, error) {
	clientID, err := req.UUID("client_id")
	if err != nil {
		return nil, err
	}
	issuedBy, err := r.gate.UserID(ctx, req.String("session_id"))
	if err != nil {
		return nil, shared.ErrSessionInvalid
	}
	certificate, err := r.services.Issuance.IssueSolvencyCertificate(ctx, clientID, issuedBy)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("certificate_id", certificate.ID.String()).
		Set("type", certificate.Type.String()).
		SetTime("issued_at", certificate.IssuedAt).
		Set("integrity_hash", certificate.IntegrityHash), nil
}

func (r *CommandRouter) handleSetParam(ctx context.Context, req *Request) (*Response, error) {
	key, err := req.Require("key")
	if err != nil {
		return nil, err
	}
	value, err := req.Require("value")
	if err != nil {
		return nil, err
	}
	parameter, err := r.services.Admin.SetParameter(ctx, key, value)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("key", parameter.Key).
		Set("value", parameter.Value), nil
}

func (r *CommandRouter) handleGetParam(ctx context.Context, req *Request) (*Response, error) {
	key, err := req.Require("key")
	if err != nil {
		return nil, err
	}
	parameter, err := r.services.Admin.GetParameter(ctx, key)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("key", parameter.Key).
		Set("value", parameter.Value).
		SetTime("updated_at", parameter.UpdatedAt), nil
}

func (r *CommandRouter) handleSetFXRate(ctx context.Context, req *Request) (*Response, error) {
	currency, err := req.Require("currency")
	if err != nil {
		return nil, err
	}
	date, err := req.Time("date")
	if err != nil {
		return nil, err
	}
	buy, err := req.Decimal("buy")
	if err != nil {
		return nil, err
	}
	sell, err := req.Decimal("sell")
	if err != nil {
		return nil, err
	}
	rate, err := r.services.Admin.SetExchangeRate(ctx, currency, date, buy, sell)
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("currency", rate.Currency).
		SetTime("date", rate.Date).
		SetDecimal("buy", rate.Buy).
		SetDecimal("sell", rate.Sell), nil
}

func (r *CommandRouter) handleCreateInstitution(ctx context.Context, req *Request) (*Response, error) {
	sibCode, err := req.Require("sib_code")
	if err != nil {
		return nil, err
	}
	name, err := req.Require("name")
	if err != nil {
		return nil, err
	}
	instType, err := req.Require("type")
	if err != nil {
		return nil, err
	}

	institution, reserve, err := r.services.Party.CreateInstitution(ctx, appparty.CreateInstitutionRequest{
		SIBCode:  sibCode,
		Name:     name,
		Type:     party.InstitutionType(instType),
		Currency: req.String("currency"),
	})
	if err != nil {
		return nil, err
	}
	return NewResponse().
		Set("institution_id", institution.ID.String()).
		Set("sib_code", institution.SIBCode).
		Set("reserve_account_id", reserve.ID.String()).
		Set("reserve_currency", reserve.Currency), nil
}

// pageFilter reads the shared pagination echo of listing commands
func pageFilter(req *Request) (shared.Filter, error) {
	page, err := req.IntDefault("page", 1)
	if err != nil {
		return shared.Filter{}, err
	}
	pageSize, err := req.IntDefault("page_size", shared.DefaultPageSize)
	if err != nil {
		return shared.Filter{}, err
	}
	return shared.Filter{Page: page, PageSize: pageSize}, nil
}
