package wire

import (
	"context"

	appadmin "github.com/bancentral/corebank/internal/application/admin"
	appcert "github.com/bancentral/corebank/internal/application/cert"
	appledger "github.com/bancentral/corebank/internal/application/ledger"
	appparty "github.com/bancentral/corebank/internal/application/party"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/auth"
	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"github.com/bancentral/corebank/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Services bundles the application services the router dispatches to
type Services struct {
	Posting  *appledger.PostingService
	Query    *appledger.QueryService
	Party    *appparty.PartyService
	Issuance *appcert.IssuanceService
	Admin    *appadmin.AdminService
}

type handlerFunc func(ctx context.Context, req *Request) (*Response, error)

type command struct {
	capability string
	handle     handlerFunc
}

// CommandRouter decodes wire messages, enforces the session and capability
// gate, and dispatches to the application services. Every reply is a
// well-formed wire message; errors never escape as raw text.
type CommandRouter struct {
	gate     auth.SessionGate
	services Services
	commands map[string]command
}

// NewCommandRouter creates a router over the given gate and services
func NewCommandRouter(gate auth.SessionGate, services Services) *CommandRouter {
	r := &CommandRouter{
		gate:     gate,
		services: services,
	}
	r.commands = map[string]command{
		"PING":                {handle: r.handlePing},
		"GET_BALANCE":         {capability: auth.CapQueryBalance, handle: r.handleGetBalance},
		"GET_BALANCE_CUTOFF":  {capability: auth.CapQueryBalance, handle: r.handleGetBalanceCutoff},
		"GET_MOVEMENTS":       {capability: auth.CapQueryMovements, handle: r.handleGetMovements},
		"GET_ACCOUNT":         {capability: auth.CapQueryBalance, handle: r.handleGetAccount},
		"GET_CLIENT":          {capability: auth.CapQueryBalance, handle: r.handleGetClient},
		"GET_ACCOUNT_SUMMARY": {capability: auth.CapQueryBalance, handle: r.handleGetAccountSummary},
		"LIST_CLIENTS":        {capability: auth.CapQueryBalance, handle: r.handleListClients},
		"LIST_ACCOUNTS":       {capability: auth.CapQueryBalance, handle: r.handleListAccounts},
		"GET_TRANSACTION":     {capability: auth.CapQueryMovements, handle: r.handleGetTransaction},
		"LIST_TRANSACTIONS":   {capability: auth.CapQueryMovements, handle: r.handleListTransactions},
		"GET_INDICATORS":      {capability: auth.CapQueryIndicators, handle: r.handleGetIndicators},
		"GET_RESERVES":        {capability: auth.CapQueryReserves, handle: r.handleGetReserves},
		"GET_ENCAJE":          {capability: auth.CapQueryEncaje, handle: r.handleGetEncaje},
		"GET_INSTITUTION":     {capability: auth.CapQueryInstitutions, handle: r.handleGetInstitution},
		"CREATE_CLIENT":       {capability: auth.CapCreateClient, handle: r.handleCreateClient},
		"OPEN_ACCOUNT":        {capability: auth.CapOpenAccount, handle: r.handleOpenAccount},
		"POST_TRANSACTION":    {capability: auth.CapPostTransaction, handle: r.handlePostTransaction},
		"REVERSE_TRANSACTION": {capability: auth.CapReverseTransaction, handle: r.handleReverseTransaction},
		"POST_RTGS":           {capability: auth.CapOperateRTGS, handle: r.handlePostRTGS},
		"ISSUE_CERT_BALANCE":  {capability: auth.CapIssueBalanceCert, handle: r.handleIssueCertBalance},
		"ISSUE_CERT_SOLVENCY": {capability: auth.CapIssueSolvencyCert, handle: r.handleIssueCertSolvency},
		"SET_PARAM":           {capability: auth.CapConfigParameters, handle: r.handleSetParam},
		"GET_PARAM":           {capability: auth.CapConfigParameters, handle: r.handleGetParam},
		"SET_FX_RATE":         {capability: auth.CapConfigParameters, handle: r.handleSetFXRate},
		"CREATE_INSTITUTION":  {capability: auth.CapConfigParameters, handle: r.handleCreateInstitution},
	}
	return r
}

// Dispatch processes one raw wire message and returns the wire reply.
// The gate is consulted before any handler runs: an unknown or expired
// session refuses with SESSION_INVALID, a missing capability with
// UNAUTHORIZED, and neither leaves any partial effect.
func (r *CommandRouter) Dispatch(ctx context.Context, raw string) string {
	req, err := ParseRequest(raw)
	if err != nil {
		return EncodeError(err)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "wire", "dispatch")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCommand, req.Command)

	cmd, ok := r.commands[req.Command]
	if !ok {
		logger.L(ctx).Warn("unknown command received", zap.String("command", req.Command))
		return EncodeError(shared.ErrUnknownCommand)
	}

	if cmd.capability != "" {
		if reply, ok := r.refuse(ctx, req, cmd.capability); !ok {
			return reply
		}
	}

	resp, err := cmd.handle(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return EncodeError(err)
	}
	return resp.Encode()
}

// refuse runs the session and capability checks. It returns ok=false with the
// encoded refusal when the caller may not proceed.
func (r *CommandRouter) refuse(ctx context.Context, req *Request, capability string) (string, bool) {
	token := req.String("session_id")

	valid, err := r.gate.IsSessionValid(ctx, token)
	if err != nil {
		return EncodeError(err), false
	}
	if !valid {
		logger.L(ctx).Warn("session refused",
			zap.String("command", req.Command))
		return EncodeError(shared.ErrSessionInvalid), false
	}

	allowed, err := r.gate.HasPermission(ctx, token, capability)
	if err != nil {
		return EncodeError(err), false
	}
	if !allowed {
		logger.L(ctx).Warn("capability refused",
			zap.String("command", req.Command),
			zap.String("capability", capability))
		return EncodeError(shared.ErrUnauthorized), false
	}

	return "", true
}

func (r *CommandRouter) handlePing(_ context.Context, _ *Request) (*Response, error) {
	return NewResponse().Set("pong", "1"), nil
}
