package auth

// Capability names checked by the session gate. They match the grants the
// external access control system writes into user_capabilities.
const (
	CapCreateClient       = "CREAR_CLIENTE"
	CapOpenAccount        = "ABRIR_CUENTA"
	CapPostTransaction    = "REGISTRAR_TRANSACCION"
	CapReverseTransaction = "REVERSAR_TRANSACCION"
	CapQueryBalance       = "CONSULTAR_SALDO"
	CapQueryMovements     = "CONSULTAR_MOVIMIENTOS"
	CapIssueBalanceCert   = "EMITIR_CERT_SALDO"
	CapIssueSolvencyCert  = "EMITIR_CERT_SOLVENCIA"
	CapOperateRTGS        = "OPERAR_RTGS"
	CapConfigParameters   = "CONFIG_PARAMETROS"
	CapQueryReserves      = "CONSULTAR_RESERVAS"
	CapQueryEncaje        = "CONSULTAR_ENCAJE"
	CapQueryIndicators    = "CONSULTAR_INDICADORES"
	CapQueryInstitutions  = "CONSULTAR_INSTITUCIONES"
)
