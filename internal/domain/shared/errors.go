package shared

// DomainError represents a domain-level error with a stable machine code.
// The code travels across the wire protocol untouched; the message is
// human-oriented and may be rephrased without breaking callers.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrMissingParameter   = NewDomainError("MISSING_PARAMETER", "Required parameter is missing")
	ErrInvalidFormat      = NewDomainError("INVALID_FORMAT", "Malformed value")
	ErrSessionInvalid     = NewDomainError("SESSION_INVALID", "Session is expired or does not exist")
	ErrUnauthorized       = NewDomainError("UNAUTHORIZED", "Missing capability for this operation")
	ErrAccountNotFound    = NewDomainError("ACCOUNT_NOT_FOUND", "Account does not exist")
	ErrClientNotFound     = NewDomainError("CLIENT_NOT_FOUND", "Client does not exist")
	ErrUnbalanced         = NewDomainError("UNBALANCED", "Transaction debits and credits do not match")
	ErrDuplicateReference = NewDomainError("DUPLICATE_REFERENCE", "External reference already posted")
	ErrClientExists       = NewDomainError("CLIENT_EXISTS", "Client identity document already registered")
	ErrInstitutionExists  = NewDomainError("INSTITUTION_EXISTS", "Institution code already registered")
	ErrAccountNotActive   = NewDomainError("ACCOUNT_NOT_ACTIVE", "Account is not active")
	ErrKYCExpired         = NewDomainError("KYC_EXPIRED", "Client KYC validity date has lapsed")
	ErrNotPosted          = NewDomainError("NOT_POSTED", "Transaction is not in posted state")
	ErrAlreadyReversed    = NewDomainError("ALREADY_REVERSED", "Transaction has already been reversed")
	ErrInvalidState       = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnknownCommand     = NewDomainError("UNKNOWN_COMMAND", "Command not recognized")
	ErrStorage            = NewDomainError("STORAGE", "Storage unavailable")
)
