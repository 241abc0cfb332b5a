package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The wire contract is a flat ASCII protocol: fields joined with `|`, each
// field a `key=value` pair, and the first unkeyed token of a request naming
// the command. Responses start with `OK` or `ERROR`. Literal `|`, `=` and
// `\` inside values travel escaped as `\|`, `\=` and `\\`.

const (
	statusOK    = "OK"
	statusError = "ERROR"
)

// escapeValue protects the protocol's structural characters inside a value
func escapeValue(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		switch r {
		case '\\', '|', '=':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sanitizeMessage keeps a value on one line so the flat protocol stays
// well-formed
func sanitizeMessage(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.ReplaceAll(v, "\n", " ")
}

// splitFields splits a raw message on unescaped pipes and unescapes each token
func splitFields(raw string) []string {
	var fields []string
	var b strings.Builder
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, b.String())
	return fields
}

// splitPair separates key=value on the first unescaped equals sign. The raw
// token is already unescaped by splitFields, so only the first '=' matters
// for keys, which never contain one.
func splitPair(token string) (key, value string, ok bool) {
	idx := strings.IndexByte(token, '=')
	if idx < 0 {
		return "", "", false
	}
	return token[:idx], token[idx+1:], true
}

// Request is a parsed inbound command message
type Request struct {
	Command string
	fields  map[string]string
}

// ParseRequest decodes a raw pipe-delimited message. The first unkeyed token
// is the command; everything else must be key=value.
func ParseRequest(raw string) (*Request, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "empty request")
	}

	req := &Request{fields: make(map[string]string)}
	for _, token := range splitFields(raw) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key, value, ok := splitPair(token)
		if !ok {
			if req.Command != "" {
				return nil, shared.NewDomainError("INVALID_FORMAT",
					fmt.Sprintf("unkeyed token %q after command", token))
			}
			req.Command = token
			continue
		}
		req.fields[key] = value
	}

	if req.Command == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "command name is required")
	}
	return req, nil
}

// Get returns a field value and whether it was present
func (r *Request) Get(key string) (string, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// String returns a field value, empty when absent
func (r *Request) String(key string) string {
	return r.fields[key]
}

// Require returns a field value or MISSING_PARAMETER
func (r *Request) Require(key string) (string, error) {
	v, ok := r.fields[key]
	if !ok || v == "" {
		return "", shared.NewDomainError("MISSING_PARAMETER", fmt.Sprintf("%s is required", key))
	}
	return v, nil
}

// UUID parses a required UUID field
func (r *Request) UUID(key string) (uuid.UUID, error) {
	v, err := r.Require(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_FORMAT",
			fmt.Sprintf("%s is not a valid id: %s", key, v))
	}
	return id, nil
}

// Decimal parses a required decimal field
func (r *Request) Decimal(key string) (decimal.Decimal, error) {
	v, err := r.Require(key)
	if err != nil {
		return decimal.Zero, err
	}
	return r.parseDecimal(key, v)
}

// DecimalDefault parses an optional decimal field, falling back when absent
func (r *Request) DecimalDefault(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v, ok := r.fields[key]
	if !ok || v == "" {
		return fallback, nil
	}
	return r.parseDecimal(key, v)
}

func (r *Request) parseDecimal(key, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_FORMAT",
			fmt.Sprintf("%s is not a decimal: %s", key, v))
	}
	return d, nil
}

// Time parses a required timestamp field. RFC 3339 is canonical; a bare
// calendar date is accepted for cut-off style parameters.
func (r *Request) Time(key string) (time.Time, error) {
	v, err := r.Require(key)
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, shared.NewDomainError("INVALID_FORMAT",
		fmt.Sprintf("%s is not a timestamp: %s", key, v))
}

// TimeOptional parses an optional timestamp field, nil when absent
func (r *Request) TimeOptional(key string) (*time.Time, error) {
	if v, ok := r.fields[key]; !ok || v == "" {
		return nil, nil
	}
	t, err := r.Time(key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IntDefault parses an optional integer field, falling back when absent
func (r *Request) IntDefault(key string, fallback int) (int, error) {
	v, ok := r.fields[key]
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_FORMAT",
			fmt.Sprintf("%s is not an integer: %s", key, v))
	}
	return n, nil
}

type field struct {
	key   string
	value string
}

// Response accumulates ordered key=value fields for an OK reply
type Response struct {
	fields []field
}

// NewResponse creates an empty success response
func NewResponse() *Response {
	return &Response{}
}

// Set appends a string field
func (r *Response) Set(key, value string) *Response {
	r.fields = append(r.fields, field{key: key, value: value})
	return r
}

// SetDecimal appends a decimal field rendered with exactly 2 fraction digits
func (r *Response) SetDecimal(key string, value decimal.Decimal) *Response {
	return r.Set(key, value.StringFixed(2))
}

// SetInt appends an integer field
func (r *Response) SetInt(key string, value int64) *Response {
	return r.Set(key, strconv.FormatInt(value, 10))
}

// SetTime appends a timestamp field in UTC round-trip form
func (r *Response) SetTime(key string, value time.Time) *Response {
	return r.Set(key, value.UTC().Format(time.RFC3339Nano))
}

// Row appends a string field of the n-th result row (1-based)
func (r *Response) Row(n int, key, value string) *Response {
	return r.Set(fmt.Sprintf("r%d_%s", n, key), value)
}

// RowDecimal appends a decimal field of the n-th result row
func (r *Response) RowDecimal(n int, key string, value decimal.Decimal) *Response {
	return r.Row(n, key, value.StringFixed(2))
}

// RowTime appends a timestamp field of the n-th result row
func (r *Response) RowTime(n int, key string, value time.Time) *Response {
	return r.Row(n, key, value.UTC().Format(time.RFC3339Nano))
}

// Page appends the row count and pagination echo of a listing
func (r *Response) Page(count int, total int64, page, pageSize int) *Response {
	r.SetInt("count", int64(count))
	r.SetInt("total", total)
	r.SetInt("page", int64(page))
	r.SetInt("page_size", int64(pageSize))
	return r
}

// Encode renders the response as a wire message
func (r *Response) Encode() string {
	var b strings.Builder
	b.WriteString(statusOK)
	for _, f := range r.fields {
		b.WriteByte('|')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(escapeValue(sanitizeMessage(f.value)))
	}
	return b.String()
}

// EncodeError renders an error as a wire message. Domain errors travel with
// their own code; anything else is an infrastructure failure and surfaces as
// STORAGE without leaking driver diagnostics.
func EncodeError(err error) string {
	code := shared.ErrStorage.Code
	message := shared.ErrStorage.Message

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	}

	var b strings.Builder
	b.WriteString(statusError)
	b.WriteString("|code=")
	b.WriteString(code)
	b.WriteString("|message=")
	b.WriteString(escapeValue(sanitizeMessage(message)))
	return b.String()
}
