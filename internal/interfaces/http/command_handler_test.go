package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bancentral/corebank/internal/infrastructure/auth"
	"github.com/bancentral/corebank/internal/interfaces/wire"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := wire.NewCommandRouter(auth.NewInMemorySessionGate(), wire.Services{})
	return NewEngine(zap.NewNop(), NewCommandHandler(router))
}

func postCommand(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/command", strings.NewReader(body))
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCommandEndpoint(t *testing.T) {
	engine := newTestEngine()

	t.Run("ping round trip", func(t *testing.T) {
		rec := postCommand(t, engine, "PING")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK|pong=1", rec.Body.String())
	})

	t.Run("refusals travel as wire errors with status 200", func(t *testing.T) {
		rec := postCommand(t, engine, "GET_BALANCE|account_id=abc")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ERROR|code=SESSION_INVALID")
	})

	t.Run("unknown command", func(t *testing.T) {
		rec := postCommand(t, engine, "SHUTDOWN")
		assert.Contains(t, rec.Body.String(), "code=UNKNOWN_COMMAND")
	})

	t.Run("empty body", func(t *testing.T) {
		rec := postCommand(t, engine, "")
		assert.Contains(t, rec.Body.String(), "code=MISSING_PARAMETER")
	})

	t.Run("oversized message is rejected", func(t *testing.T) {
		rec := postCommand(t, engine, "PING|"+strings.Repeat("x=y|", 40000))
		assert.Contains(t, rec.Body.String(), "code=INVALID_FORMAT")
	})
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
