package http

import (
	"io"
	"net/http"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/interfaces/wire"
	"github.com/gin-gonic/gin"
)

// maxCommandBytes bounds an inbound command message. The protocol is flat
// key=value text; anything larger is not a legitimate command.
const maxCommandBytes = 64 * 1024

// CommandHandler exposes the wire protocol over HTTP: the raw pipe-delimited
// message travels as the request body and the reply as the response body.
// HTTP status is 200 for every well-formed exchange; the outcome lives in the
// OK/ERROR prefix of the wire reply.
type CommandHandler struct {
	router *wire.CommandRouter
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(router *wire.CommandRouter) *CommandHandler {
	return &CommandHandler{router: router}
}

// Handle processes one command message
func (h *CommandHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCommandBytes+1))
	if err != nil {
		h.reply(c, wire.EncodeError(shared.NewDomainError("INVALID_FORMAT", "unreadable request body")))
		return
	}
	if len(body) > maxCommandBytes {
		h.reply(c, wire.EncodeError(shared.NewDomainError("INVALID_FORMAT", "request message too large")))
		return
	}

	h.reply(c, h.router.Dispatch(c.Request.Context(), string(body)))
}

func (h *CommandHandler) reply(c *gin.Context, message string) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(message))
}

// RegisterRoutes mounts the command endpoint
func (h *CommandHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/command", h.Handle)
}
