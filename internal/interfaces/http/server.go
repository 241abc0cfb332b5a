package http

import (
	"net/http"

	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewEngine builds the gin engine: request logging, panic recovery, a
// liveness probe and the command endpoint under /api/v1.
func NewEngine(log *zap.Logger, handler *CommandHandler) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api)

	return engine
}
