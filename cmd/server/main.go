package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminapp "github.com/bancentral/corebank/internal/application/admin"
	certapp "github.com/bancentral/corebank/internal/application/cert"
	ledgerapp "github.com/bancentral/corebank/internal/application/ledger"
	partyapp "github.com/bancentral/corebank/internal/application/party"
	"github.com/bancentral/corebank/internal/infrastructure/auth"
	"github.com/bancentral/corebank/internal/infrastructure/config"
	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"github.com/bancentral/corebank/internal/infrastructure/persistence"
	"github.com/bancentral/corebank/internal/infrastructure/telemetry"
	httpiface "github.com/bancentral/corebank/internal/interfaces/http"
	"github.com/bancentral/corebank/internal/interfaces/wire"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CoreBank",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Session gate, optionally backed by a Redis permission cache
	var gateOpts []auth.GateOption
	if cfg.Session.CacheEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		gateOpts = append(gateOpts, auth.WithPermissionCache(redisClient, cfg.Session.PermissionCacheTTL))
		log.Info("Permission cache enabled",
			zap.String("redis", cfg.Redis.RedisAddr()),
			zap.Duration("ttl", cfg.Session.PermissionCacheTTL),
		)
	}
	gate := auth.NewGormSessionGate(db.DB, gateOpts...)

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	institutionRepo := persistence.NewGormInstitutionRepository(db.DB)
	certificateRepo := persistence.NewGormCertificateRepository(db.DB)
	parameterRepo := persistence.NewGormParameterRepository(db.DB)
	exchangeRateRepo := persistence.NewGormExchangeRateRepository(db.DB)

	// Initialize application services
	postingService := ledgerapp.NewPostingService(accountRepo, transactionRepo, institutionRepo)
	queryService := ledgerapp.NewQueryService(accountRepo, transactionRepo, clientRepo, institutionRepo, parameterRepo)
	partyService := partyapp.NewPartyService(clientRepo, institutionRepo, accountRepo)
	issuanceService := certapp.NewIssuanceService(certificateRepo, accountRepo, clientRepo)
	adminService := adminapp.NewAdminService(parameterRepo, exchangeRateRepo)

	// Wire protocol router and HTTP transport
	commandRouter := wire.NewCommandRouter(gate, wire.Services{
		Posting:  postingService,
		Query:    queryService,
		Party:    partyService,
		Issuance: issuanceService,
		Admin:    adminService,
	})
	commandHandler := httpiface.NewCommandHandler(commandRouter)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := httpiface.NewEngine(log, commandHandler)

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
