package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-payments/config"
	httpHandler "storefront-payments/internal/adapter/http/handler"
	"storefront-payments/internal/adapter/messaging/kafka"
	pgStorage "storefront-payments/internal/adapter/storage/postgres"
	redisStorage "storefront-payments/internal/adapter/storage/redis"
	"storefront-payments/internal/core/ports"
	"storefront-payments/internal/service"
	"storefront-payments/pkg/logger"

	"github.com/gin-gonic/gin"
)

const openAPIPath = "docs/api/openapi.yaml"

func main() {
	// SFP_CONFIG_FILE may point at a YAML file; env vars alone also work.
	cfg, err := config.Load(os.Getenv("SFP_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting storefront payments")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if cfg.Database.AutoMigrate {
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Order events go to Kafka when enabled.
	var publisher ports.EventPublisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled {
		p, err := kafka.NewPublisher(cfg.Kafka, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Kafka")
		}
		publisher = p
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher ready")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}()

	// Initialize repositories
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	balanceOrderRepo := pgStorage.NewBalanceOrderRepo(pool)
	gatewayOrderRepo := pgStorage.NewGatewayOrderRepo(pool)
	tokenRepo := pgStorage.NewTokenRepo(pool)
	userRepo := pgStorage.NewUserRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	sessionStore := redisStorage.NewSessionStore(rdb, cfg.Sessions.Window)

	// Initialize core services
	signer := service.NewPayUSigner(cfg.PayU.APIKey, cfg.PayU.MerchantID)
	identitySvc := service.NewJWTIdentityService(cfg.Auth.Secret, cfg.Auth.Issuer)

	// Initialize business services
	ledgerSvc := service.NewLedgerService(ledgerRepo, transactor, log)
	orderSvc := service.NewOrderService(balanceOrderRepo, gatewayOrderRepo, transactor, publisher, log)
	tokenSvc := service.NewGatewayTokenService(tokenRepo, signer, cfg.GatewayToken.Secret, cfg.GatewayToken.Expiry, cfg.PayU, log)
	checkoutSvc := service.NewCheckoutService(
		ledgerRepo,
		balanceOrderRepo,
		transactor,
		orderSvc,
		tokenSvc,
		idempotencyCache,
		publisher,
		log,
	)
	callbackSvc := service.NewCallbackService(gatewayOrderRepo, signer, cfg.PayU.VerifyCallbackSignature, publisher, log)
	reconSvc := service.NewReconciliationService(orderSvc, userRepo, log)
	sessionSvc := service.NewSessionService(sessionStore, cfg.Sessions.Window)
	auditSvc := service.NewAuditService(auditRepo, log)

	if !cfg.PayU.VerifyCallbackSignature {
		log.Warn().Msg("Gateway notification signatures are NOT verified")
	}

	deps := httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		OrderSvc:       orderSvc,
		CheckoutSvc:    checkoutSvc,
		TokenSvc:       tokenSvc,
		CallbackSvc:    callbackSvc,
		ReconSvc:       reconSvc,
		SessionSvc:     sessionSvc,
		IdentitySvc:    identitySvc,
		AuditSvc:       auditSvc,
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile(openAPIPath); err == nil {
		deps.OpenAPISpec = specBytes
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(deps)

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
