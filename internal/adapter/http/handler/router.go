package handler

import (
	"storefront-payments/internal/adapter/http/middleware"
	"storefront-payments/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	OrderSvc       ports.OrderService
	CheckoutSvc    ports.CheckoutService
	TokenSvc       ports.GatewayTokenService
	CallbackSvc    ports.CallbackService
	ReconSvc       ports.ReconciliationService
	SessionSvc     ports.SessionService
	IdentitySvc    ports.IdentityService
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	AuditSvc       ports.AuditService        // nil = audit logging disabled
	HealthCheckers []ports.HealthChecker
	OpenAPISpec    []byte // nil = /swagger/spec answers 404
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	docs := NewDocsHandler(deps.OpenAPISpec)
	swagger := r.Group("/swagger")
	{
		swagger.GET("", docs.UI)
		swagger.GET("/spec", docs.Spec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")
	auth := middleware.Auth(deps.IdentitySvc)

	// --- Public routes ---
	sessionHandler := NewSessionHandler(deps.SessionSvc)
	sessions := v1.Group("/sessions")
	{
		sessions.POST("/ping", rl("sessions"), sessionHandler.Ping)
		sessions.GET("/active", rl("sessions"), sessionHandler.Active)
	}

	// Server-to-server; authenticated by the form signature, not a bearer token.
	gatewayHandler := NewGatewayHandler(deps.TokenSvc, deps.CallbackSvc)
	v1.POST("/gateway/notifications", rl("notifications"), gatewayHandler.Notification)

	// --- Authenticated storefront routes ---
	balanceHandler := NewBalanceHandler(deps.LedgerSvc, deps.OrderSvc)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutSvc)

	user := v1.Group("", auth)
	{
		user.GET("/balance", rl("reads"), balanceHandler.GetBalance)
		user.GET("/orders", rl("reads"), balanceHandler.ListOrders)
		user.GET("/orders/latest", rl("reads"), balanceHandler.LatestOrder)

		user.POST("/checkout/balance", rl("checkout"), checkoutHandler.CheckoutWithBalance)
		user.POST("/checkout/gateway", rl("checkout"), checkoutHandler.CheckoutWithGateway)

		user.POST("/gateway/tokens", rl("gateway_tokens"), gatewayHandler.IssueToken)
		user.GET("/gateway/tokens/:referenceCode", rl("reads"), gatewayHandler.GetToken)
		user.POST("/gateway/return", rl("gateway_tokens"), gatewayHandler.RecordReturn)
	}

	// --- Operator routes ---
	reconHandler := NewReconciliationHandler(deps.ReconSvc)
	admin := v1.Group("/admin", auth, middleware.RequireAdmin())
	{
		admin.GET("/orders", rl("admin"), reconHandler.ListPending)
		admin.GET("/orders/:key", rl("admin"), reconHandler.GetDetail)
		admin.PATCH("/orders/:key/status", rl("admin"), reconHandler.SetStatus)
	}

	return r
}
