package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/accountdesk/api/handler"
	"github.com/fastygo/accountdesk/internal/middleware"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Users    *apiHandler.UserHandler
	Accounts *apiHandler.AccountHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, policies middleware.Policies, logger *zap.Logger) *router.Router {
	r := router.New()

	authed := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return middleware.Chain(h, authMiddleware)
	}
	guarded := func(policy string, h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return middleware.Chain(h, authMiddleware, middleware.RoleGuard(policies.Get(policy), logger))
	}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/auth/register", handlers.Auth.Register)
	r.POST("/api/auth/login", handlers.Auth.Login)
	r.POST("/api/auth/logout", authed(handlers.Auth.Logout))
	r.GET("/api/auth/me", authed(handlers.Auth.Me))

	// Platform users, admin only
	r.GET("/api/users", guarded(middleware.PolicyAdmin, handlers.Users.List))
	r.POST("/api/users", guarded(middleware.PolicyAdmin, handlers.Users.Create))
	r.GET("/api/users/{id}", guarded(middleware.PolicyAdmin, handlers.Users.Get))
	r.PUT("/api/users/{id}", guarded(middleware.PolicyAdmin, handlers.Users.Update))
	r.DELETE("/api/users/{id}", guarded(middleware.PolicyAdmin, handlers.Users.Delete))

	// MT5 accounts: reads for any session, writes for managers
	r.GET("/api/accounts", authed(handlers.Accounts.List))
	r.GET("/api/accounts/{id}", authed(handlers.Accounts.Get))
	r.POST("/api/accounts", guarded(middleware.PolicyManager, handlers.Accounts.Create))
	r.PUT("/api/accounts/{id}", guarded(middleware.PolicyManager, handlers.Accounts.Update))
	r.DELETE("/api/accounts/{id}", guarded(middleware.PolicyManager, handlers.Accounts.Delete))

	return r
}

// Handler wraps the router with the process-wide middleware.
func Handler(r *router.Router, logger *zap.Logger) fasthttp.RequestHandler {
	return middleware.Chain(r.Handler, middleware.Recover(logger), middleware.AccessLog(logger))
}
