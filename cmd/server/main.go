package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/accountdesk/api/handler"
	"github.com/fastygo/accountdesk/internal/config"
	"github.com/fastygo/accountdesk/internal/infrastructure/monitor"
	"github.com/fastygo/accountdesk/internal/middleware"
	"github.com/fastygo/accountdesk/internal/router"
	"github.com/fastygo/accountdesk/internal/services"
	"github.com/fastygo/accountdesk/internal/services/lifecycle"
	"github.com/fastygo/accountdesk/pkg/httpcontext"
	"github.com/fastygo/accountdesk/pkg/logger"
	"github.com/fastygo/accountdesk/repository/blob"
	accountUC "github.com/fastygo/accountdesk/usecase/account"
	authUC "github.com/fastygo/accountdesk/usecase/auth"
	"github.com/fastygo/accountdesk/usecase/session"
	userUC "github.com/fastygo/accountdesk/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	backend, err := openStore(appCtx, cfg, zapLogger, manager)
	if err != nil {
		zapLogger.Fatal("key-value store unavailable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	mon := monitor.New(backend.kv, cfg.Store.Driver, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if backend.purger != nil {
		janitor := services.NewJanitor(backend.purger, mon, zapLogger, services.JanitorConfig{
			Interval: cfg.Store.PurgeInterval,
		})
		janitor.Start()
		manager.Register("janitor", func(ctx context.Context) error {
			janitor.Stop(ctx)
			return nil
		})
	}

	sessions := session.NewStore(backend.kv, cfg.Session.TTL, zapLogger)
	userRepo := blob.NewUserRepository(backend.kv)
	accountRepo := blob.NewAccountRepository(backend.kv)

	authUseCase := authUC.New(userRepo, sessions, zapLogger)
	userUseCase := userUC.New(userRepo, sessions, zapLogger)
	accountUseCase := accountUC.New(accountRepo, zapLogger)

	if _, err := authUseCase.EnsureAdmin(appCtx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		zapLogger.Fatal("bootstrap admin failed", zap.Error(err))
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	policies := middleware.NewPolicies(cfg.Policies.Admin, cfg.Policies.Manager)
	for _, name := range []string{middleware.PolicyAdmin, middleware.PolicyManager} {
		zapLogger.Info("route policy", zap.String("policy", name), zap.Any("roles", policies.Get(name).Allowed.Roles()))
	}

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Users:    apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Accounts: apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(sessions, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware, policies, zapLogger)

	server := &fasthttp.Server{
		Handler:      router.Handler(r, zapLogger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server crashed", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
