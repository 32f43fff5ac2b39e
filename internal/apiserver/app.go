package apiserver

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/agentic-hq/agentic/internal/apiserver/biz"
	"github.com/agentic-hq/agentic/internal/apiserver/engine"
	"github.com/agentic-hq/agentic/internal/apiserver/handler"
	"github.com/agentic-hq/agentic/internal/apiserver/router"
	"github.com/agentic-hq/agentic/internal/apiserver/store"
	"github.com/agentic-hq/agentic/pkg/app"
	"github.com/agentic-hq/agentic/pkg/auth"
	"github.com/agentic-hq/agentic/pkg/ratelimit"
)

const (
	appName        = "agentic-apiserver"
	appDescription = `Agentic API Server

The gateway for the agent dashboard and the embeddable chat widget.

This server provides:
  - Account registration and login
  - Agent lifecycle and document ingestion
  - Authenticated chat with streaming
  - The anonymous embed widget protocol`
)

// NewApp creates the apiserver application.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("Agent dashboard and widget gateway"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithWatchConfig(),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run starts the apiserver with the given options.
func Run(opts *Options) error {
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting apiserver...")

	gin.SetMode(opts.Server.Mode)

	factory, err := store.NewFactory(opts.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = factory.Close() }()

	if err := factory.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Infow("database ready", "driver", opts.DB.Driver)

	var limiter ratelimit.Limiter
	if opts.Redis.Enabled {
		limiter = ratelimit.NewRedisLimiter(opts.Redis.NewClient(), opts.RateLimit.Limit, opts.RateLimit.Window)
		logger.Infow("rate limiter ready", "backend", "redis", "redis", opts.Redis.String())
	} else {
		limiter = ratelimit.NewMemoryLimiter(opts.RateLimit.Limit, opts.RateLimit.Window)
		logger.Infow("rate limiter ready", "backend", "memory")
	}

	tokens := auth.NewTokenManager(opts.JWT)
	engineClient := engine.New(opts.Engine)

	authSvc := biz.NewAuthService(factory, tokens)
	agentSvc := biz.NewAgentService(factory, engineClient)
	embedSvc, err := biz.NewEmbedService(factory, engineClient, limiter, opts.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to initialize embed service: %w", err)
	}
	defer embedSvc.Close()
	usageSvc := biz.NewUsageService(factory)

	ginEngine := router.New(&router.Config{
		TokenManager: tokens,
		Limiter:      limiter,
		CORSOrigins:  opts.Server.CORSOrigins,
		Auth:         handler.NewAuthHandler(authSvc),
		Agent:        handler.NewAgentHandler(agentSvc),
		Embed:        handler.NewEmbedHandler(embedSvc),
		Admin:        handler.NewAdminHandler(usageSvc),
	})

	return serve(opts.Server, ginEngine)
}
