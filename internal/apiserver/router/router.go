// Package router wires the apiserver's three HTTP surfaces: the public
// auth routes, the authenticated dashboard API and the anonymous widget
// protocol.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/agentic-hq/agentic/internal/apiserver/handler"
	"github.com/agentic-hq/agentic/pkg/auth"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/middleware"
	"github.com/agentic-hq/agentic/pkg/ratelimit"
	"github.com/agentic-hq/agentic/pkg/response"
)

// Config carries everything Register needs.
type Config struct {
	TokenManager *auth.TokenManager
	Limiter      ratelimit.Limiter
	CORSOrigins  []string

	Auth  *handler.AuthHandler
	Agent *handler.AgentHandler
	Embed *handler.EmbedHandler
	Admin *handler.AdminHandler
}

// New builds the gin engine with all routes and middleware registered.
func New(cfg *Config) *gin.Engine {
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSOrigins),
	)

	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, errors.ErrRouteNotFound)
	})

	engine.GET("/api/health", func(c *gin.Context) {
		response.OKFields(c, gin.H{"status": "ok"})
	})

	// Public auth surface
	authGroup := engine.Group("/auth")
	{
		authGroup.GET("/health", cfg.Auth.Health)
		authGroup.POST("/register", cfg.Auth.Register)
		authGroup.POST("/login", cfg.Auth.Login)
		authGroup.GET("/verify", middleware.RequireAuth(cfg.TokenManager), cfg.Auth.Verify)
	}

	// Authenticated dashboard surface
	api := engine.Group("/api", middleware.RequireAuth(cfg.TokenManager))
	{
		agents := api.Group("/agents")
		{
			agents.GET("", cfg.Agent.List)
			agents.POST("/create", cfg.Agent.Create)
			agents.POST("/create-from-source", cfg.Agent.CreateFromSource)
			agents.GET("/:name", cfg.Agent.Get)
			agents.DELETE("/:name", cfg.Agent.Delete)
			agents.POST("/:name/update", cfg.Agent.Update)
			agents.POST("/:name/embed-token", cfg.Agent.MintEmbedToken)
			agents.POST("/:name/query", cfg.Agent.Query)
			agents.POST("/:name/query/stream", cfg.Agent.QueryStream)
		}

		api.GET("/user/stats", cfg.Admin.Stats)

		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/users", cfg.Admin.Users)
			admin.GET("/usage", cfg.Admin.Usage)
			admin.GET("/usage/:id", cfg.Admin.UserUsage)
		}
	}

	// Anonymous widget surface. Only query turns count against the window;
	// config fetches and beacons stay free.
	embed := engine.Group("/v1/embed/:token")
	{
		embed.GET("/info", cfg.Embed.Info)
		embed.GET("/config", cfg.Embed.Config)
		embed.POST("/query", middleware.EmbedRateLimit(cfg.Limiter), cfg.Embed.Query)
		embed.POST("/feedback", cfg.Embed.Feedback)
		embed.POST("/analytics", cfg.Embed.Analytics)
		embed.GET("/conversation", cfg.Embed.Conversation)
		embed.DELETE("/conversation", cfg.Embed.ClearConversation)
	}

	return engine
}
