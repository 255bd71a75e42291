// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sheetcode-ai-api/internal/config"
	"sheetcode-ai-api/internal/interfaces/http/handler"
	"sheetcode-ai-api/internal/interfaces/http/middleware"
)

// RouterHandlers 路由依赖的处理器
type RouterHandlers struct {
	Health *handler.HealthHandler
	Lesson *handler.LessonHandler
	AI     *handler.AIHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *RouterHandlers
	limiter  middleware.RateLimiter
}

// NewWithDeps 创建路由器；limiter 为 nil 时不限流
func NewWithDeps(cfg *config.Config, handlers *RouterHandlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	identity := r.cfg.Security.Identity
	v1 := r.engine.Group("/v1")
	v1.Use(middleware.Identity(middleware.IdentityConfig{
		Enabled:   identity.Enabled,
		Secret:    identity.Secret,
		Issuer:    identity.Issuer,
		Audience:  identity.Audience,
		DevEmail:  identity.DevEmail,
		SkipPaths: middleware.DefaultSkipPaths,
	}))

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerMinute: r.cfg.Security.RateLimit.RequestsPerMinute,
	}, r.limiter)

	lessons := v1.Group("/lessons")
	{
		lessons.POST("/outline", limit, h.Lesson.RequestOutline)
		lessons.GET("", h.Lesson.ListLessons)
		lessons.GET("/:id", h.Lesson.GetLesson)
		lessons.DELETE("/:id", h.Lesson.DeleteLesson)
		lessons.GET("/:id/notes", h.Lesson.ListChapterNotes)
	}

	ai := v1.Group("/ai")
	{
		ai.POST("/generate-notes", limit, h.AI.GenerateNotes)
	}
}
