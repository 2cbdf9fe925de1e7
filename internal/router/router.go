package router

import (
	"github.com/booky-next/internal/cache"
	"github.com/booky-next/internal/config"
	"github.com/booky-next/internal/http/handlers/bff"
	"github.com/booky-next/internal/logger"
	"github.com/booky-next/internal/provider"

	"github.com/gin-gonic/gin"
)

const msgLoginTooMany = "Too many login attempts, please retry in %d seconds"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := bff.New(c)
	loginRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate", "login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageFormat: msgLoginTooMany,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(BearerPeekMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", handler.Health)

	api := r.Group("/api")
	{
		// 公开目录接口
		api.GET("/get-book", handler.GetBooks)
		api.GET("/get-recommend-book", handler.GetRecommendBooks)
		api.GET("/get-book-detail", handler.GetBookDetail)
		api.GET("/get-book-by-author", handler.GetBooksByAuthor)
		api.GET("/get-categories", handler.GetCategories)
		api.GET("/get-author", handler.GetAuthors)
		api.GET("/get-reviews-book", handler.GetBookReviews)

		// 账号
		api.POST("/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("email")), handler.Login)
		api.POST("/register", handler.Register)

		// 需携带令牌
		api.GET("/get-profile", handler.GetProfile)
		api.GET("/get-my-loans", handler.GetMyLoans)
		api.GET("/get-loan-books", handler.GetMyLoans)
		api.POST("/post-loan-book", handler.PostLoanBook)
	}

	// 运维查询，令牌见 audit.admin_token
	r.GET("/internal/loan-audits", handler.ListLoanAudits)

	return r
}
