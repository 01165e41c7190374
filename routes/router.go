package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/blogapi/config"
	"github.com/cppla/blogapi/controllers"
	"github.com/cppla/blogapi/middleware"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB, cfg config.AppConfig) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}
	r.Use(middleware.Tracing())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	logger := utils.Logger
	policy := services.NewPolicy(cfg.AdminUsernames)
	tokens := services.NewTokenService(db, logger)
	accounts := services.NewAccountService(db, tokens, logger)
	categories := services.NewCategoryService(db, policy, logger)
	articles := services.NewArticleService(db, policy, logger)
	comments := services.NewCommentService(db, policy, logger)

	authController := controllers.NewAuthController(accounts)
	categoryController := controllers.NewCategoryController(categories)
	articleController := controllers.NewArticleController(articles)
	commentController := controllers.NewCommentController(comments)
	statsController := controllers.NewStatsController(db)

	authRequired := middleware.AuthRequired(tokens)
	rateLimit := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, rateLimitStore(cfg))

	r.GET("/health", statsController.Health)

	api := r.Group("/api")

	usersGroup := api.Group("/users")
	usersGroup.Use(rateLimit)
	usersGroup.POST("/register", authController.Register)
	usersGroup.POST("/login", authController.Login)
	usersGroup.POST("/logout", authRequired, authController.Logout)
	usersGroup.GET("/me", authRequired, authController.Me)

	blog := api.Group("/blog")
	blog.GET("/categories", categoryController.ListCategories)
	blog.GET("/categories/:id", categoryController.GetCategory)
	blog.GET("/articles", articleController.ListArticles)
	blog.GET("/articles/:id", articleController.GetArticle)
	blog.GET("/articles/:id/comments", commentController.ListComments)
	blog.GET("/articles/:id/stats", statsController.GetArticleStats)
	blog.GET("/comments/:id", commentController.GetComment)
	blog.GET("/stats", statsController.GetStats)

	protected := blog.Group("")
	protected.Use(authRequired, rateLimit)
	protected.POST("/categories", categoryController.CreateCategory)
	protected.DELETE("/categories/:id", categoryController.DeleteCategory)
	protected.POST("/articles", articleController.CreateArticle)
	protected.PUT("/articles/:id", articleController.UpdateArticle)
	protected.PATCH("/articles/:id", articleController.UpdateArticle)
	protected.DELETE("/articles/:id", articleController.DeleteArticle)
	protected.POST("/articles/:id/comments", commentController.CreateComment)
	protected.PUT("/comments/:id", commentController.UpdateComment)
	protected.PATCH("/comments/:id", commentController.UpdateComment)
	protected.DELETE("/comments/:id", commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}

// rateLimitStore returns the shared Redis counter store, or nil for per-process limiting.
func rateLimitStore(cfg config.AppConfig) *redis.Client {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	return utils.NewRedis(cfg)
}
