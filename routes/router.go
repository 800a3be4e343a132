package routes

import (
	"net/http"
	"time"

	"civic-issues-be/config"
	"civic-issues-be/controllers"
	"civic-issues-be/middlewares"
	"civic-issues-be/services"
	"civic-issues-be/storage"
	"civic-issues-be/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Config *config.Config
	Log    *zap.Logger
	Tokens *utils.TokenIssuer
	Issues *services.IssueService
	Auth   *services.AuthService
	Export *services.ExportService
	// RateCounter throttles public intake. Nil disables throttling.
	RateCounter middlewares.RateCounter
}

func NewRouter(d Dependencies) *gin.Engine {
	controllers.UseJSONFieldNames()

	r := gin.New()
	r.Use(middlewares.RequestLogger(d.Log), gin.Recovery(), cors.New(corsConfig(d.Config.CORSOrigins)))
	r.Static(storage.URLPrefix, d.Config.UploadDir)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Civic Issue Reporting System API"})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	requireAdmin := middlewares.AuthMiddleware(d.Tokens, d.Log)

	api := r.Group("/api")
	AuthRoutes(api, controllers.NewAuthController(d.Auth, d.Config.TokenTTL, d.Config.IsProduction(), d.Log),
		requireAdmin, d.Config.AllowOpenRegistration)
	IssueRoutes(api, controllers.NewIssueController(d.Issues, d.Log), intakeLimiter(d))
	AdminRoutes(api, controllers.NewAdminController(d.Issues, d.Export, d.Log), requireAdmin)

	return r
}

func intakeLimiter(d Dependencies) gin.HandlerFunc {
	if d.RateCounter == nil || d.Config.IssueRateLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middlewares.IssueRateLimiter(d.RateCounter, d.Config.IssueRateLimit, d.Config.RateLimitQueue, d.Log)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middlewares.TokenHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
