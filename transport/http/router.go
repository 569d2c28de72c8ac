package http

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/layer-3/kana-auth/service"
)

// RouterConfig carries the transport settings for SetupRouter
type RouterConfig struct {
	Origins  []string
	Cookies  CookieConfig
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	metrics := NewMetrics(cfg.Registry)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger, metrics))

	// Requests without an Origin header are not CORS requests and pass through.
	if len(cfg.Origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.Origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		router.Use(cors.New(corsConfig))
	}

	handlers := NewAuthHandlers(authService, cfg.Cookies, metrics, cfg.Logger)

	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	auth := router.Group("/api/auth")
	{
		auth.GET("/check-email", handlers.CheckEmail)
		auth.GET("/captcha", handlers.Captcha)
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/me", handlers.Me)
		auth.PATCH("/me", RequireSession(authService), handlers.UpdateMe)
	}

	return router
}
