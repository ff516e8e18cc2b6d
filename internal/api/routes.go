package api

import (
	"net/http"

	"salesdash/server/config"
	"salesdash/server/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Options wires the optional pieces of the router.
type Options struct {
	// Observer receives request timings, MetricsHandler serves /metrics
	Observer       RequestObserver
	MetricsHandler http.Handler
}

// NewRouter builds the engine with the shared middleware and every route.
func NewRouter(cfg *config.Config, handler *Handler, jwt *auth.JWTManager, logger *logrus.Logger, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(logger, opts.Observer), corsMiddleware(cfg.Server.AllowedOrigins))

	SetupRoutes(router, handler, NewSessionHandler(jwt, logger), jwt, opts.MetricsHandler)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler, sessions *SessionHandler, jwt *auth.JWTManager, metrics http.Handler) {
	router.GET("/health", handler.Health)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	public := router.Group("/api/auth")
	{
		public.POST("/login", sessions.Login)
		public.POST("/logout", sessions.Logout)
	}

	api := router.Group("/api", auth.Middleware(jwt))
	{
		api.GET("/stats", handler.GetStats)
		api.GET("/categories", handler.GetCategories)

		api.GET("/analytics/areas", handler.GetAreaStats)
		api.GET("/analytics/trends", handler.GetTrends)
		api.GET("/analytics/diff", handler.GetMarketDiff)
		api.GET("/admin/stats", handler.GetAdminStats)

		api.GET("/properties", handler.GetProperties)
		api.GET("/properties/detail", handler.GetProperty)
		api.GET("/properties/locations", handler.GetLocations)

		api.GET("/map/regions", handler.GetRegions)
		api.GET("/map/regions/:name", handler.GetRegion)

		api.POST("/ai/generate", handler.GenerateCopy)
		api.POST("/ai/history", handler.GetCopyHistory)
	}
}
