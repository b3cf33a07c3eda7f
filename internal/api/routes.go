package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inari-web/internal/api/handlers"
	"inari-web/internal/api/middleware"
	"inari-web/internal/api/views"
	"inari-web/internal/auth"
	"inari-web/internal/metrics"
)

// NewRouter builds the gin engine with templates, middleware and routes
func NewRouter(h *handlers.Handler, renderer *views.Renderer, gate *auth.Gate, m *metrics.Collector, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.HTMLRender = renderer
	router.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	SetupRoutes(router, h, gate, m)
	return router
}

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, h *handlers.Handler, gate *auth.Gate, m *metrics.Collector) {
	setupPublicRoutes(router, h, m)

	protected := router.Group("/")
	protected.Use(gate.Middleware())
	setupProtectedRoutes(protected, h)
}

// setupPublicRoutes configures routes that don't require a session
func setupPublicRoutes(router *gin.Engine, h *handlers.Handler, m *metrics.Collector) {
	router.GET("/health", h.HealthCheck)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.GET("/auth/callback", h.Callback)
	router.POST("/logout", h.Logout)
}

// setupProtectedRoutes configures routes that require a session
func setupProtectedRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	rg.GET("/", h.Timeline)
	rg.GET("/collections/:type", h.ListCollections)
	rg.GET("/ws", h.ServeWS)
	rg.GET("/thumbnails/*key", h.ServeThumbnail)

	collection := rg.Group("/collection/:id")
	{
		collection.GET("", h.CollectionGrid)
		collection.GET("/media/:mediaid", h.ViewMedia)
		collection.POST("/media/:mediaid/delete", h.DeleteInCollection)
		collection.POST("/media/:mediaid/caption", h.CaptionInCollection)
		collection.POST("/media/:mediaid/hashtag", h.HashtagInCollection)
	}

	media := rg.Group("/media/:id")
	{
		media.GET("", h.MediaDetail)
		media.POST("/delete", h.DeleteMedia)
		media.POST("/caption", h.UpdateCaption)
		media.POST("/hashtag", h.AddHashtag)
	}
}
