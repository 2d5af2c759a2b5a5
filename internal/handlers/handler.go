package handlers

import (
	"smarthome_dw/internal/logger"
	"smarthome_dw/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live metrics over WebSocket (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerETLRoutes(api)
		h.registerAnalysisRoutes(api)

		api.GET("/metrics", h.getMetrics)
		api.POST("/admin/reset", h.resetStore)
	}
}

func (h *Handler) registerETLRoutes(api *gin.RouterGroup) {
	etl := api.Group("/etl")
	{
		etl.POST("/run", h.runETLCycle)
	}
	scheduler := api.Group("/scheduler")
	{
		scheduler.POST("/start", h.startScheduler)
		scheduler.POST("/stop", h.stopScheduler)
		scheduler.GET("/status", h.schedulerStatus)
	}
}

func (h *Handler) registerAnalysisRoutes(api *gin.RouterGroup) {
	analyses := api.Group("/analyses")
	{
		analyses.GET("/waste", h.analyzeWaste)
		analyses.GET("/consumption", h.analyzeConsumption)
		analyses.GET("/all", h.analyzeAll)
	}
}
