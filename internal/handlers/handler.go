package handlers

import (
	"battery_analysis/internal/logger"
	"battery_analysis/internal/service"

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
	router.Use(gin.Recovery(), h.accessLog)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Battery status stream (HTTP upgrade), same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerBatteryRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerBatteryRoutes(api *gin.RouterGroup) {
	batteries := api.Group("/batteries")
	{
		// Body example: {"owner":"alice","type":"a","nominal_charge":2.5}
		batteries.POST("", h.registerBattery)
		batteries.GET("", h.listBatteries)
		batteries.GET("/summary", h.batterySummary)
	}

	battery := batteries.Group("/:id", h.batteryIDMiddleware)
	{
		battery.GET("", h.getBattery)
		battery.GET("/status", h.getStatus)
		// Body example: {"charge":0.42,"voltage":3.612}
		battery.POST("/ica", h.appendIca)
		// Body example: {"overall_charge":2.31,"elapsed_time":120}
		battery.POST("/ccct", h.appendCcct)
		battery.POST("/reanalyze", h.reanalyze)
		battery.GET("/curve/:stage", h.getCurve)
		battery.GET("/curve/:stage/chart.png", h.getCurveChart)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
