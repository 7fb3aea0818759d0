package handlers

import (
	"html/template"

	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/pages"
	"thermo_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	shell    *template.Template
	upgrader *websocket.Upgrader
}

// NewHandler constructs a new HTTP handler with dependencies.
// allowedOrigins lists the browser origins that may open /ws besides the
// dashboard's own host.
func NewHandler(services *service.Service, log *logger.Logger, allowedOrigins ...string) *Handler {
	return &Handler{
		services: services,
		log:      log,
		shell:    shellTemplate,
		upgrader: newUpgrader(allowedOrigins),
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	// Page shells and their client script
	h.registerPageRoutes(router)

	h.registerAPIRoutes(router)

	// Live page session (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	for _, route := range pages.Routes() {
		r.GET(route.Path, h.pageShell(route))
	}
	r.GET("/static/live.js", h.liveScript)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerLogRoutes(api)
		h.registerSessionRoutes(api)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	sessions := api.Group("/sessions")
	{
		sessions.GET("/", h.listSessions)
		sessions.DELETE("/:id", h.closeSession)
	}
}
