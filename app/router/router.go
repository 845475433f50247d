package router

import (
	"schedrouter/app/handler"
	"schedrouter/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	routeHandler    *handler.RouteHandler
	registryHandler *handler.RegistryHandler
}

// NewRouter creates a new Router
func NewRouter(routeHandler *handler.RouteHandler, registryHandler *handler.RegistryHandler) *Router {
	return &Router{
		routeHandler:    routeHandler,
		registryHandler: registryHandler,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Trace())
	engine.Use(middleware.Logger())

	// Routing entry points, shaped like the scheduler API they front:
	// submitted payloads on POST /, transaction reads on GET /:tx_id,
	// process lookups via the process-id query parameter.
	engine.POST("/", r.routeHandler.RedirectPayload)
	engine.GET("/", r.routeHandler.RedirectProcess)
	engine.GET("/:tx_id", r.routeHandler.RedirectTransaction)

	// Admin read surface
	v1 := engine.Group("/v1")
	v1.Use(middleware.AuthMiddleware())
	{
		v1.GET("/schedulers", r.registryHandler.ListSchedulers)
		v1.GET("/assignments/:process_id", r.registryHandler.GetAssignment)
	}

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
