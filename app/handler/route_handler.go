package handler

import (
	"net/http"

	"schedrouter/internal/service"
	"schedrouter/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RouteHandler maps the routing entry points onto HTTP. A routed request is
// answered with a temporary redirect to the owning scheduler; when the
// process is not in router mode the request is acknowledged without a
// redirect and handled locally by whatever sits behind this layer.
type RouteHandler struct {
	routerService *service.RouterService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routerService *service.RouterService) *RouteHandler {
	return &RouteHandler{routerService: routerService}
}

// RedirectProcess routes by process id
// @Summary Route by process id
// @Description Redirects to the scheduler that owns the given process
// @Tags route
// @Param process-id query string true "Process ID"
// @Success 307
// @Router / [get]
func (h *RouteHandler) RedirectProcess(c *gin.Context) {
	url, routed, err := h.routerService.RouteProcess(c.Request.Context(), c.Query("process-id"))
	h.respond(c, url, routed, err)
}

// RedirectTransaction routes by transaction id with a process-id fallback
// @Summary Route by transaction id
// @Description Redirects to the scheduler that owns the given transaction's process
// @Tags route
// @Param tx_id path string true "Transaction ID"
// @Param process-id query string false "Process ID fallback for message id queries"
// @Success 307
// @Router /{tx_id} [get]
func (h *RouteHandler) RedirectTransaction(c *gin.Context) {
	url, routed, err := h.routerService.RouteTransaction(c.Request.Context(), c.Param("tx_id"), c.Query("process-id"))
	h.respond(c, url, routed, err)
}

// RedirectPayload routes a raw payload
// @Summary Route a payload
// @Description Assigns new processes a scheduler, redirects messages to their target's scheduler
// @Tags route
// @Accept octet-stream
// @Param process-id query string false "Process ID (pinning, requires assign)"
// @Param assign query string false "Assignment target hint (pinning, requires process-id)"
// @Success 307
// @Router / [post]
func (h *RouteHandler) RedirectPayload(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	url, routed, routeErr := h.routerService.RoutePayload(c.Request.Context(), payload, c.Query("process-id"), c.Query("assign"))
	h.respond(c, url, routed, routeErr)
}

func (h *RouteHandler) respond(c *gin.Context, url string, routed bool, err error) {
	if err != nil {
		logger.DebugCtx(c.Request.Context(), "routing failed: %v", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if !routed {
		c.JSON(http.StatusOK, gin.H{"routed": false})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// statusFor maps the routing error taxonomy onto HTTP statuses
func statusFor(err error) int {
	switch service.Kind(err) {
	case service.KindMissingParameter, service.KindBadRequest:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindNoSchedulerAvailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
