package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/container"
	"github.com/softserv/softserv/cmd/api/handlers"
)

// RegisterRequestRoutes registers provisioning request endpoints.
// Everything here needs an authenticated caller.
func RegisterRequestRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewRequestHandler(c.LifecycleService)

	requests := e.Group("/api/v1/requests", c.Auth.Required)
	{
		requests.GET("", h.List)                       // GET /api/v1/requests
		requests.POST("", h.Create)                    // POST /api/v1/requests
		requests.POST("/draft/softwares", h.AddToDraft)
		requests.GET("/:id", h.Get)                    // GET /api/v1/requests/13
		requests.PATCH("/:id", h.Update)               // PATCH /api/v1/requests/13
		requests.DELETE("/:id", h.Delete)              // DELETE /api/v1/requests/13
		requests.POST("/:id/status", h.Transition)     // POST /api/v1/requests/13/status
		requests.POST("/:id/claim", h.Claim)           // POST /api/v1/requests/13/claim
		requests.POST("/:id/softwares", h.Attach)
		requests.DELETE("/:id/softwares/:software_id", h.Detach)
		requests.PUT("/:id/softwares/:software_id/status", h.SetItemStatus)
	}
}
