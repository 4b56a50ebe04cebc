package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/container"
	"github.com/softserv/softserv/cmd/api/handlers"
)

// RegisterTagRoutes registers tag endpoints
func RegisterTagRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewTagHandler(c.TagService)

	tags := e.Group("/api/v1/tags")
	{
		tags.GET("", h.List)                               // GET /api/v1/tags
		tags.GET("/:id", h.Get)                            // GET /api/v1/tags/7
		tags.POST("", h.Create, c.Auth.Required)           // POST /api/v1/tags
		tags.PUT("/:id", h.Update, c.Auth.Required)        // PUT /api/v1/tags/7
		tags.POST("/link", h.Link, c.Auth.Required)        // POST /api/v1/tags/link
		tags.POST("/unlink", h.Unlink, c.Auth.Required)    // POST /api/v1/tags/unlink
	}
}
