package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/container"
	"github.com/softserv/softserv/cmd/api/handlers"
)

// RegisterSoftwareRoutes registers catalog endpoints
func RegisterSoftwareRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewSoftwareHandler(c.CatalogService)

	softwares := e.Group("/api/v1/softwares")
	{
		softwares.GET("", h.List, c.Auth.Optional)            // GET /api/v1/softwares
		softwares.GET("/search", h.SearchByName)              // GET /api/v1/softwares/search
		softwares.GET("/:id", h.Get)                          // GET /api/v1/softwares/42
		softwares.POST("", h.Create, c.Auth.Required)         // POST /api/v1/softwares
		softwares.PATCH("/:id", h.Update, c.Auth.Required)    // PATCH /api/v1/softwares/42
		softwares.DELETE("/:id", h.Deactivate, c.Auth.Required)
		softwares.PUT("/:id/logo", h.AttachLogo, c.Auth.Required)
	}
}
