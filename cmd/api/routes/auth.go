package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/container"
	"github.com/softserv/softserv/cmd/api/handlers"
)

// RegisterAuthRoutes registers account endpoints
func RegisterAuthRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAuthHandler(c.AccountService)

	auth := e.Group("/api/v1/auth")
	{
		auth.POST("/register", h.Register)                 // POST /api/v1/auth/register
		auth.POST("/login", h.Login)                       // POST /api/v1/auth/login
		auth.POST("/logout", h.Logout, c.Auth.Required)    // POST /api/v1/auth/logout
	}
}
