package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/middleware"
	"github.com/softserv/softserv/cmd/api/service"
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	accounts *service.AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.accounts.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, err := h.accounts.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// Logout revokes the caller's token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	if err := h.accounts.Logout(c.Request().Context(), ident); err != nil {
		return respondErr(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
