package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/middleware"
	"github.com/softserv/softserv/cmd/api/service"
)

// Logo uploads are small square images, anything over this is rejected
const maxLogoBytes = 2 << 20

// SoftwareHandler handles catalog endpoints
type SoftwareHandler struct {
	catalog *service.CatalogService
}

// NewSoftwareHandler creates a new software handler
func NewSoftwareHandler(catalog *service.CatalogService) *SoftwareHandler {
	return &SoftwareHandler{catalog: catalog}
}

// List returns the active catalog, optionally narrowed by ?search=.
// Authenticated callers also get their current draft request id.
// GET /api/v1/softwares
func (h *SoftwareHandler) List(c echo.Context) error {
	listing, err := h.catalog.List(c.Request().Context(), middleware.Identity(c), c.QueryParam("search"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// SearchByName returns active entries whose name contains ?name=
// GET /api/v1/softwares/search
func (h *SoftwareHandler) SearchByName(c echo.Context) error {
	softwares, err := h.catalog.SearchByName(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"softwares": softwares})
}

// Get returns one catalog entry with its tags
// GET /api/v1/softwares/:id
func (h *SoftwareHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid software id")
	}

	sw, err := h.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}

// Create adds a catalog entry
// POST /api/v1/softwares
func (h *SoftwareHandler) Create(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	var req service.CreateSoftwareInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	id, err := h.catalog.Create(c.Request().Context(), ident, req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

// Update applies a merge patch to a catalog entry
// PATCH /api/v1/softwares/:id
func (h *SoftwareHandler) Update(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid software id")
	}

	patch, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "invalid request body")
	}

	sw, err := h.catalog.Update(c.Request().Context(), ident, id, patch)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}

// Deactivate soft-deletes a catalog entry
// DELETE /api/v1/softwares/:id
func (h *SoftwareHandler) Deactivate(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid software id")
	}

	if err := h.catalog.Deactivate(c.Request().Context(), ident, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AttachLogo stores a PNG logo for a catalog entry
// PUT /api/v1/softwares/:id/logo
func (h *SoftwareHandler) AttachLogo(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid software id")
	}

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxLogoBytes+1))
	if err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(data) > maxLogoBytes {
		return badRequest(c, "logo too large")
	}

	url, err := h.catalog.AttachLogo(c.Request().Context(), ident, id, data)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"logo": url})
}

// pathID parses a numeric path parameter
func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}