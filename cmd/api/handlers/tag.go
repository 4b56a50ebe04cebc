package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/middleware"
	"github.com/softserv/softserv/cmd/api/service"
)

// TagHandler handles tag endpoints
type TagHandler struct {
	tags *service.TagService
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tags *service.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

type tagNameRequest struct {
	Name string `json:"name"`
}

type tagLinkRequest struct {
	SoftwareID int64 `json:"software_id"`
	TagID      int64 `json:"tag_id"`
}

// List returns tags, optionally narrowed by ?search=
// GET /api/v1/tags
func (h *TagHandler) List(c echo.Context) error {
	tags, err := h.tags.Search(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"tags": tags})
}

// Get returns one tag
// GET /api/v1/tags/:id
func (h *TagHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid tag id")
	}

	tag, err := h.tags.Get(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

// Create adds a tag
// POST /api/v1/tags
func (h *TagHandler) Create(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	var req tagNameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	tag, err := h.tags.Create(c.Request().Context(), ident, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, tag)
}

// Update renames a tag
// PUT /api/v1/tags/:id
func (h *TagHandler) Update(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid tag id")
	}

	var req tagNameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	tag, err := h.tags.UpdateName(c.Request().Context(), ident, id, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

// Link associates a tag with a software entry
// POST /api/v1/tags/link
func (h *TagHandler) Link(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	var req tagLinkRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.tags.Link(c.Request().Context(), ident, req.SoftwareID, req.TagID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Unlink removes a tag-to-software association
// POST /api/v1/tags/unlink
func (h *TagHandler) Unlink(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	var req tagLinkRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.tags.Unlink(c.Request().Context(), ident, req.SoftwareID, req.TagID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
