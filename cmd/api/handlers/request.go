package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/softserv/softserv/cmd/api/middleware"
	"github.com/softserv/softserv/cmd/api/service"
	"github.com/softserv/softserv/common/models"
)

// RequestHandler handles provisioning request endpoints
type RequestHandler struct {
	lifecycle *service.LifecycleService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(lifecycle *service.LifecycleService) *RequestHandler {
	return &RequestHandler{lifecycle: lifecycle}
}

type createRequestBody struct {
	SSHAddress  *string `json:"ssh_address"`
	SSHPassword *string `json:"ssh_password"`
}

type addSoftwareBody struct {
	SoftwareID int64 `json:"software_id"`
	// ToInstall defaults to true when omitted
	ToInstall *bool `json:"to_install"`
}

func (b addSoftwareBody) toInstall() bool {
	return b.ToInstall == nil || *b.ToInstall
}

type statusBody struct {
	Status string `json:"status"`
}

// List returns requests matching the query filters. Non-moderators only
// ever see their own.
// GET /api/v1/requests?status=&user_id=&created_after=&created_before=
func (h *RequestHandler) List(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	filter, ferr := parseRequestFilter(c)
	if ferr != nil {
		return badRequest(c, ferr.Error())
	}

	requests, err := h.lifecycle.ListRequests(c.Request().Context(), ident, filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"requests": requests})
}

// Get returns one request with its line items
// GET /api/v1/requests/:id
func (h *RequestHandler) Get(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	detail, err := h.lifecycle.GetRequest(c.Request().Context(), ident, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Create opens a new request for the caller
// POST /api/v1/requests
func (h *RequestHandler) Create(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	var req createRequestBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	detail, err := h.lifecycle.CreateRequest(c.Request().Context(), ident, req.SSHAddress, req.SSHPassword)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// Update applies a merge patch to a request's connection details
// PATCH /api/v1/requests/:id
func (h *RequestHandler) Update(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	patch, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "invalid request body")
	}

	updated, err := h.lifecycle.UpdateRequest(c.Request().Context(), ident, id, patch)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// AddToDraft puts a software entry on the caller's draft request,
// creating the draft when none exists.
// POST /api/v1/requests/draft/softwares
func (h *RequestHandler) AddToDraft(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}

	var req addSoftwareBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	requestID, err := h.lifecycle.AddToDraft(c.Request().Context(), ident, req.SoftwareID, req.toInstall())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"request_id": requestID})
}

// Attach puts a software entry on a specific request
// POST /api/v1/requests/:id/softwares
func (h *RequestHandler) Attach(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	var req addSoftwareBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.lifecycle.AttachToRequest(c.Request().Context(), ident, id, req.SoftwareID, req.toInstall()); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Detach cancels a line item
// DELETE /api/v1/requests/:id/softwares/:software_id
func (h *RequestHandler) Detach(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}
	softwareID, err := pathID(c, "software_id")
	if err != nil {
		return badRequest(c, "invalid software id")
	}

	if err := h.lifecycle.DetachItem(c.Request().Context(), ident, id, softwareID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetItemStatus updates a line item's processing sub-status
// PUT /api/v1/requests/:id/softwares/:software_id/status
func (h *RequestHandler) SetItemStatus(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}
	softwareID, err := pathID(c, "software_id")
	if err != nil {
		return badRequest(c, "invalid software id")
	}

	var req statusBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	status, err := models.ParseLineItemStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.lifecycle.SetItemStatus(c.Request().Context(), ident, id, softwareID, status); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Claim assigns the calling moderator to a request
// POST /api/v1/requests/:id/claim
func (h *RequestHandler) Claim(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	req, err := h.lifecycle.Claim(c.Request().Context(), ident, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// Transition moves a request through the status state machine
// POST /api/v1/requests/:id/status
func (h *RequestHandler) Transition(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	var req statusBody
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	status, err := models.ParseRequestStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.lifecycle.Transition(c.Request().Context(), ident, id, status)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete marks a request deleted
// DELETE /api/v1/requests/:id
func (h *RequestHandler) Delete(c echo.Context) error {
	ident, err := middleware.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	if err := h.lifecycle.Delete(c.Request().Context(), ident, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// parseRequestFilter reads the optional listing filters off the query string
func parseRequestFilter(c echo.Context) (models.RequestFilter, error) {
	var filter models.RequestFilter

	if raw := c.QueryParam("status"); raw != "" {
		status, err := models.ParseRequestStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.UserID = &id
	}
	if raw := c.QueryParam("created_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.CreatedAfter = &t
	}
	if raw := c.QueryParam("created_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.CreatedBefore = &t
	}

	return filter, nil
}
