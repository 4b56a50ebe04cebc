package service

import (
	"context"

	"github.com/softserv/softserv/common/apperr"
	"github.com/softserv/softserv/common/auth"
	"github.com/softserv/softserv/common/logger"
	"github.com/softserv/softserv/common/models"
)

// LifecycleService handles provisioning requests: the per-user draft,
// line items, and the status state machine.
type LifecycleService struct {
	requests RequestStore
	software SoftwareStore
	log      *logger.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(requests RequestStore, software SoftwareStore, log *logger.Logger) *LifecycleService {
	return &LifecycleService{requests: requests, software: software, log: log}
}

// transitionAllowed is the closed transition table. It reports whether
// from -> to is legal and whether only moderators may perform it.
func transitionAllowed(from, to models.RequestStatus) (moderatorOnly bool, ok bool) {
	if to == models.RequestDeleted {
		return true, from != models.RequestDeleted
	}
	switch {
	case from == models.RequestCreated && to == models.RequestProcessed:
		return true, true
	case from == models.RequestProcessed && to == models.RequestCompleted:
		return true, true
	case from == models.RequestCreated && to == models.RequestCanceled,
		from == models.RequestProcessed && to == models.RequestCanceled:
		return false, true
	}
	return false, false
}

// ListRequests returns requests matching the filter. Non-moderators are
// always scoped to their own requests regardless of the filter.
func (s *LifecycleService) ListRequests(ctx context.Context, ident auth.Identity, filter models.RequestFilter) ([]models.Request, error) {
	if !ident.Moderator {
		filter.UserID = &ident.UserID
	}
	return s.requests.List(ctx, filter)
}

// GetRequest returns one request with its owner's username and line
// items. Non-moderators may only read their own.
func (s *LifecycleService) GetRequest(ctx context.Context, ident auth.Identity, id int64) (*models.RequestDetail, error) {
	detail, err := s.requests.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperr.NotFoundf("request %d not found", id)
	}
	if !ident.Moderator && detail.UserID != ident.UserID {
		return nil, apperr.Forbidden("not your request")
	}
	return detail, nil
}

// CreateRequest opens a new request for the caller
func (s *LifecycleService) CreateRequest(ctx context.Context, ident auth.Identity, sshAddress, sshPassword *string) (*models.RequestDetail, error) {
	id, err := s.requests.Insert(ctx, ident.UserID, sshAddress, sshPassword)
	if err != nil {
		return nil, err
	}

	s.log.Info("request created", "request_id", id, "user_id", ident.UserID)
	return s.requests.GetDetail(ctx, id)
}

// The connection fields reachable by request merge patches. Both are
// nullable, so an explicit null clears them.
type requestPatchDoc struct {
	SSHAddress  *string `json:"ssh_address"`
	SSHPassword *string `json:"ssh_password"`
}

var requestPatchKeys = []string{"ssh_address", "ssh_password"}

// UpdateRequest applies an RFC 7386 merge patch to a request's
// connection details. Owners may edit their own; moderators any.
func (s *LifecycleService) UpdateRequest(ctx context.Context, ident auth.Identity, id int64, patch []byte) (*models.Request, error) {
	if err := checkPatchTouches(patch, requestPatchKeys); err != nil {
		return nil, err
	}

	current, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFoundf("request %d not found", id)
	}
	if !ident.Moderator && current.UserID != ident.UserID {
		return nil, apperr.Forbidden("not your request")
	}

	doc := requestPatchDoc{SSHAddress: current.SSHAddress, SSHPassword: current.SSHPassword}
	merged := requestPatchDoc{}
	if err := mergePatch(doc, patch, &merged); err != nil {
		return nil, err
	}

	updated, err := s.requests.UpdateConnection(ctx, id, merged.SSHAddress, merged.SSHPassword)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("request %d not found", id)
	}

	s.log.Info("request updated", "request_id", id, "by", ident.UserID)
	return updated, nil
}

// AddToDraft attaches a software entry to the caller's draft request,
// creating the draft when none exists. Re-adding an existing line item
// resets it to new with the given install flag.
func (s *LifecycleService) AddToDraft(ctx context.Context, ident auth.Identity, softwareID int64, toInstall bool) (int64, error) {
	sw, err := s.software.GetByID(ctx, softwareID)
	if err != nil {
		return 0, err
	}
	if sw == nil {
		return 0, apperr.NotFoundf("software %d not found", softwareID)
	}
	if !sw.Active {
		return 0, apperr.Validationf("software %d is no longer available", softwareID)
	}

	requestID, err := s.requests.AttachToDraft(ctx, ident.UserID, softwareID, toInstall)
	if err != nil {
		return 0, err
	}

	s.log.Info("software added to draft", "request_id", requestID, "software_id", softwareID, "user_id", ident.UserID)
	return requestID, nil
}

// AttachToRequest attaches a software entry to a specific request.
// Owners may touch their own created requests; moderators any
// non-terminal request.
func (s *LifecycleService) AttachToRequest(ctx context.Context, ident auth.Identity, requestID, softwareID int64, toInstall bool) error {
	req, err := s.editableRequest(ctx, ident, requestID)
	if err != nil {
		return err
	}

	sw, err := s.software.GetByID(ctx, softwareID)
	if err != nil {
		return err
	}
	if sw == nil {
		return apperr.NotFoundf("software %d not found", softwareID)
	}
	if !sw.Active {
		return apperr.Validationf("software %d is no longer available", softwareID)
	}

	if err := s.requests.AttachItem(ctx, req.ID, softwareID, toInstall); err != nil {
		return err
	}

	s.log.Info("software attached", "request_id", req.ID, "software_id", softwareID, "by", ident.UserID)
	return nil
}

// DetachItem cancels a line item. The row is kept with status canceled
// rather than removed.
func (s *LifecycleService) DetachItem(ctx context.Context, ident auth.Identity, requestID, softwareID int64) error {
	req, err := s.editableRequest(ctx, ident, requestID)
	if err != nil {
		return err
	}

	found, err := s.requests.DetachItem(ctx, req.ID, softwareID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFoundf("software %d is not on request %d", softwareID, requestID)
	}

	s.log.Info("software detached", "request_id", requestID, "software_id", softwareID, "by", ident.UserID)
	return nil
}

// SetItemStatus updates a line item's processing sub-status. Moderator only.
func (s *LifecycleService) SetItemStatus(ctx context.Context, ident auth.Identity, requestID, softwareID int64, status models.LineItemStatus) error {
	if !ident.Moderator {
		return apperr.Forbidden("moderator role required")
	}

	found, err := s.requests.SetItemStatus(ctx, requestID, softwareID, status)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFoundf("software %d is not on request %d", softwareID, requestID)
	}

	s.log.Info("line item status set", "request_id", requestID, "software_id", softwareID, "status", status, "by", ident.UserID)
	return nil
}

// Claim assigns the calling moderator to an unassigned request
func (s *LifecycleService) Claim(ctx context.Context, ident auth.Identity, id int64) (*models.Request, error) {
	if !ident.Moderator {
		return nil, apperr.Forbidden("moderator role required")
	}

	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFoundf("request %d not found", id)
	}
	if req.ModeratorID != nil {
		return nil, apperr.Conflictf("request %d is already assigned", id)
	}

	claimed, err := s.requests.AssignModerator(ctx, id, ident.UserID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperr.Conflictf("request %d is already assigned", id)
	}

	s.log.Info("request claimed", "request_id", id, "moderator_id", ident.UserID)
	return s.requests.Get(ctx, id)
}

// Transition moves a request to a new status under the transition
// table. The underlying update is compare-and-swap on the observed
// status, so a concurrent change surfaces as an illegal transition.
func (s *LifecycleService) Transition(ctx context.Context, ident auth.Identity, id int64, to models.RequestStatus) (*models.Request, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFoundf("request %d not found", id)
	}
	if !ident.Moderator && req.UserID != ident.UserID {
		return nil, apperr.Forbidden("not your request")
	}

	moderatorOnly, ok := transitionAllowed(req.Status, to)
	if !ok {
		return nil, apperr.IllegalTransitionf("cannot transition from %s to %s", req.Status, to)
	}
	if moderatorOnly && !ident.Moderator {
		return nil, apperr.Forbidden("moderator role required")
	}

	changed, err := s.requests.UpdateStatus(ctx, id, req.Status, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperr.IllegalTransitionf("request %d status changed concurrently", id)
	}

	s.log.Info("request transitioned", "request_id", id, "from", req.Status, "to", to, "by", ident.UserID)
	return s.requests.Get(ctx, id)
}

// Delete marks a request deleted. Moderator only, enforced by the
// transition table.
func (s *LifecycleService) Delete(ctx context.Context, ident auth.Identity, id int64) error {
	_, err := s.Transition(ctx, ident, id, models.RequestDeleted)
	return err
}

// editableRequest loads a request and checks the caller may change its
// line items. Owners are limited to their own requests while still in
// created; moderators to any request not yet terminal.
func (s *LifecycleService) editableRequest(ctx context.Context, ident auth.Identity, id int64) (*models.Request, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFoundf("request %d not found", id)
	}
	if !ident.Moderator {
		if req.UserID != ident.UserID {
			return nil, apperr.Forbidden("not your request")
		}
		if req.Status != models.RequestCreated {
			return nil, apperr.IllegalTransitionf("request %d is already %s", id, req.Status)
		}
		return req, nil
	}
	switch req.Status {
	case models.RequestCompleted, models.RequestCanceled, models.RequestDeleted:
		return nil, apperr.IllegalTransitionf("request %d is already %s", id, req.Status)
	}
	return req, nil
}
