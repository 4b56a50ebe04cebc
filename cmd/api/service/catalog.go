package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/softserv/softserv/common/apperr"
	"github.com/softserv/softserv/common/auth"
	"github.com/softserv/softserv/common/logger"
	"github.com/softserv/softserv/common/models"
	"github.com/softserv/softserv/common/storage"
)

// DraftFinder exposes the caller's current draft request id for the
// catalog listing.
type DraftFinder interface {
	DraftID(ctx context.Context, userID int64) (*int64, error)
}

// CatalogService handles the software catalog
type CatalogService struct {
	software SoftwareStore
	drafts   DraftFinder
	store    storage.ObjectStore
	log      *logger.Logger
}

// NewCatalogService creates a new catalog service. The object store may
// be nil when logo uploads are disabled.
func NewCatalogService(software SoftwareStore, drafts DraftFinder, store storage.ObjectStore, log *logger.Logger) *CatalogService {
	return &CatalogService{
		software: software,
		drafts:   drafts,
		store:    store,
		log:      log,
	}
}

// CreateSoftwareInput carries the full required field set for creation
type CreateSoftwareInput struct {
	Name        *string `json:"name"`
	Version     *string `json:"version"`
	Description *string `json:"description"`
	Source      *string `json:"source"`
	Active      *bool   `json:"active"`
}

// Listing is the catalog listing plus the caller's draft request id,
// when authenticated.
type Listing struct {
	Softwares []models.SoftwareWithTags `json:"softwares"`
	RequestID *int64                    `json:"request_id"`
}

// List returns active software with tags, narrowed by an optional
// search over names and tag names.
func (s *CatalogService) List(ctx context.Context, ident *auth.Identity, search string) (*Listing, error) {
	softwares, err := s.software.ListActive(ctx, search)
	if err != nil {
		return nil, err
	}

	listing := &Listing{Softwares: make([]models.SoftwareWithTags, 0, len(softwares))}
	for _, sw := range softwares {
		tags, err := s.software.TagsFor(ctx, sw.ID)
		if err != nil {
			return nil, err
		}
		listing.Softwares = append(listing.Softwares, models.SoftwareWithTags{Software: sw, Tags: tags})
	}

	if ident != nil {
		listing.RequestID, err = s.drafts.DraftID(ctx, ident.UserID)
		if err != nil {
			return nil, err
		}
	}

	return listing, nil
}

// SearchByName returns active software whose name contains the substring
func (s *CatalogService) SearchByName(ctx context.Context, name string) ([]models.Software, error) {
	return s.software.SearchActiveByName(ctx, name)
}

// Get retrieves one software row with tags, regardless of active flag
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.SoftwareWithTags, error) {
	sw, err := s.software.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sw == nil {
		return nil, apperr.NotFoundf("software %d not found", id)
	}

	tags, err := s.software.TagsFor(ctx, sw.ID)
	if err != nil {
		return nil, err
	}

	return &models.SoftwareWithTags{Software: *sw, Tags: tags}, nil
}

// Create adds a new catalog entry. Moderator only; every field required.
func (s *CatalogService) Create(ctx context.Context, ident auth.Identity, input CreateSoftwareInput) (int64, error) {
	if !ident.Moderator {
		return 0, apperr.Forbidden("moderator role required")
	}

	fields, err := input.fields()
	if err != nil {
		return 0, err
	}

	id, err := s.software.Insert(ctx, *fields)
	if err != nil {
		return 0, err
	}

	s.log.Info("software created", "software_id", id, "name", fields.Name, "by", ident.UserID)
	return id, nil
}

func (in CreateSoftwareInput) fields() (*models.SoftwareFields, error) {
	switch {
	case in.Name == nil:
		return nil, apperr.Validationf("missing field: name")
	case in.Version == nil:
		return nil, apperr.Validationf("missing field: version")
	case in.Description == nil:
		return nil, apperr.Validationf("missing field: description")
	case in.Source == nil:
		return nil, apperr.Validationf("missing field: source")
	case in.Active == nil:
		return nil, apperr.Validationf("missing field: active")
	}
	return &models.SoftwareFields{
		Name:        *in.Name,
		Version:     *in.Version,
		Description: *in.Description,
		Source:      *in.Source,
		Active:      *in.Active,
	}, nil
}

// The updatable field set as seen by merge patches. All fields are
// required on the row, so an explicit null is rejected rather than
// written through.
type softwarePatchDoc struct {
	Name        *string `json:"name"`
	Version     *string `json:"version"`
	Description *string `json:"description"`
	Source      *string `json:"source"`
	Active      *bool   `json:"active"`
}

var softwarePatchKeys = []string{"name", "version", "description", "source", "active"}

// Update applies an RFC 7386 merge patch over the current row: absent
// fields keep their value. Moderator only; empty patches are rejected.
func (s *CatalogService) Update(ctx context.Context, ident auth.Identity, id int64, patch []byte) (*models.Software, error) {
	if !ident.Moderator {
		return nil, apperr.Forbidden("moderator role required")
	}

	if err := checkPatchTouches(patch, softwarePatchKeys); err != nil {
		return nil, err
	}

	current, err := s.software.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFoundf("software %d not found", id)
	}

	doc := softwarePatchDoc{
		Name:        &current.Name,
		Version:     &current.Version,
		Description: &current.Description,
		Source:      &current.Source,
		Active:      &current.Active,
	}
	merged := softwarePatchDoc{}
	if err := mergePatch(doc, patch, &merged); err != nil {
		return nil, err
	}

	fields := models.SoftwareFields{}
	switch {
	case merged.Name == nil:
		return nil, apperr.Validationf("field cannot be cleared: name")
	case merged.Version == nil:
		return nil, apperr.Validationf("field cannot be cleared: version")
	case merged.Description == nil:
		return nil, apperr.Validationf("field cannot be cleared: description")
	case merged.Source == nil:
		return nil, apperr.Validationf("field cannot be cleared: source")
	case merged.Active == nil:
		return nil, apperr.Validationf("field cannot be cleared: active")
	}
	fields.Name = *merged.Name
	fields.Version = *merged.Version
	fields.Description = *merged.Description
	fields.Source = *merged.Source
	fields.Active = *merged.Active

	updated, err := s.software.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("software %d not found", id)
	}

	s.log.Info("software updated", "software_id", id, "by", ident.UserID)
	return updated, nil
}

// Deactivate soft-deletes a catalog entry. Moderator only; idempotent.
func (s *CatalogService) Deactivate(ctx context.Context, ident auth.Identity, id int64) error {
	if !ident.Moderator {
		return apperr.Forbidden("moderator role required")
	}

	if err := s.software.Deactivate(ctx, id); err != nil {
		return err
	}

	s.log.Info("software deactivated", "software_id", id, "by", ident.UserID)
	return nil
}

// AttachLogo uploads a logo and records its URL. The database write
// happens only after the upload succeeds, so a store failure leaves the
// row untouched. The key carries a timestamp so repeated uploads don't
// collide in caches.
func (s *CatalogService) AttachLogo(ctx context.Context, ident auth.Identity, id int64, data []byte) (string, error) {
	if !ident.Moderator {
		return "", apperr.Forbidden("moderator role required")
	}
	if len(data) == 0 {
		return "", apperr.Validationf("missing field: logo body")
	}
	if s.store == nil {
		return "", apperr.Internal("object store not configured", nil)
	}

	sw, err := s.software.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if sw == nil {
		return "", apperr.NotFoundf("software %d not found", id)
	}

	key := fmt.Sprintf("logos/%d_%d.png", sw.ID, time.Now().Unix())
	url, err := s.store.Put(ctx, key, data, "image/png")
	if err != nil {
		return "", apperr.Internal("upload logo", err)
	}

	if err := s.software.SetLogo(ctx, id, url); err != nil {
		return "", err
	}

	s.log.Info("logo attached", "software_id", id, "key", key, "by", ident.UserID)
	return url, nil
}

// mergePatch applies an RFC 7386 merge patch to doc and decodes the
// result into out.
func mergePatch(doc any, patch []byte, out any) error {
	original, err := json.Marshal(doc)
	if err != nil {
		return apperr.Internal("marshal current document", err)
	}

	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return apperr.Validationf("malformed patch body")
	}

	if err := json.Unmarshal(merged, out); err != nil {
		return apperr.Validationf("malformed patch body")
	}
	return nil
}

// checkPatchTouches rejects patches that are not JSON objects or that
// touch none of the known fields.
func checkPatchTouches(patch []byte, keys []string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(patch, &raw); err != nil {
		return apperr.Validationf("malformed patch body")
	}
	for _, k := range keys {
		if _, ok := raw[k]; ok {
			return nil
		}
	}
	return apperr.Validationf("empty update")
}
