package service

import (
	"context"
	"strings"

	"github.com/softserv/softserv/common/apperr"
	"github.com/softserv/softserv/common/auth"
	"github.com/softserv/softserv/common/logger"
	"github.com/softserv/softserv/common/models"
)

// TagService handles tag management and tag-to-software links
type TagService struct {
	tags     TagStore
	software SoftwareStore
	log      *logger.Logger
}

// NewTagService creates a new tag service
func NewTagService(tags TagStore, software SoftwareStore, log *logger.Logger) *TagService {
	return &TagService{tags: tags, software: software, log: log}
}

// Search returns tags whose name contains the substring, all tags when
// the search is empty.
func (s *TagService) Search(ctx context.Context, search string) ([]models.Tag, error) {
	return s.tags.Search(ctx, search)
}

// Get retrieves one tag by id
func (s *TagService) Get(ctx context.Context, id int64) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, apperr.NotFoundf("tag %d not found", id)
	}
	return tag, nil
}

// Create adds a new tag. Moderator only; names are unique.
func (s *TagService) Create(ctx context.Context, ident auth.Identity, name string) (*models.Tag, error) {
	if !ident.Moderator {
		return nil, apperr.Forbidden("moderator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("missing field: name")
	}

	tag, err := s.tags.Create(ctx, name)
	if err != nil {
		if apperr.Is(err, apperr.CodeConflict) {
			return nil, apperr.Conflictf("tag %q already exists", name)
		}
		return nil, err
	}

	s.log.Info("tag created", "tag_id", tag.ID, "name", tag.Name, "by", ident.UserID)
	return tag, nil
}

// UpdateName renames a tag. Moderator only.
func (s *TagService) UpdateName(ctx context.Context, ident auth.Identity, id int64, name string) (*models.Tag, error) {
	if !ident.Moderator {
		return nil, apperr.Forbidden("moderator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("missing field: name")
	}

	tag, err := s.tags.UpdateName(ctx, id, name)
	if err != nil {
		if apperr.Is(err, apperr.CodeConflict) {
			return nil, apperr.Conflictf("tag %q already exists", name)
		}
		return nil, err
	}
	if tag == nil {
		return nil, apperr.NotFoundf("tag %d not found", id)
	}

	s.log.Info("tag renamed", "tag_id", id, "name", name, "by", ident.UserID)
	return tag, nil
}

// Link associates a tag with a software entry. Moderator only;
// idempotent when the link already exists.
func (s *TagService) Link(ctx context.Context, ident auth.Identity, softwareID, tagID int64) error {
	if !ident.Moderator {
		return apperr.Forbidden("moderator role required")
	}

	sw, err := s.software.GetByID(ctx, softwareID)
	if err != nil {
		return err
	}
	if sw == nil {
		return apperr.NotFoundf("software %d not found", softwareID)
	}
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return apperr.NotFoundf("tag %d not found", tagID)
	}

	if err := s.tags.Link(ctx, softwareID, tagID); err != nil {
		return err
	}

	s.log.Info("tag linked", "tag_id", tagID, "software_id", softwareID, "by", ident.UserID)
	return nil
}

// Unlink removes a tag-to-software association. Moderator only;
// idempotent when no link exists.
func (s *TagService) Unlink(ctx context.Context, ident auth.Identity, softwareID, tagID int64) error {
	if !ident.Moderator {
		return apperr.Forbidden("moderator role required")
	}

	if err := s.tags.Unlink(ctx, softwareID, tagID); err != nil {
		return err
	}

	s.log.Info("tag unlinked", "tag_id", tagID, "software_id", softwareID, "by", ident.UserID)
	return nil
}
