package service

import (
	"context"

	"github.com/softserv/softserv/common/models"
)

// Store contracts consumed by the services. The production
// implementations live in common/repository; tests substitute
// in-memory fakes.

// UserStore persists accounts
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SoftwareStore persists catalog entries
type SoftwareStore interface {
	ListActive(ctx context.Context, search string) ([]models.Software, error)
	SearchActiveByName(ctx context.Context, name string) ([]models.Software, error)
	GetByID(ctx context.Context, id int64) (*models.Software, error)
	Insert(ctx context.Context, fields models.SoftwareFields) (int64, error)
	Update(ctx context.Context, id int64, fields models.SoftwareFields) (*models.Software, error)
	Deactivate(ctx context.Context, id int64) error
	SetLogo(ctx context.Context, id int64, url string) error
	TagsFor(ctx context.Context, softwareID int64) ([]models.Tag, error)
}

// TagStore persists tags and their software associations
type TagStore interface {
	Search(ctx context.Context, substr string) ([]models.Tag, error)
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	Create(ctx context.Context, name string) (*models.Tag, error)
	UpdateName(ctx context.Context, id int64, name string) (*models.Tag, error)
	Link(ctx context.Context, softwareID, tagID int64) error
	Unlink(ctx context.Context, softwareID, tagID int64) error
}

// RequestStore persists provisioning requests and line items
type RequestStore interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	Get(ctx context.Context, id int64) (*models.Request, error)
	GetDetail(ctx context.Context, id int64) (*models.RequestDetail, error)
	Insert(ctx context.Context, userID int64, sshAddress, sshPassword *string) (int64, error)
	UpdateConnection(ctx context.Context, id int64, sshAddress, sshPassword *string) (*models.Request, error)
	FindOrCreateDraft(ctx context.Context, userID int64) (int64, error)
	AttachToDraft(ctx context.Context, userID, softwareID int64, toInstall bool) (int64, error)
	AttachItem(ctx context.Context, requestID, softwareID int64, toInstall bool) error
	DetachItem(ctx context.Context, requestID, softwareID int64) (bool, error)
	SetItemStatus(ctx context.Context, requestID, softwareID int64, status models.LineItemStatus) (bool, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.RequestStatus) (bool, error)
	AssignModerator(ctx context.Context, id, moderatorID int64) (bool, error)
	DraftID(ctx context.Context, userID int64) (*int64, error)
}
