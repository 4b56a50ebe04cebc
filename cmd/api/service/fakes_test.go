package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/softserv/softserv/common/apperr"
	"github.com/softserv/softserv/common/logger"
	"github.com/softserv/softserv/common/models"
)

func testLogger() *logger.Logger {
	return logger.New("error", "text")
}

// fakeUserStore is an in-memory UserStore
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, username, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return nil, apperr.Conflictf("duplicate key")
		}
	}
	f.nextID++
	u := &models.User{
		ID:           f.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) makeModerator(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Moderator = true
	}
}

// fakeSoftwareStore is an in-memory SoftwareStore
type fakeSoftwareStore struct {
	mu        sync.Mutex
	nextID    int64
	softwares map[int64]*models.Software
	tags      map[int64][]models.Tag
}

func newFakeSoftwareStore() *fakeSoftwareStore {
	return &fakeSoftwareStore{
		softwares: make(map[int64]*models.Software),
		tags:      make(map[int64][]models.Tag),
	}
}

func (f *fakeSoftwareStore) add(fields models.SoftwareFields) int64 {
	id, _ := f.Insert(context.Background(), fields)
	return id
}

func (f *fakeSoftwareStore) ListActive(_ context.Context, search string) ([]models.Software, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Software
	for _, sw := range f.softwares {
		if !sw.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(sw.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, *sw)
	}
	return out, nil
}

func (f *fakeSoftwareStore) SearchActiveByName(ctx context.Context, name string) ([]models.Software, error) {
	return f.ListActive(ctx, name)
}

func (f *fakeSoftwareStore) GetByID(_ context.Context, id int64) (*models.Software, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sw, ok := f.softwares[id]
	if !ok {
		return nil, nil
	}
	copied := *sw
	return &copied, nil
}

func (f *fakeSoftwareStore) Insert(_ context.Context, fields models.SoftwareFields) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now()
	f.softwares[f.nextID] = &models.Software{
		ID:          f.nextID,
		Name:        fields.Name,
		Version:     fields.Version,
		Description: fields.Description,
		Source:      fields.Source,
		Active:      fields.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return f.nextID, nil
}

func (f *fakeSoftwareStore) Update(_ context.Context, id int64, fields models.SoftwareFields) (*models.Software, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sw, ok := f.softwares[id]
	if !ok {
		return nil, nil
	}
	sw.Name = fields.Name
	sw.Version = fields.Version
	sw.Description = fields.Description
	sw.Source = fields.Source
	sw.Active = fields.Active
	sw.UpdatedAt = time.Now()
	copied := *sw
	return &copied, nil
}

func (f *fakeSoftwareStore) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sw, ok := f.softwares[id]; ok {
		sw.Active = false
	}
	return nil
}

func (f *fakeSoftwareStore) SetLogo(_ context.Context, id int64, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sw, ok := f.softwares[id]
	if !ok {
		return apperr.NotFoundf("software %d not found", id)
	}
	sw.Logo = &url
	return nil
}

func (f *fakeSoftwareStore) TagsFor(_ context.Context, softwareID int64) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags[softwareID], nil
}

// fakeTagStore is an in-memory TagStore
type fakeTagStore struct {
	mu     sync.Mutex
	nextID int64
	tags   map[int64]*models.Tag
	links  map[[2]int64]bool
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{
		tags:  make(map[int64]*models.Tag),
		links: make(map[[2]int64]bool),
	}
}

func (f *fakeTagStore) Search(_ context.Context, substr string) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tag
	for _, t := range f.tags {
		if substr == "" || strings.Contains(strings.ToLower(t.Name), strings.ToLower(substr)) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTagStore) GetByID(_ context.Context, id int64) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTagStore) Create(_ context.Context, name string) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tags {
		if t.Name == name {
			return nil, apperr.Conflictf("duplicate key")
		}
	}
	f.nextID++
	now := time.Now()
	t := &models.Tag{ID: f.nextID, Name: name, CreatedAt: now, UpdatedAt: now}
	f.tags[t.ID] = t
	copied := *t
	return &copied, nil
}

func (f *fakeTagStore) UpdateName(_ context.Context, id int64, name string) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for otherID, t := range f.tags {
		if t.Name == name && otherID != id {
			return nil, apperr.Conflictf("duplicate key")
		}
	}
	t, ok := f.tags[id]
	if !ok {
		return nil, nil
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (f *fakeTagStore) Link(_ context.Context, softwareID, tagID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[[2]int64{softwareID, tagID}] = true
	return nil
}

func (f *fakeTagStore) Unlink(_ context.Context, softwareID, tagID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.links, [2]int64{softwareID, tagID})
	return nil
}

func (f *fakeTagStore) linked(softwareID, tagID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.links[[2]int64{softwareID, tagID}]
}

// fakeRequestStore is an in-memory RequestStore. It shares a software
// fake so GetDetail can join line items to their software rows.
type fakeRequestStore struct {
	mu        sync.Mutex
	nextID    int64
	requests  map[int64]*models.Request
	items     map[int64]map[int64]*models.LineItem
	usernames map[int64]string
	software  *fakeSoftwareStore
}

func newFakeRequestStore(software *fakeSoftwareStore) *fakeRequestStore {
	return &fakeRequestStore{
		requests:  make(map[int64]*models.Request),
		items:     make(map[int64]map[int64]*models.LineItem),
		usernames: make(map[int64]string),
		software:  software,
	}
}

func (f *fakeRequestStore) List(_ context.Context, filter models.RequestFilter) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Request
	for _, r := range f.requests {
		if filter.Status != nil {
			if r.Status != *filter.Status {
				continue
			}
		} else if r.Status == models.RequestDeleted {
			continue
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.CreatedAfter != nil && r.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && r.CreatedAt.After(*filter.CreatedBefore) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRequestStore) Get(_ context.Context, id int64) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRequestStore) GetDetail(ctx context.Context, id int64) (*models.RequestDetail, error) {
	req, err := f.Get(ctx, id)
	if err != nil || req == nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	detail := &models.RequestDetail{
		Request:  *req,
		Username: f.usernames[req.UserID],
		Items:    []models.LineItemDetail{},
	}
	for swID, item := range f.items[id] {
		if item.Status == models.LineItemCanceled {
			continue
		}
		var sw models.Software
		if f.software != nil {
			if row, ok := f.software.softwares[swID]; ok {
				sw = *row
			}
		}
		detail.Items = append(detail.Items, models.LineItemDetail{LineItem: *item, Software: sw})
	}
	return detail, nil
}

func (f *fakeRequestStore) Insert(_ context.Context, userID int64, sshAddress, sshPassword *string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(userID, sshAddress, sshPassword), nil
}

func (f *fakeRequestStore) insertLocked(userID int64, sshAddress, sshPassword *string) int64 {
	f.nextID++
	now := time.Now()
	f.requests[f.nextID] = &models.Request{
		ID:          f.nextID,
		UserID:      userID,
		Status:      models.RequestCreated,
		SSHAddress:  sshAddress,
		SSHPassword: sshPassword,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.items[f.nextID] = make(map[int64]*models.LineItem)
	return f.nextID
}

func (f *fakeRequestStore) UpdateConnection(_ context.Context, id int64, sshAddress, sshPassword *string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	r.SSHAddress = sshAddress
	r.SSHPassword = sshPassword
	r.UpdatedAt = time.Now()
	copied := *r
	return &copied, nil
}

func (f *fakeRequestStore) FindOrCreateDraft(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id := f.draftLocked(userID); id != nil {
		return *id, nil
	}
	return f.insertLocked(userID, nil, nil), nil
}

func (f *fakeRequestStore) draftLocked(userID int64) *int64 {
	var draft *models.Request
	for _, r := range f.requests {
		if r.UserID != userID || r.Status != models.RequestCreated {
			continue
		}
		if draft == nil || r.CreatedAt.After(draft.CreatedAt) || (r.CreatedAt.Equal(draft.CreatedAt) && r.ID > draft.ID) {
			draft = r
		}
	}
	if draft == nil {
		return nil
	}
	id := draft.ID
	return &id
}

func (f *fakeRequestStore) AttachToDraft(ctx context.Context, userID, softwareID int64, toInstall bool) (int64, error) {
	requestID, err := f.FindOrCreateDraft(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := f.AttachItem(ctx, requestID, softwareID, toInstall); err != nil {
		return 0, err
	}
	return requestID, nil
}

func (f *fakeRequestStore) AttachItem(_ context.Context, requestID, softwareID int64, toInstall bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[requestID]; !ok {
		return apperr.NotFoundf("request %d not found", requestID)
	}
	now := time.Now()
	if item, ok := f.items[requestID][softwareID]; ok {
		item.ToInstall = toInstall
		item.Status = models.LineItemNew
		item.UpdatedAt = now
		return nil
	}
	f.items[requestID][softwareID] = &models.LineItem{
		RequestID:  requestID,
		SoftwareID: softwareID,
		ToInstall:  toInstall,
		Status:     models.LineItemNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return nil
}

func (f *fakeRequestStore) DetachItem(_ context.Context, requestID, softwareID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[requestID][softwareID]
	if !ok {
		return false, nil
	}
	item.Status = models.LineItemCanceled
	item.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRequestStore) SetItemStatus(_ context.Context, requestID, softwareID int64, status models.LineItemStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[requestID][softwareID]
	if !ok {
		return false, nil
	}
	item.Status = status
	item.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRequestStore) UpdateStatus(_ context.Context, id int64, from, to models.RequestStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	now := time.Now()
	r.Status = to
	r.UpdatedAt = now
	if to == models.RequestProcessed && r.ProcessedAt == nil {
		r.ProcessedAt = &now
	}
	if to == models.RequestCompleted && r.CompletedAt == nil {
		r.CompletedAt = &now
	}
	return true, nil
}

func (f *fakeRequestStore) AssignModerator(_ context.Context, id, moderatorID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.ModeratorID != nil {
		return false, nil
	}
	r.ModeratorID = &moderatorID
	r.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRequestStore) DraftID(_ context.Context, userID int64) (*int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftLocked(userID), nil
}

// fakeObjectStore records uploads and can be told to fail
type fakeObjectStore struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (f *fakeObjectStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

// fakeRevoker is an in-memory token revocation cache
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl <= 0 {
		return nil
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenID]
	return ok, nil
}
