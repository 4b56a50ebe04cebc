package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/softserv/softserv/common/apperr"
	"github.com/softserv/softserv/common/models"
)

func newTagFixture(t *testing.T) (*TagService, *fakeTagStore, *fakeSoftwareStore) {
	t.Helper()
	tags := newFakeTagStore()
	software := newFakeSoftwareStore()
	return NewTagService(tags, software, testLogger()), tags, software
}

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTagFixture(t)

	tag, err := svc.Create(ctx, moderator, "web")
	require.NoError(t, err)
	assert.Equal(t, "web", tag.Name)

	_, err = svc.Create(ctx, moderator, "web")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = svc.Create(ctx, owner, "db")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	_, err = svc.Create(ctx, moderator, "   ")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestRenameTag(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTagFixture(t)
	web, err := svc.Create(ctx, moderator, "web")
	require.NoError(t, err)
	_, err = svc.Create(ctx, moderator, "db")
	require.NoError(t, err)

	renamed, err := svc.UpdateName(ctx, moderator, web.ID, "http")
	require.NoError(t, err)
	assert.Equal(t, "http", renamed.Name)

	_, err = svc.UpdateName(ctx, moderator, web.ID, "db")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = svc.UpdateName(ctx, moderator, 404, "cache")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = svc.UpdateName(ctx, owner, web.ID, "cache")
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestSearchTags(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTagFixture(t)
	_, err := svc.Create(ctx, moderator, "webserver")
	require.NoError(t, err)
	_, err = svc.Create(ctx, moderator, "database")
	require.NoError(t, err)

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := svc.Search(ctx, "web")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "webserver", matched[0].Name)
}

func TestLinkUnlink(t *testing.T) {
	ctx := context.Background()
	svc, tags, software := newTagFixture(t)
	sw := software.add(models.SoftwareFields{Name: "nginx", Active: true})
	tag, err := svc.Create(ctx, moderator, "web")
	require.NoError(t, err)

	require.NoError(t, svc.Link(ctx, moderator, sw, tag.ID))
	assert.True(t, tags.linked(sw, tag.ID))

	// Linking twice is harmless
	require.NoError(t, svc.Link(ctx, moderator, sw, tag.ID))

	err = svc.Link(ctx, moderator, 404, tag.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	err = svc.Link(ctx, moderator, sw, 404)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	err = svc.Link(ctx, owner, sw, tag.ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	require.NoError(t, svc.Unlink(ctx, moderator, sw, tag.ID))
	assert.False(t, tags.linked(sw, tag.ID))

	// Unlinking an absent association is harmless too
	require.NoError(t, svc.Unlink(ctx, moderator, sw, tag.ID))

	err = svc.Unlink(ctx, owner, sw, tag.ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestGetTag(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTagFixture(t)
	tag, err := svc.Create(ctx, moderator, "web")
	require.NoError(t, err)

	got, err := svc.Get(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.Name, got.Name)

	_, err = svc.Get(ctx, 404)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
