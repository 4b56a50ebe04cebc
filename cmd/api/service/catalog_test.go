package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/softserv/softserv/common/apperr"
	"github.com/softserv/softserv/common/models"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *fakeSoftwareStore, *fakeRequestStore, *fakeObjectStore) {
	t.Helper()
	software := newFakeSoftwareStore()
	requests := newFakeRequestStore(software)
	store := &fakeObjectStore{}
	return NewCatalogService(software, requests, store, testLogger()), software, requests, store
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func fullInput() CreateSoftwareInput {
	return CreateSoftwareInput{
		Name:        strPtr("nginx"),
		Version:     strPtr("1.27"),
		Description: strPtr("web server"),
		Source:      strPtr("apt"),
		Active:      boolPtr(true),
	}
}

func TestCreateSoftware(t *testing.T) {
	ctx := context.Background()
	svc, software, _, _ := newCatalogFixture(t)

	id, err := svc.Create(ctx, moderator, fullInput())
	require.NoError(t, err)

	sw, err := software.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sw)
	assert.Equal(t, "nginx", sw.Name)

	_, err = svc.Create(ctx, owner, fullInput())
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestCreateSoftwareNamesMissingField(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCatalogFixture(t)

	cases := []struct {
		field  string
		mutate func(*CreateSoftwareInput)
	}{
		{"name", func(in *CreateSoftwareInput) { in.Name = nil }},
		{"version", func(in *CreateSoftwareInput) { in.Version = nil }},
		{"description", func(in *CreateSoftwareInput) { in.Description = nil }},
		{"source", func(in *CreateSoftwareInput) { in.Source = nil }},
		{"active", func(in *CreateSoftwareInput) { in.Active = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			in := fullInput()
			tc.mutate(&in)
			_, err := svc.Create(ctx, moderator, in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
			assert.Contains(t, apperr.MessageOf(err), tc.field)
		})
	}
}

func TestUpdateSoftwareMergePatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCatalogFixture(t)
	id, err := svc.Create(ctx, moderator, fullInput())
	require.NoError(t, err)

	t.Run("absent fields keep their value", func(t *testing.T) {
		sw, err := svc.Update(ctx, moderator, id, []byte(`{"version":"1.28"}`))
		require.NoError(t, err)
		assert.Equal(t, "1.28", sw.Version)
		assert.Equal(t, "nginx", sw.Name)
		assert.Equal(t, "web server", sw.Description)
	})

	t.Run("null on a required field rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, moderator, id, []byte(`{"name":null}`))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, moderator, id, []byte(`{}`))
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("unknown-only patch rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, moderator, id, []byte(`{"logo":"x.png"}`))
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("malformed patch rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, moderator, id, []byte(`[1,2]`))
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("non-moderator forbidden", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, id, []byte(`{"version":"2.0"}`))
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	})

	t.Run("missing software", func(t *testing.T) {
		_, err := svc.Update(ctx, moderator, 404, []byte(`{"version":"2.0"}`))
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}

func TestDeactivateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, software, _, _ := newCatalogFixture(t)
	id, err := svc.Create(ctx, moderator, fullInput())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, moderator, id))
	require.NoError(t, svc.Deactivate(ctx, moderator, id))

	sw, err := software.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, sw.Active)

	err = svc.Deactivate(ctx, owner, id)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestListHidesInactiveAndCarriesDraftID(t *testing.T) {
	ctx := context.Background()
	svc, software, requests, _ := newCatalogFixture(t)
	active := software.add(models.SoftwareFields{Name: "nginx", Active: true})
	software.add(models.SoftwareFields{Name: "telnetd", Active: false})

	listing, err := svc.List(ctx, nil, "")
	require.NoError(t, err)
	require.Len(t, listing.Softwares, 1)
	assert.Equal(t, active, listing.Softwares[0].ID)
	assert.Nil(t, listing.RequestID, "anonymous listings carry no draft")

	// No draft yet for an authenticated caller either
	listing, err = svc.List(ctx, &owner, "")
	require.NoError(t, err)
	assert.Nil(t, listing.RequestID)

	draftID, err := requests.AttachToDraft(ctx, owner.UserID, active, true)
	require.NoError(t, err)
	listing, err = svc.List(ctx, &owner, "")
	require.NoError(t, err)
	require.NotNil(t, listing.RequestID)
	assert.Equal(t, draftID, *listing.RequestID)
}

func TestAttachLogo(t *testing.T) {
	ctx := context.Background()
	logo := []byte("png-bytes")

	t.Run("uploads then records url", func(t *testing.T) {
		svc, software, _, store := newCatalogFixture(t)
		id, err := svc.Create(ctx, moderator, fullInput())
		require.NoError(t, err)

		url, err := svc.AttachLogo(ctx, moderator, id, logo)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/logos/"))

		require.Len(t, store.keys, 1)
		assert.True(t, strings.HasPrefix(store.keys[0], "logos/"))
		assert.True(t, strings.HasSuffix(store.keys[0], ".png"))

		sw, err := software.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, sw.Logo)
		assert.Equal(t, url, *sw.Logo)
	})

	t.Run("store failure leaves the row untouched", func(t *testing.T) {
		svc, software, _, store := newCatalogFixture(t)
		id, err := svc.Create(ctx, moderator, fullInput())
		require.NoError(t, err)

		store.fail = true
		_, err = svc.AttachLogo(ctx, moderator, id, logo)
		require.Error(t, err)

		sw, err := software.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, sw.Logo)
	})

	t.Run("non-moderator forbidden", func(t *testing.T) {
		svc, _, _, _ := newCatalogFixture(t)
		id, err := svc.Create(ctx, moderator, fullInput())
		require.NoError(t, err)

		_, err = svc.AttachLogo(ctx, owner, id, logo)
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	})

	t.Run("empty body rejected", func(t *testing.T) {
		svc, _, _, _ := newCatalogFixture(t)
		id, err := svc.Create(ctx, moderator, fullInput())
		require.NoError(t, err)

		_, err = svc.AttachLogo(ctx, moderator, id, nil)
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	})

	t.Run("missing software", func(t *testing.T) {
		svc, _, _, _ := newCatalogFixture(t)
		_, err := svc.AttachLogo(ctx, moderator, 404, logo)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}

func TestGetSoftware(t *testing.T) {
	ctx := context.Background()
	svc, software, _, _ := newCatalogFixture(t)
	id := software.add(models.SoftwareFields{Name: "nginx", Active: false})
	software.tags[id] = []models.Tag{{ID: 1, Name: "web"}}

	// Inactive entries stay fetchable by id for request history
	sw, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "nginx", sw.Name)
	require.Len(t, sw.Tags, 1)
	assert.Equal(t, "web", sw.Tags[0].Name)

	_, err = svc.Get(ctx, 404)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
