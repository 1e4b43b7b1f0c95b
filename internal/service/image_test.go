package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
)

func TestUploadBasicScenario(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "basic@example.com")
	ent := env.entitlementFor(t, model.PlanBasic)

	image, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	rep, err := env.imageSvc.ProjectByID(image, user.Email, ent)
	require.NoError(t, err)

	// Basic: only the 200px reference, no original.
	assert.Empty(t, rep.ImageFile)
	require.Len(t, rep.Thumbnails, 1)
	assert.Contains(t, rep.Thumbnails, "200")
}

func TestUploadEnterpriseScenario(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ent@example.com")
	ent := env.entitlementFor(t, model.PlanEnterprise)

	image, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	rep, err := env.imageSvc.ProjectByID(image, user.Email, ent)
	require.NoError(t, err)

	assert.Equal(t, testAppURL+"/api/images/"+image.ID+"/file", rep.ImageFile)
	require.Len(t, rep.Thumbnails, 2)
	assert.Contains(t, rep.Thumbnails, "200")
	assert.Contains(t, rep.Thumbnails, "400")
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ext@example.com")

	_, err := env.imageSvc.Upload(context.Background(), user, env.entitlementFor(t, model.PlanBasic), "photo.gif", jpegBytes(t, 10, 10))
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestUploadRollsBackWhenEveryDerivationFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "rollback@example.com")
	ent := env.entitlementFor(t, model.PlanBasic)

	// Valid extension, undecodable payload: every size fails.
	_, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", []byte("not an image"))
	require.ErrorIs(t, err, ErrAllDerivationsFailed)

	images, err := env.imageSvc.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestProjectionHidesDowngradedSizes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "downgrade@example.com")
	enterprise := env.entitlementFor(t, model.PlanEnterprise)

	image, err := env.imageSvc.Upload(context.Background(), user, enterprise, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	// After a downgrade the 400px file still exists but is no longer visible,
	// and the original reference disappears.
	basic := env.entitlementFor(t, model.PlanBasic)
	rep, err := env.imageSvc.ProjectByID(image, user.Email, basic)
	require.NoError(t, err)

	assert.Empty(t, rep.ImageFile)
	require.Len(t, rep.Thumbnails, 1)
	assert.Contains(t, rep.Thumbnails, "200")

	thumbs, err := env.thumbs.ByImageID(image.ID)
	require.NoError(t, err)
	assert.Len(t, thumbs, 2)
}

func TestProjectionOmitsFieldsEntirely(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "omit@example.com")

	image, err := env.imageSvc.Upload(context.Background(), user, env.entitlementFor(t, model.PlanEnterprise), "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	// Projected without a plan: the JSON body must not carry the gated keys
	// at all, not even as null.
	rep, err := env.imageSvc.ProjectByID(image, user.Email, ResolveEntitlement(nil))
	require.NoError(t, err)

	body, err := json.Marshal(rep)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.NotContains(t, fields, "image_file")
	assert.NotContains(t, fields, "thumbnails")
	assert.Contains(t, fields, "id")
	assert.Contains(t, fields, "user")
	assert.Contains(t, fields, "uploaded_at")
}

func TestByIDScopesToOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	other := env.createUser(t, "other@example.com")

	image, err := env.imageSvc.Upload(context.Background(), owner, env.entitlementFor(t, model.PlanBasic), "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	// Another user's image is indistinguishable from a missing one.
	_, err = env.imageSvc.ByID(other.ID, image.ID)
	assert.ErrorIs(t, err, repository.ErrImageNotFound)
}

func TestDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "delete@example.com")
	ent := env.entitlementFor(t, model.PlanEnterprise)

	image, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	link, err := env.linkSvc.Issue(context.Background(), user, ent, image.ID, 600)
	require.NoError(t, err)

	require.NoError(t, env.imageSvc.Delete(context.Background(), user.ID, image.ID))

	_, err = env.images.ByID(image.ID)
	assert.ErrorIs(t, err, repository.ErrImageNotFound)

	thumbs, err := env.thumbs.ByImageID(image.ID)
	require.NoError(t, err)
	assert.Empty(t, thumbs)

	_, err = env.links.ByToken(link.Token)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestOriginalFileRequiresEntitlement(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "orig@example.com")

	data := jpegBytes(t, 600, 600)
	image, err := env.imageSvc.Upload(context.Background(), user, env.entitlementFor(t, model.PlanEnterprise), "photo.jpg", data)
	require.NoError(t, err)

	_, _, err = env.imageSvc.OriginalFile(context.Background(), image, env.entitlementFor(t, model.PlanBasic))
	assert.ErrorIs(t, err, ErrOriginalNotAllowed)

	got, contentType, err := env.imageSvc.OriginalFile(context.Background(), image, env.entitlementFor(t, model.PlanEnterprise))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, data, got)
}

func TestThumbnailFileRequiresCurrentEntitlement(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "thumbfile@example.com")

	image, err := env.imageSvc.Upload(context.Background(), user, env.entitlementFor(t, model.PlanEnterprise), "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	// The 400px file exists, but Basic cannot see it.
	_, _, err = env.imageSvc.ThumbnailFile(context.Background(), image, env.entitlementFor(t, model.PlanBasic), 400)
	assert.ErrorIs(t, err, ErrThumbnailNotVisible)

	data, contentType, err := env.imageSvc.ThumbnailFile(context.Background(), image, env.entitlementFor(t, model.PlanEnterprise), 400)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	assert.NotEmpty(t, data)
}
