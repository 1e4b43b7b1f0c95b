package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
)

func TestIssueRequiresEntitlement(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "noissue@example.com")

	image, err := env.imageSvc.Upload(context.Background(), user, env.entitlementFor(t, model.PlanEnterprise), "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	// Basic and Premium cannot mint links.
	_, err = env.linkSvc.Issue(context.Background(), user, env.entitlementFor(t, model.PlanBasic), image.ID, 600)
	assert.ErrorIs(t, err, ErrLinkNotAllowed)

	_, err = env.linkSvc.Issue(context.Background(), user, env.entitlementFor(t, model.PlanPremium), image.ID, 600)
	assert.ErrorIs(t, err, ErrLinkNotAllowed)
}

func TestIssueExpiryBoundaries(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "bounds@example.com")
	ent := env.entitlementFor(t, model.PlanEnterprise)

	image, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	tests := []struct {
		seconds int
		wantErr bool
	}{
		{299, true},
		{300, false},
		{30000, false},
		{30001, true},
	}

	for _, tt := range tests {
		_, err := env.linkSvc.Issue(context.Background(), user, ent, image.ID, tt.seconds)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidExpiry, "seconds=%d", tt.seconds)
		} else {
			assert.NoError(t, err, "seconds=%d", tt.seconds)
		}
	}
}

func TestIssueUnknownImage(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "noimage@example.com")

	_, err := env.linkSvc.Issue(context.Background(), user, env.entitlementFor(t, model.PlanEnterprise), "does-not-exist", 600)
	assert.ErrorIs(t, err, repository.ErrImageNotFound)
}

func TestIssueOwnershipPolicy(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "linkowner@example.com")
	other := env.createUser(t, "linkother@example.com")
	ent := env.entitlementFor(t, model.PlanEnterprise)

	image, err := env.imageSvc.Upload(context.Background(), owner, ent, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	// Default policy: any entitled user may mint a link for any image.
	_, err = env.linkSvc.Issue(context.Background(), other, ent, image.ID, 600)
	require.NoError(t, err)

	// With ownership enforcement, the same call answers not-found.
	strict := NewLinkService(env.links, env.images, env.store, testAppURL, 300*time.Second, 30000*time.Second, true)
	_, err = strict.Issue(context.Background(), other, ent, image.ID, 600)
	assert.ErrorIs(t, err, repository.ErrImageNotFound)

	_, err = strict.Issue(context.Background(), owner, ent, image.ID, 600)
	assert.NoError(t, err)
}

func TestLinkRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "roundtrip@example.com")
	ent := env.entitlementFor(t, model.PlanEnterprise)

	data := jpegBytes(t, 600, 600)
	image, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", data)
	require.NoError(t, err)

	link, err := env.linkSvc.Issue(context.Background(), user, ent, image.ID, 600)
	require.NoError(t, err)
	assert.Len(t, link.Token, 64) // 32 bytes hex encoded
	assert.Equal(t, testAppURL+"/api/expiring-links/"+link.Token, env.linkSvc.URL(link))

	got, contentType, err := env.linkSvc.Redeem(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, data, got)

	// Redemption does not consume the token.
	_, _, err = env.linkSvc.Redeem(context.Background(), link.Token)
	require.NoError(t, err)
}

func TestRedeemUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.linkSvc.Redeem(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestRedeemExpiredTokenIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "expired@example.com")
	ent := env.entitlementFor(t, model.PlanEnterprise)

	image, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	link, err := env.linkSvc.Issue(context.Background(), user, ent, image.ID, 600)
	require.NoError(t, err)

	// Advance the clock past the expiry; the answer must be identical to a
	// token that never existed.
	env.linkSvc.now = func() time.Time { return time.Now().Add(601 * time.Second) }

	_, _, err = env.linkSvc.Redeem(context.Background(), link.Token)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestIssueExpiresAtInFuture(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "future@example.com")
	ent := env.entitlementFor(t, model.PlanEnterprise)

	image, err := env.imageSvc.Upload(context.Background(), user, ent, "photo.jpg", jpegBytes(t, 600, 600))
	require.NoError(t, err)

	before := time.Now()
	link, err := env.linkSvc.Issue(context.Background(), user, ent, image.ID, 300)
	require.NoError(t, err)

	assert.True(t, link.ExpiresAt.After(before))
	assert.WithinDuration(t, before.Add(300*time.Second), link.ExpiresAt, 5*time.Second)
}
