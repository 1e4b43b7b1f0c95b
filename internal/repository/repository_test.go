package repository

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JankoLoL/Get-a-pic/internal/db"
	"github.com/JankoLoL/Get-a-pic/internal/model"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

func createImage(t *testing.T, database *sqlx.DB) *model.Image {
	t.Helper()

	user := &model.User{Email: "repo@example.com", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(database).Create(user))

	image := &model.Image{
		UserID:       user.ID,
		OriginalPath: "uploaded_images/repo.jpg",
		OriginalName: "repo.jpg",
	}
	require.NoError(t, NewImageRepository(database).Create(image))
	return image
}

func TestUserDuplicateEmail(t *testing.T) {
	database := openTestDB(t)
	repo := NewUserRepository(database)

	require.NoError(t, repo.Create(&model.User{Email: "dup@example.com", PasswordHash: "x"}))

	err := repo.Create(&model.User{Email: "dup@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestThumbnailUniquePerImageAndSize(t *testing.T) {
	database := openTestDB(t)
	image := createImage(t, database)
	repo := NewThumbnailRepository(database)

	require.NoError(t, repo.Create(&model.Thumbnail{
		ImageID: image.ID,
		Size:    200,
		Path:    "thumbnails/" + image.ID + "_200.jpg",
	}))

	err := repo.Create(&model.Thumbnail{
		ImageID: image.ID,
		Size:    200,
		Path:    "thumbnails/" + image.ID + "_200.jpg",
	})
	assert.ErrorIs(t, err, ErrDuplicateThumbnail)

	// A different size on the same image is fine.
	require.NoError(t, repo.Create(&model.Thumbnail{
		ImageID: image.ID,
		Size:    400,
		Path:    "thumbnails/" + image.ID + "_400.jpg",
	}))
}

func TestExpiringLinkUniqueToken(t *testing.T) {
	database := openTestDB(t)
	image := createImage(t, database)
	repo := NewExpiringLinkRepository(database)

	link := &model.ExpiringLink{ImageID: image.ID, Token: "token-a"}
	require.NoError(t, repo.Create(link))

	err := repo.Create(&model.ExpiringLink{ImageID: image.ID, Token: "token-a"})
	assert.ErrorIs(t, err, ErrDuplicateToken)
}

func TestImageDeleteCascades(t *testing.T) {
	database := openTestDB(t)
	image := createImage(t, database)

	thumbRepo := NewThumbnailRepository(database)
	linkRepo := NewExpiringLinkRepository(database)
	imageRepo := NewImageRepository(database)

	require.NoError(t, thumbRepo.Create(&model.Thumbnail{ImageID: image.ID, Size: 200, Path: "thumbnails/x_200.jpg"}))
	require.NoError(t, linkRepo.Create(&model.ExpiringLink{ImageID: image.ID, Token: "cascade-token"}))

	require.NoError(t, imageRepo.Delete(image.ID))

	thumbs, err := thumbRepo.ByImageID(image.ID)
	require.NoError(t, err)
	assert.Empty(t, thumbs)

	_, err = linkRepo.ByToken("cascade-token")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestPlanSeedData(t *testing.T) {
	database := openTestDB(t)
	repo := NewPlanRepository(database)

	basic, err := repo.ByName(model.PlanBasic)
	require.NoError(t, err)
	assert.Equal(t, []int{200}, basic.ThumbnailSizes)
	assert.False(t, basic.HasOriginalImageLink)
	assert.False(t, basic.CanGenerateExpiringLink)

	premium, err := repo.ByName(model.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, []int{200, 400}, premium.ThumbnailSizes)
	assert.True(t, premium.HasOriginalImageLink)
	assert.False(t, premium.CanGenerateExpiringLink)

	enterprise, err := repo.ByName(model.PlanEnterprise)
	require.NoError(t, err)
	assert.Equal(t, []int{200, 400}, enterprise.ThumbnailSizes)
	assert.True(t, enterprise.HasOriginalImageLink)
	assert.True(t, enterprise.CanGenerateExpiringLink)
}
