package service

import (
	"bytes"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/JankoLoL/Get-a-pic/internal/db"
	"github.com/JankoLoL/Get-a-pic/internal/img"
	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
	"github.com/JankoLoL/Get-a-pic/internal/storage"
)

const testAppURL = "http://localhost:8090"

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

func newTestStorage(t *testing.T) storage.Storage {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

type testEnv struct {
	db        *sqlx.DB
	store     storage.Storage
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	plans     repository.PlanRepository
	images    repository.ImageRepository
	thumbs    repository.ThumbnailRepository
	links     repository.ExpiringLinkRepository
	thumbSvc  *ThumbnailService
	imageSvc  *ImageService
	linkSvc   *LinkService
	planSvc   *PlanService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := openTestDB(t)
	store := newTestStorage(t)

	env := &testEnv{
		db:       database,
		store:    store,
		users:    repository.NewUserRepository(database),
		profiles: repository.NewProfileRepository(database),
		plans:    repository.NewPlanRepository(database),
		images:   repository.NewImageRepository(database),
		thumbs:   repository.NewThumbnailRepository(database),
		links:    repository.NewExpiringLinkRepository(database),
	}
	env.thumbSvc = NewThumbnailService(env.thumbs, store, img.NewCodec(0))
	env.imageSvc = NewImageService(env.images, env.thumbs, store, env.thumbSvc, testAppURL, true)
	env.linkSvc = NewLinkService(env.links, env.images, store, testAppURL, 300*time.Second, 30000*time.Second, false)
	env.planSvc = NewPlanService(env.plans)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()

	user := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, e.users.Create(user))
	require.NoError(t, e.profiles.Create(&model.Profile{UserID: user.ID}))
	return user
}

func (e *testEnv) entitlementFor(t *testing.T, planName string) Entitlement {
	t.Helper()

	plan, err := e.plans.ByName(planName)
	require.NoError(t, err)
	return ResolveEntitlement(plan)
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	src := imaging.New(w, h, color.NRGBA{R: 180, G: 90, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.JPEG))
	return buf.Bytes()
}
