package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/JankoLoL/Get-a-pic/internal/config"
	"github.com/JankoLoL/Get-a-pic/internal/db"
	"github.com/JankoLoL/Get-a-pic/internal/img"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
	"github.com/JankoLoL/Get-a-pic/internal/service"
	"github.com/JankoLoL/Get-a-pic/internal/storage"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	AuthService      *service.AuthService
	PlanService      *service.PlanService
	ImageService     *service.ImageService
	ThumbnailService *service.ThumbnailService
	LinkService      *service.LinkService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	planRepository := repository.NewPlanRepository(database)
	imageRepository := repository.NewImageRepository(database)
	thumbnailRepository := repository.NewThumbnailRepository(database)
	linkRepository := repository.NewExpiringLinkRepository(database)

	// Storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	codec := img.NewCodec(cfg.MaxDecodePixels)
	authService := service.NewAuthService(userRepository, profileRepository, cfg.JWTSecret, cfg.JWTExpiry)
	planService := service.NewPlanService(planRepository)
	thumbnailService := service.NewThumbnailService(thumbnailRepository, blobStorage, codec)
	imageService := service.NewImageService(
		imageRepository,
		thumbnailRepository,
		blobStorage,
		thumbnailService,
		cfg.AppURL,
		cfg.RollbackOnDeriveFailure,
	)
	linkService := service.NewLinkService(
		linkRepository,
		imageRepository,
		blobStorage,
		cfg.AppURL,
		cfg.LinkTTLMin,
		cfg.LinkTTLMax,
		cfg.LinkRequireImageOwnership,
	)

	return &App{
		Cfg:              cfg,
		DB:               database,
		AuthService:      authService,
		PlanService:      planService,
		ImageService:     imageService,
		ThumbnailService: thumbnailService,
		LinkService:      linkService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
