package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JankoLoL/Get-a-pic/internal/img"
	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
	"github.com/JankoLoL/Get-a-pic/internal/storage"
)

var (
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrOriginalNotAllowed   = errors.New("plan does not include original image access")
	ErrThumbnailNotVisible  = errors.New("thumbnail not available on current plan")
	// ErrAllDerivationsFailed is returned when every configured thumbnail size
	// failed and the rollback policy rejected the upload.
	ErrAllDerivationsFailed = errors.New("thumbnail generation failed for every size")
)

// ImageRepresentation is the externally visible form of an image. Fields
// gated by entitlement are omitted entirely when not granted, never nulled.
type ImageRepresentation struct {
	ID         string            `json:"id"`
	User       string            `json:"user"`
	UploadedAt time.Time         `json:"uploaded_at"`
	ImageFile  string            `json:"image_file,omitempty"`
	Thumbnails map[string]string `json:"thumbnails,omitempty"`
}

type ImageService struct {
	imageRepo repository.ImageRepository
	thumbRepo repository.ThumbnailRepository
	storage   storage.Storage
	thumbs    *ThumbnailService
	appURL    string

	// rollbackOnDeriveFailure rejects the upload and removes the image again
	// when derivation fails for every configured size.
	rollbackOnDeriveFailure bool
}

func NewImageService(
	imageRepo repository.ImageRepository,
	thumbRepo repository.ThumbnailRepository,
	store storage.Storage,
	thumbs *ThumbnailService,
	appURL string,
	rollbackOnDeriveFailure bool,
) *ImageService {
	return &ImageService{
		imageRepo:               imageRepo,
		thumbRepo:               thumbRepo,
		storage:                 store,
		thumbs:                  thumbs,
		appURL:                  strings.TrimSuffix(appURL, "/"),
		rollbackOnDeriveFailure: rollbackOnDeriveFailure,
	}
}

// Upload stores the original, creates the Image record, then synchronously
// derives every thumbnail size the caller's current entitlement configures.
// Partial derivation failures are logged and do not fail the upload; when
// every size fails the rollback policy decides whether the whole upload is
// rejected.
func (s *ImageService) Upload(ctx context.Context, user *model.User, ent Entitlement, originalName string, data []byte) (*model.Image, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalName)), ".")
	if !img.SupportedFormat(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	path := fmt.Sprintf("uploaded_images/%s.%s", uuid.New().String(), ext)

	err := s.storage.Save(ctx, path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to save original: %w", err)
	}

	image := &model.Image{
		UserID:       user.ID,
		OriginalPath: path,
		OriginalName: originalName,
	}
	err = s.imageRepo.Create(image)
	if err != nil {
		// Keep storage consistent with the record store.
		delErr := s.storage.Delete(ctx, path)
		if delErr != nil {
			slog.Error("failed to delete original during upload cleanup", "error", delErr, "path", path)
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	created, genErr := s.thumbs.Generate(ctx, image, ent.Sizes)
	if genErr != nil {
		slog.Warn("thumbnail generation incomplete", "image_id", image.ID, "created", len(created), "error", genErr)

		if len(created) == 0 && len(ent.Sizes) > 0 && s.rollbackOnDeriveFailure {
			rbErr := s.Delete(ctx, user.ID, image.ID)
			if rbErr != nil {
				slog.Error("failed to roll back image after derivation failure", "error", rbErr, "image_id", image.ID)
			}
			return nil, fmt.Errorf("%w: %v", ErrAllDerivationsFailed, genErr)
		}
	}

	return image, nil
}

// ByID returns the image, scoped to its owner: another user's image is
// indistinguishable from a missing one.
func (s *ImageService) ByID(userID, imageID string) (*model.Image, error) {
	image, err := s.imageRepo.ByID(imageID)
	if err != nil {
		return nil, err
	}
	if image.UserID != userID {
		return nil, repository.ErrImageNotFound
	}
	return image, nil
}

func (s *ImageService) ByUserID(userID string) ([]*model.Image, error) {
	return s.imageRepo.ByUserID(userID)
}

// Delete removes the owned image. Thumbnail and expiring-link rows cascade;
// blob deletion is best-effort.
func (s *ImageService) Delete(ctx context.Context, userID, imageID string) error {
	image, err := s.ByID(userID, imageID)
	if err != nil {
		return err
	}

	thumbs, err := s.thumbRepo.ByImageID(image.ID)
	if err != nil {
		return err
	}

	err = s.imageRepo.Delete(image.ID)
	if err != nil {
		return err
	}

	for _, t := range thumbs {
		delErr := s.storage.Delete(ctx, t.Path)
		if delErr != nil {
			slog.Warn("failed to delete thumbnail blob", "error", delErr, "path", t.Path)
		}
	}
	delErr := s.storage.Delete(ctx, image.OriginalPath)
	if delErr != nil {
		slog.Warn("failed to delete original blob", "error", delErr, "path", image.OriginalPath)
	}

	return nil
}

// OriginalFile returns the original's bytes and content type, gated on the
// entitlement's original access.
func (s *ImageService) OriginalFile(ctx context.Context, image *model.Image, ent Entitlement) ([]byte, string, error) {
	if !ent.OriginalAccess {
		return nil, "", ErrOriginalNotAllowed
	}

	contentType, err := img.ContentType(image.Ext())
	if err != nil {
		return nil, "", err
	}

	data, err := s.storage.Read(ctx, image.OriginalPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read original: %w", err)
	}

	return data, contentType, nil
}

// ThumbnailFile returns a derived variant's bytes and content type. The size
// must be in the caller's current entitlement regardless of which rows exist.
func (s *ImageService) ThumbnailFile(ctx context.Context, image *model.Image, ent Entitlement, size int) ([]byte, string, error) {
	if !ent.HasSize(size) {
		return nil, "", ErrThumbnailNotVisible
	}

	thumb, err := s.thumbRepo.ByImageAndSize(image.ID, size)
	if err != nil {
		return nil, "", err
	}
	if thumb == nil {
		return nil, "", repository.ErrImageNotFound
	}

	contentType, err := img.ContentType(image.Ext())
	if err != nil {
		return nil, "", err
	}

	data, err := s.storage.Read(ctx, thumb.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read thumbnail: %w", err)
	}

	return data, contentType, nil
}

// Project computes the externally visible representation of an image.
// Entitlement is evaluated at read time against the current plan: a
// downgraded plan immediately hides higher-tier thumbnails even though the
// generated files remain, and the original reference appears only when the
// plan grants original access.
func (s *ImageService) Project(image *model.Image, ownerName string, ent Entitlement, thumbs []*model.Thumbnail) ImageRepresentation {
	rep := ImageRepresentation{
		ID:         image.ID,
		User:       ownerName,
		UploadedAt: image.UploadedAt,
	}

	if ent.OriginalAccess {
		rep.ImageFile = fmt.Sprintf("%s/api/images/%s/file", s.appURL, image.ID)
	}

	for _, t := range thumbs {
		if !ent.HasSize(t.Size) {
			continue
		}
		if rep.Thumbnails == nil {
			rep.Thumbnails = make(map[string]string)
		}
		rep.Thumbnails[strconv.Itoa(t.Size)] = fmt.Sprintf("%s/api/images/%s/thumbnails/%d", s.appURL, image.ID, t.Size)
	}

	return rep
}

// ProjectByID loads the image's thumbnails and projects it.
func (s *ImageService) ProjectByID(image *model.Image, ownerName string, ent Entitlement) (ImageRepresentation, error) {
	thumbs, err := s.thumbRepo.ByImageID(image.ID)
	if err != nil {
		return ImageRepresentation{}, err
	}
	return s.Project(image, ownerName, ent, thumbs), nil
}
