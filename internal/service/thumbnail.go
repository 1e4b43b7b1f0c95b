package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JankoLoL/Get-a-pic/internal/img"
	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
	"github.com/JankoLoL/Get-a-pic/internal/storage"
)

// ThumbnailService derives fixed-size variants from an uploaded original and
// records them. Generation is synchronous relative to the caller.
type ThumbnailService struct {
	thumbRepo repository.ThumbnailRepository
	storage   storage.Storage
	codec     *img.Codec
}

func NewThumbnailService(thumbRepo repository.ThumbnailRepository, store storage.Storage, codec *img.Codec) *ThumbnailService {
	return &ThumbnailService{
		thumbRepo: thumbRepo,
		storage:   store,
		codec:     codec,
	}
}

// thumbnailPath is the storage path convention for derived files. The
// extension is the lowercase original extension, kept verbatim ("jpeg" stays
// "jpeg" in the path even though the encoder treats it as JPEG).
func thumbnailPath(image *model.Image, size int) string {
	return fmt.Sprintf("thumbnails/%s_%d.%s", image.ID, size, image.Ext())
}

// Generate derives one thumbnail per requested size that does not already
// exist for the image. A single size's failure does not abort the others;
// the successes are returned together with an aggregated error for the
// failures. Losing a concurrent duplicate-insert race is not an error: the
// row's unique constraint arbitrates and the loser's blob is left as an
// ignored orphan.
func (s *ThumbnailService) Generate(ctx context.Context, image *model.Image, sizes []int) ([]*model.Thumbnail, error) {
	if len(sizes) == 0 {
		return nil, nil
	}

	original, err := s.storage.Read(ctx, image.OriginalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read original: %w", err)
	}

	var created []*model.Thumbnail
	var errs []error

	for _, size := range sizes {
		existing, err := s.thumbRepo.ByImageAndSize(image.ID, size)
		if err != nil {
			errs = append(errs, fmt.Errorf("size %d: %w", size, err))
			continue
		}
		if existing != nil {
			continue
		}

		resized, err := s.codec.Resize(original, image.Ext(), size)
		if err != nil {
			errs = append(errs, fmt.Errorf("size %d: %w", size, err))
			continue
		}

		path := thumbnailPath(image, size)
		err = s.storage.Save(ctx, path, bytes.NewReader(resized))
		if err != nil {
			errs = append(errs, fmt.Errorf("size %d: %w", size, err))
			continue
		}

		thumb := &model.Thumbnail{
			ImageID: image.ID,
			Size:    size,
			Path:    path,
		}
		err = s.thumbRepo.Create(thumb)
		if errors.Is(err, repository.ErrDuplicateThumbnail) {
			// A concurrent request won the race. The file written above is an
			// orphan; ignore it.
			slog.Debug("duplicate thumbnail generation skipped", "image_id", image.ID, "size", size)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("size %d: %w", size, err))
			continue
		}

		created = append(created, thumb)
	}

	return created, errors.Join(errs...)
}
