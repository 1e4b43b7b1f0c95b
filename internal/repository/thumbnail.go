package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JankoLoL/Get-a-pic/internal/model"
)

// ErrDuplicateThumbnail signals that a row for the same (image, size) pair
// already exists. The unique constraint is the arbiter under concurrent
// generation; callers treat the loser's insert as a harmless no-op.
var ErrDuplicateThumbnail = errors.New("thumbnail already exists")

type ThumbnailRepository interface {
	Create(thumb *model.Thumbnail) error
	ByImageID(imageID string) ([]*model.Thumbnail, error)
	ByImageAndSize(imageID string, size int) (*model.Thumbnail, error)
}

type thumbnailRepository struct {
	db *sqlx.DB
}

func NewThumbnailRepository(db *sqlx.DB) ThumbnailRepository {
	return &thumbnailRepository{db: db}
}

func (r *thumbnailRepository) Create(thumb *model.Thumbnail) error {
	if thumb.ID == "" {
		thumb.ID = uuid.New().String()
	}

	query := `INSERT INTO thumbnails (id, image_id, size, path) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, thumb.ID, thumb.ImageID, thumb.Size, thumb.Path)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateThumbnail
		}
		return err
	}

	return nil
}

func (r *thumbnailRepository) ByImageID(imageID string) ([]*model.Thumbnail, error) {
	var thumbs []*model.Thumbnail
	query := `SELECT * FROM thumbnails WHERE image_id = $1 ORDER BY size`

	err := r.db.Select(&thumbs, query, imageID)
	if err != nil {
		return nil, err
	}

	return thumbs, nil
}

// ByImageAndSize returns the thumbnail for the pair, or nil when none exists.
func (r *thumbnailRepository) ByImageAndSize(imageID string, size int) (*model.Thumbnail, error) {
	thumb := &model.Thumbnail{}
	query := `SELECT * FROM thumbnails WHERE image_id = $1 AND size = $2`

	err := r.db.Get(thumb, query, imageID, size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return thumb, nil
}
