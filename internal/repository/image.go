package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JankoLoL/Get-a-pic/internal/model"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository interface {
	Create(image *model.Image) error
	ByID(id string) (*model.Image, error)
	ByUserID(userID string) ([]*model.Image, error)
	Delete(id string) error
}

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(image *model.Image) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	if image.UploadedAt.IsZero() {
		image.UploadedAt = time.Now()
	}

	query := `INSERT INTO images (id, user_id, original_path, original_name, uploaded_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, image.ID, image.UserID, image.OriginalPath, image.OriginalName, image.UploadedAt)
	return err
}

func (r *imageRepository) ByID(id string) (*model.Image, error) {
	image := &model.Image{}
	query := `SELECT * FROM images WHERE id = $1`

	err := r.db.Get(image, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrImageNotFound
	}

	return image, err
}

func (r *imageRepository) ByUserID(userID string) ([]*model.Image, error) {
	var images []*model.Image
	query := `SELECT * FROM images WHERE user_id = $1 ORDER BY uploaded_at DESC`

	err := r.db.Select(&images, query, userID)
	if err != nil {
		return nil, err
	}

	return images, nil
}

// Delete removes the image row. Thumbnails and expiring links go with it via
// ON DELETE CASCADE.
func (r *imageRepository) Delete(id string) error {
	query := `DELETE FROM images WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrImageNotFound
	}

	return nil
}
