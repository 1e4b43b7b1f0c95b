package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Image is an uploaded original. It is immutable after creation; derived
// thumbnails are child rows, not mutations.
type Image struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	OriginalPath string    `db:"original_path"`
	OriginalName string    `db:"original_name"`
	UploadedAt   time.Time `db:"uploaded_at"`
}

// Ext returns the lowercase extension of the stored original, without the dot.
func (i *Image) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(i.OriginalPath)), ".")
}

// Thumbnail is a derived variant of exactly one Image at one edge length.
// At most one row exists per (image, size).
type Thumbnail struct {
	ID      string `db:"id"`
	ImageID string `db:"image_id"`
	Size    int    `db:"size"`
	Path    string `db:"path"`
}
