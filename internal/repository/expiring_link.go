package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JankoLoL/Get-a-pic/internal/model"
)

var (
	ErrLinkNotFound   = errors.New("expiring link not found")
	ErrDuplicateToken = errors.New("token already exists")
)

type ExpiringLinkRepository interface {
	Create(link *model.ExpiringLink) error
	ByToken(token string) (*model.ExpiringLink, error)
}

type expiringLinkRepository struct {
	db *sqlx.DB
}

func NewExpiringLinkRepository(db *sqlx.DB) ExpiringLinkRepository {
	return &expiringLinkRepository{db: db}
}

func (r *expiringLinkRepository) Create(link *model.ExpiringLink) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	query := `INSERT INTO expiring_links (id, image_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, link.ID, link.ImageID, link.Token, link.ExpiresAt, link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateToken
		}
		return err
	}

	return nil
}

func (r *expiringLinkRepository) ByToken(token string) (*model.ExpiringLink, error) {
	link := &model.ExpiringLink{}
	query := `SELECT * FROM expiring_links WHERE token = $1`

	err := r.db.Get(link, query, token)
	if err == sql.ErrNoRows {
		return nil, ErrLinkNotFound
	}

	return link, err
}
