package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/JankoLoL/Get-a-pic/internal/model"
)

type ProfileRepository interface {
	Create(profile *model.Profile) error
	ByUserID(userID string) (*model.Profile, error)
	UpdatePlan(userID string, planID *string) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now()
	}

	query := `INSERT INTO profiles (id, user_id, plan_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, profile.ID, profile.UserID, profile.PlanID, profile.CreatedAt, profile.UpdatedAt)
	return err
}

func (r *profileRepository) ByUserID(userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM profiles WHERE user_id = $1`, userID)

	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// UpdatePlan reassigns the profile's plan. This is the only mutation profiles
// support.
func (r *profileRepository) UpdatePlan(userID string, planID *string) error {
	query := `UPDATE profiles SET plan_id = $1, updated_at = $2 WHERE user_id = $3`

	result, err := r.db.Exec(query, planID, time.Now(), userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}
