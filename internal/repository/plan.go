package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/JankoLoL/Get-a-pic/internal/model"
)

var ErrPlanNotFound = errors.New("plan not found")

// PlanRepository reads the administrator-owned plan catalog. Plans and sizes
// are created via migrations or admin tooling, never by the API.
type PlanRepository interface {
	ByID(id string) (*model.Plan, error)
	ByName(name string) (*model.Plan, error)
	All() ([]*model.Plan, error)
}

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) ByID(id string) (*model.Plan, error) {
	plan := &model.Plan{}
	err := r.db.Get(plan, `SELECT * FROM plans WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}

	plan.ThumbnailSizes, err = r.sizes(plan.ID)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *planRepository) ByName(name string) (*model.Plan, error) {
	plan := &model.Plan{}
	err := r.db.Get(plan, `SELECT * FROM plans WHERE name = $1`, name)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}

	plan.ThumbnailSizes, err = r.sizes(plan.ID)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *planRepository) All() ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.Select(&plans, `SELECT * FROM plans ORDER BY name`)
	if err != nil {
		return nil, err
	}

	for _, plan := range plans {
		plan.ThumbnailSizes, err = r.sizes(plan.ID)
		if err != nil {
			return nil, err
		}
	}

	return plans, nil
}

func (r *planRepository) sizes(planID string) ([]int, error) {
	var sizes []int
	query := `
		SELECT ts.size FROM thumbnail_sizes ts
		JOIN plan_thumbnail_sizes pts ON pts.thumbnail_size_id = ts.id
		WHERE pts.plan_id = $1
		ORDER BY ts.size
	`
	err := r.db.Select(&sizes, query, planID)
	if err != nil {
		return nil, err
	}

	return sizes, nil
}
