package model

import "time"

// Profile links an authenticated user to a plan. PlanID is nullable: a user
// without a plan has zero entitlements.
type Profile struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PlanID    *string   `db:"plan_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
