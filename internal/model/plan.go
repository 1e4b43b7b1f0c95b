package model

// Built-in tiers seeded by migrations. Administrators may add more rows;
// nothing in the code depends on these names beyond the seed data.
const (
	PlanBasic      = "Basic"
	PlanPremium    = "Premium"
	PlanEnterprise = "Enterprise"
)

type Plan struct {
	ID                      string `db:"id"`
	Name                    string `db:"name"`
	HasOriginalImageLink    bool   `db:"has_original_image_link"`
	CanGenerateExpiringLink bool   `db:"can_generate_expiring_link"`

	// ThumbnailSizes is loaded from the plan_thumbnail_sizes join, not a column.
	ThumbnailSizes []int `db:"-"`
}

type ThumbnailSize struct {
	ID   string `db:"id"`
	Size int    `db:"size"`
}
