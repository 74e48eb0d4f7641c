package types

import "time"

// FireStandard is seeded reference data injected into the assistant prompt.
type FireStandard struct {
	ID                      int64     `db:"id"`
	StandardCode            string    `db:"standard_code"`
	Title                   string    `db:"title"`
	Description             *string   `db:"description"`
	Category                string    `db:"category"`
	KeyRequirements         []string  `db:"key_requirements"` // jsonb array
	ApplicableBuildingTypes *string   `db:"applicable_building_types"`
	CreatedAt               time.Time `db:"created_at"`
}
